package paths

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

// AppName names the config directory and temporary file prefixes.
const AppName = "org-protocol"

// Target identifiers, as accepted on the command line.
const (
	TargetLinux = "linux"
	TargetMacOS = "macos"
)

const (
	// DefaultDesktopFileName is the desktop entry xdg-mime is pointed at.
	DefaultDesktopFileName = "org-protocol.desktop"

	// DefaultHelperBundlePath is where the AppleScript helper is compiled.
	DefaultHelperBundlePath = "/Applications/OrgProtocolClient.app"

	infoPlistRelPath = "Contents/Info.plist"
)

// targets lists each target with the runtime.GOOS it installs for.
var targets = []struct{ name, goos string }{
	{TargetLinux, "linux"},
	{TargetMacOS, "darwin"},
}

// EnsureDir creates path and any missing parents with perm, or 0700 when
// perm is 0. Existing directories keep their mode.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = 0o700
	}
	return os.MkdirAll(path, perm)
}

// AppConfigDir is the second place config.yaml is looked for, after the
// working directory: $XDG_CONFIG_HOME/org-protocol on Linux and
// ~/Library/Application Support/org-protocol on macOS.
func AppConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DesktopEntryDir is the per-user directory desktop environments scan for
// .desktop files, $XDG_DATA_HOME/applications.
func DesktopEntryDir() string {
	return filepath.Join(xdg.DataHome, "applications")
}

// InfoPlistPath returns the property list path inside an application bundle.
func InfoPlistPath(bundle string) string {
	return filepath.Join(bundle, filepath.FromSlash(infoPlistRelPath))
}

// ValidTarget reports whether target names a supported platform.
func ValidTarget(target string) bool {
	for _, t := range targets {
		if t.name == target {
			return true
		}
	}
	return false
}

// Targets returns the supported target names in display order.
func Targets() []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.name
	}
	return names
}

// CurrentTarget returns the target for the running OS, or "" when there is
// no installer for it.
func CurrentTarget() string {
	return targetForGOOS(runtime.GOOS)
}

func targetForGOOS(goos string) string {
	for _, t := range targets {
		if t.goos == goos {
			return t.name
		}
	}
	return ""
}
