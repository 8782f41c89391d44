package installer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/paths"
	"github.com/thoreinstein/org-protocol/internal/plist"
	"github.com/thoreinstein/org-protocol/internal/runner"
	"github.com/thoreinstein/org-protocol/pkg/fileutil"
)

// renameFile is os.Rename, replaced in tests to fail the final move.
var renameFile = os.Rename

// swapBundle moves staged to bundle. An existing bundle is first moved to
// backup and put back if the final move fails; on success backup is left
// for the caller to remove.
func swapBundle(staged, bundle, backup string) error {
	if _, err := fileutil.RemoveIfExists(backup); err != nil {
		return filesystem(err, "removing stale backup of helper application")
	}

	_, err := os.Lstat(bundle)
	hadPrevious := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return filesystem(err, "inspecting previous helper application")
	}

	if hadPrevious {
		if err := renameFile(bundle, backup); err != nil {
			return filesystem(err, "moving previous helper application aside")
		}
	}

	if err := renameFile(staged, bundle); err != nil {
		moveErr := filesystem(err, "moving helper application into place")
		if hadPrevious {
			if restoreErr := renameFile(backup, bundle); restoreErr != nil {
				return errors.WithHint(moveErr, "The previous helper application was left at "+backup)
			}
		}
		return moveErr
	}
	return nil
}

// protocolScript is the AppleScript compiled into the helper application.
// Launch Services calls "open location" with the full org-protocol:// URL,
// which is handed to emacsclient without waiting for the edit to finish.
var protocolScript = template.Must(template.New("protocol").
	Funcs(template.FuncMap{"applescript": escapeAppleScript}).
	Parse(`on open location this_URL
	set EC to quoted form of "{{ applescript .Emacsclient }}" & " --no-wait "
	set filePath to quoted form of this_URL
	do shell script EC & filePath
	tell application "Emacs" to activate
end open location
`))

// RenderScript returns the AppleScript source for a helper that runs the
// emacsclient binary at emacsclient.
func RenderScript(emacsclient string) (string, error) {
	var buf bytes.Buffer
	if err := protocolScript.Execute(&buf, struct{ Emacsclient string }{emacsclient}); err != nil {
		return "", errors.Wrap(err, "rendering helper script")
	}
	return buf.String(), nil
}

// escapeAppleScript escapes s for use inside an AppleScript string literal.
func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// MacInstaller compiles an AppleScript helper application and declares the
// org-protocol URL scheme in its Info.plist.
type MacInstaller struct {
	config *config.MacOSConfig
	runner runner.Runner
	logger *slog.Logger
	out    io.Writer
}

var _ Installer = (*MacInstaller)(nil)

// NewMac returns a MacInstaller for cfg.
func NewMac(cfg *config.MacOSConfig, opts ...Option) *MacInstaller {
	o := newOptions(opts)
	return &MacInstaller{
		config: cfg,
		runner: o.runner,
		logger: o.logger.With("target", config.TargetMacOS),
		out:    o.out,
	}
}

// Install builds the helper bundle in a staging directory next to the
// destination and moves it into place only once its Info.plist has been
// rewritten. A failure before the final move leaves the previous bundle, if
// any, untouched; if the final move fails the previous bundle is moved back.
func (i *MacInstaller) Install(ctx context.Context) error {
	bundle := i.config.BundlePath

	script, err := RenderScript(i.config.EmacsclientPath)
	if err != nil {
		return err
	}

	scriptPath, cleanupScript, err := writeTempScript(script)
	if err != nil {
		return err
	}
	defer cleanupScript()

	stageDir, err := os.MkdirTemp(filepath.Dir(bundle), ".org-protocol-*")
	if err != nil {
		return filesystem(err, "creating staging directory")
	}
	defer os.RemoveAll(stageDir)
	staged := filepath.Join(stageDir, filepath.Base(bundle))

	fmt.Fprintf(i.out, "Compiling helper application for %s\n", i.config.EmacsclientPath)
	if err := i.runner.Run(ctx, "osacompile", "-o", staged, scriptPath); err != nil {
		return errors.Wrap(err, "compiling helper application")
	}

	if err := i.declareScheme(paths.InfoPlistPath(staged)); err != nil {
		return err
	}

	backup := filepath.Join(filepath.Dir(bundle), "."+filepath.Base(bundle)+".previous")
	if err := swapBundle(staged, bundle, backup); err != nil {
		return err
	}
	if _, err := fileutil.RemoveIfExists(backup); err != nil {
		i.logger.Warn("could not remove previous helper application", "path", backup, "error", err)
	}
	i.logger.Debug("helper application installed", "bundle", bundle)
	fmt.Fprintf(i.out, "Installed helper application %s\n", bundle)

	if !i.config.LaunchAfterInstall {
		fmt.Fprintf(i.out, "Launch %s once so macOS registers the org-protocol scheme\n", bundle)
		return nil
	}

	fmt.Fprintln(i.out, "Launching helper application to register the org-protocol scheme")
	if err := i.runner.Run(ctx, "open", bundle); err != nil {
		return errors.Wrap(err, "launching helper application")
	}
	return nil
}

// declareScheme adds the URL types fragment to the property list at path
// unless the scheme is already declared.
func (i *MacInstaller) declareScheme(path string) error {
	data, err := fileutil.ReadLimited(path, fileutil.DefaultReadLimit)
	if err != nil {
		return filesystem(err, "reading Info.plist")
	}

	declared, err := plist.HasURLScheme(data, plist.Scheme)
	if err != nil {
		return errors.Wrapf(err, "inspecting %s", path)
	}
	if declared {
		i.logger.Debug("url scheme already declared", "plist", path)
		return nil
	}

	rewritten, err := plist.Rewrite(data)
	if err != nil {
		return errors.Wrapf(err, "rewriting %s", path)
	}
	if err := fileutil.ReplaceFile(path, rewritten); err != nil {
		return filesystem(err, "writing Info.plist")
	}

	i.logger.Debug("url scheme declared", "plist", path, "bytes", len(rewritten))
	return nil
}

// Uninstall removes the helper application bundle. A missing bundle is not
// an error.
func (i *MacInstaller) Uninstall(_ context.Context) error {
	bundle := i.config.BundlePath

	removed, err := fileutil.RemoveIfExists(bundle)
	if err != nil {
		return filesystem(err, "removing helper application")
	}
	if !removed {
		fmt.Fprintf(i.out, "Helper application %s not found, nothing to remove\n", bundle)
		return nil
	}

	i.logger.Debug("helper application removed", "bundle", bundle)
	fmt.Fprintf(i.out, "Removed helper application %s\n", bundle)
	return nil
}

// writeTempScript writes script to a temporary .applescript file and
// returns its path and a cleanup func.
func writeTempScript(script string) (string, func(), error) {
	f, err := os.CreateTemp("", paths.AppName+"-*.applescript")
	if err != nil {
		return "", nil, filesystem(err, "creating script file")
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := f.WriteString(script); err != nil {
		f.Close()
		cleanup()
		return "", nil, filesystem(err, "writing script file")
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, filesystem(err, "closing script file")
	}
	return f.Name(), cleanup, nil
}
