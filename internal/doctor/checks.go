package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/installer"
	"github.com/thoreinstein/org-protocol/internal/paths"
	"github.com/thoreinstein/org-protocol/internal/plist"
	"github.com/thoreinstein/org-protocol/internal/runner"
	"github.com/thoreinstein/org-protocol/pkg/fileutil"
)

// ForTarget returns the checks for target, in the order they should run.
func ForTarget(target config.Target, s *config.Settings, r runner.Runner) []Check {
	if s == nil {
		s = &config.Settings{}
	}

	switch target {
	case config.TargetLinux:
		path := s.Linux.DesktopFilePath()
		return []Check{
			NewToolCheck("xdg-mime", r),
			NewEmacsclientCheck("", r),
			NewDesktopEntryCheck(path),
			NewRegistrationCheck(s.Linux.DesktopFileName, r),
			NewPathPermissionCheck(s.Linux.DesktopEntryDirectory, path),
		}
	case config.TargetMacOS:
		bundle := s.MacOS.BundlePath
		return []Check{
			NewToolCheck("osacompile", r),
			NewToolCheck("open", r),
			NewEmacsclientCheck(s.MacOS.EmacsclientPath, r),
			NewHelperBundleCheck(bundle),
			NewPathPermissionCheck(filepath.Dir(bundle), bundle),
		}
	default:
		return nil
	}
}

// ToolCheck verifies an external tool is on PATH.
type ToolCheck struct {
	tool   string
	runner runner.Runner
}

var _ Check = (*ToolCheck)(nil)

// NewToolCheck creates a check for tool.
func NewToolCheck(tool string, r runner.Runner) *ToolCheck {
	return &ToolCheck{tool: tool, runner: r}
}

// Name returns the unique identifier for this check.
func (c *ToolCheck) Name() string {
	return "tool-" + c.tool
}

// Category returns the grouping for this check.
func (c *ToolCheck) Category() string {
	return "tools"
}

// Run executes the check.
func (c *ToolCheck) Run(_ context.Context) *CheckResult {
	path, err := c.runner.LookPath(c.tool)
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  c.tool + " not found on PATH",
			FixHint:  firstHint(err),
		}
	}
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  c.tool + " found",
		Details:  map[string]any{"path": path},
	}
}

// EmacsclientCheck verifies the emacsclient binary URLs are forwarded to.
// An empty path means emacsclient is resolved from PATH at handling time,
// which is how the desktop entry invokes it.
type EmacsclientCheck struct {
	path   string
	runner runner.Runner
}

var _ Check = (*EmacsclientCheck)(nil)

// NewEmacsclientCheck creates an emacsclient check.
func NewEmacsclientCheck(path string, r runner.Runner) *EmacsclientCheck {
	return &EmacsclientCheck{path: path, runner: r}
}

// Name returns the unique identifier for this check.
func (c *EmacsclientCheck) Name() string {
	return "emacsclient"
}

// Category returns the grouping for this check.
func (c *EmacsclientCheck) Category() string {
	return "tools"
}

// Run executes the check.
func (c *EmacsclientCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if c.path == "" {
		path, err := c.runner.LookPath("emacsclient")
		if err != nil {
			result.Status = SeverityError
			result.Message = "emacsclient not found on PATH"
			result.FixHint = "install Emacs or add its bin directory to PATH"
			return result
		}
		result.Status = SeverityPass
		result.Message = "emacsclient found"
		result.Details = map[string]any{"path": path}
		return result
	}

	result.Details = map[string]any{"path": c.path}
	info, err := os.Stat(c.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityError
		result.Message = "configured emacsclient does not exist"
		result.FixHint = "pass --emacsclient with the full path to emacsclient"
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat emacsclient: %v", err)
	case info.IsDir():
		result.Status = SeverityError
		result.Message = "configured emacsclient is a directory"
		result.FixHint = "pass --emacsclient with the full path to emacsclient"
	case info.Mode().Perm()&0o111 == 0:
		result.Status = SeverityError
		result.Message = "configured emacsclient is not executable"
		result.FixHint = "chmod +x " + c.path
	default:
		result.Status = SeverityPass
		result.Message = "emacsclient is executable"
	}
	return result
}

// DesktopEntryCheck reports whether the desktop entry is installed and
// matches what the installer writes.
type DesktopEntryCheck struct {
	path string
}

var _ Check = (*DesktopEntryCheck)(nil)

// NewDesktopEntryCheck creates a check for the desktop entry at path.
func NewDesktopEntryCheck(path string) *DesktopEntryCheck {
	return &DesktopEntryCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *DesktopEntryCheck) Name() string {
	return "desktop-entry"
}

// Category returns the grouping for this check.
func (c *DesktopEntryCheck) Category() string {
	return "install"
}

// Run executes the check.
func (c *DesktopEntryCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	data, err := fileutil.ReadLimited(c.path, fileutil.DefaultReadLimit)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityInfo
		result.Message = "desktop entry not installed"
		result.FixHint = "run: org-protocol-installer linux install"
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read desktop entry: %v", err)
	case string(data) != installer.DesktopEntry:
		result.Status = SeverityWarning
		result.Message = "desktop entry differs from the generated one"
		result.FixHint = "run: org-protocol-installer linux install"
	default:
		result.Status = SeverityPass
		result.Message = "desktop entry installed"
	}
	return result
}

// RegistrationCheck asks xdg-mime which desktop entry handles
// org-protocol URLs.
type RegistrationCheck struct {
	desktopFileName string
	runner          runner.Runner
}

var _ Check = (*RegistrationCheck)(nil)

// NewRegistrationCheck creates a check expecting desktopFileName to be the
// registered handler.
func NewRegistrationCheck(desktopFileName string, r runner.Runner) *RegistrationCheck {
	return &RegistrationCheck{desktopFileName: desktopFileName, runner: r}
}

// Name returns the unique identifier for this check.
func (c *RegistrationCheck) Name() string {
	return "scheme-registration"
}

// Category returns the grouping for this check.
func (c *RegistrationCheck) Category() string {
	return "install"
}

// Run executes the check.
func (c *RegistrationCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	handler, err := c.runner.Output(ctx, "xdg-mime", "query", "default", installer.SchemeMimeType)
	switch {
	case err != nil:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("cannot query default handler: %v", err)
		result.FixHint = firstHint(err)
	case handler == "":
		result.Status = SeverityInfo
		result.Message = "no org-protocol handler registered"
		result.FixHint = "run: org-protocol-installer linux install"
	case handler != c.desktopFileName:
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("org-protocol URLs are handled by %s", handler)
		result.Details = map[string]any{"handler": handler, "expected": c.desktopFileName}
		result.FixHint = "run: org-protocol-installer linux install"
	default:
		result.Status = SeverityPass
		result.Message = "org-protocol handler registered"
		result.Details = map[string]any{"handler": handler}
	}
	return result
}

// HelperBundleCheck reports whether the helper application is installed
// and declares the org-protocol URL scheme.
type HelperBundleCheck struct {
	bundle string
}

var _ Check = (*HelperBundleCheck)(nil)

// NewHelperBundleCheck creates a check for the bundle at path.
func NewHelperBundleCheck(bundle string) *HelperBundleCheck {
	return &HelperBundleCheck{bundle: bundle}
}

// Name returns the unique identifier for this check.
func (c *HelperBundleCheck) Name() string {
	return "helper-app"
}

// Category returns the grouping for this check.
func (c *HelperBundleCheck) Category() string {
	return "install"
}

// Run executes the check.
func (c *HelperBundleCheck) Run(_ context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"bundle": c.bundle},
	}

	if _, err := os.Stat(c.bundle); errors.Is(err, fs.ErrNotExist) {
		result.Status = SeverityInfo
		result.Message = "helper application not installed"
		result.FixHint = "run: org-protocol-installer macos install"
		return result
	}

	plistPath := paths.InfoPlistPath(c.bundle)
	data, err := fileutil.ReadLimited(plistPath, fileutil.DefaultReadLimit)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read Info.plist: %v", err)
		result.FixHint = "run: org-protocol-installer macos install"
		return result
	}

	declared, err := plist.HasURLScheme(data, plist.Scheme)
	switch {
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("Info.plist is malformed: %v", err)
		result.FixHint = "run: org-protocol-installer macos install"
	case !declared:
		result.Status = SeverityWarning
		result.Message = "helper application does not declare the org-protocol scheme"
		result.FixHint = "run: org-protocol-installer macos install"
	default:
		result.Status = SeverityPass
		result.Message = "helper application installed"
	}
	return result
}

// firstHint returns the first user-facing hint attached to err.
func firstHint(err error) string {
	if hints := errors.Hints(err); len(hints) > 0 {
		return hints[0]
	}
	return ""
}
