package installer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/paths"
	"github.com/thoreinstein/org-protocol/internal/runner"
	"github.com/thoreinstein/org-protocol/pkg/fileutil"
)

// SchemeMimeType is the pseudo MIME type desktop environments use for URL
// scheme handlers.
const SchemeMimeType = "x-scheme-handler/org-protocol"

// DesktopEntry is the content of the generated desktop entry file.
const DesktopEntry = `[Desktop Entry]
Name=Org-Protocol
Exec=emacsclient %u
Icon=emacs-icon
Type=Application
Terminal=false
MimeType=x-scheme-handler/org-protocol
`

// LinuxInstaller writes a desktop entry and makes it the default
// x-scheme-handler/org-protocol handler via xdg-mime.
type LinuxInstaller struct {
	config *config.LinuxConfig
	runner runner.Runner
	logger *slog.Logger
	out    io.Writer
}

var _ Installer = (*LinuxInstaller)(nil)

// NewLinux returns a LinuxInstaller for cfg.
func NewLinux(cfg *config.LinuxConfig, opts ...Option) *LinuxInstaller {
	o := newOptions(opts)
	return &LinuxInstaller{
		config: cfg,
		runner: o.runner,
		logger: o.logger.With("target", config.TargetLinux),
		out:    o.out,
	}
}

// Install writes the desktop entry, replacing any existing file, then
// registers it with xdg-mime. Registration is only attempted once the file
// is fully on disk.
func (i *LinuxInstaller) Install(ctx context.Context) error {
	path := i.config.DesktopFilePath()

	fmt.Fprintf(i.out, "Installing desktop entry %s\n", path)
	if err := paths.EnsureDir(i.config.DesktopEntryDirectory, 0o755); err != nil {
		return filesystem(err, "creating desktop entry directory")
	}
	if err := fileutil.AtomicWriteFile(path, []byte(DesktopEntry), 0o644); err != nil {
		return filesystem(err, "writing desktop entry")
	}
	i.logger.Debug("desktop entry written", "path", path)

	fmt.Fprintln(i.out, "Registering org-protocol handler with xdg-mime")
	if err := i.runner.Run(ctx, "xdg-mime", "default", i.config.DesktopFileName, SchemeMimeType); err != nil {
		return errors.Wrap(err, "registering default scheme handler")
	}

	return nil
}

// Uninstall removes the desktop entry. A missing file is not an error.
func (i *LinuxInstaller) Uninstall(_ context.Context) error {
	path := i.config.DesktopFilePath()

	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(i.out, "Desktop entry %s not found, nothing to remove\n", path)
		return nil
	}
	if err != nil {
		return filesystem(err, "removing desktop entry")
	}

	i.logger.Debug("desktop entry removed", "path", path)
	fmt.Fprintf(i.out, "Removed desktop entry %s\n", path)
	return nil
}
