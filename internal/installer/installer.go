package installer

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/thoreinstein/org-protocol/internal/config"
	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/runner"
)

// Installer registers or unregisters the org-protocol URL scheme handler.
//
// Both operations are idempotent. Install overwrites every generated file,
// so running it twice leaves the same state as running it once. Uninstall
// succeeds without changes when nothing is installed.
type Installer interface {
	// Install writes the handler artifacts and registers them with the OS.
	Install(ctx context.Context) error

	// Uninstall removes the handler artifacts.
	Uninstall(ctx context.Context) error
}

// Option configures an installer.
type Option func(*options)

type options struct {
	runner runner.Runner
	logger *slog.Logger
	out    io.Writer
}

// WithRunner sets the runner used for external tools.
func WithRunner(r runner.Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOutput sets where operator-facing progress messages are written.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		logger: slog.Default(),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.runner == nil {
		o.runner = runner.New(o.logger)
	}
	return o
}

// New returns the installer for cfg.Target. The config is validated again
// here, so an installer is never built from an invalid value.
func New(cfg *config.Config, opts ...Option) (Installer, error) {
	if cfg == nil {
		return nil, errors.Mark(errors.New("config is nil"), errors.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Target {
	case config.TargetLinux:
		return NewLinux(cfg.Linux, opts...), nil
	case config.TargetMacOS:
		return NewMac(cfg.MacOS, opts...), nil
	default:
		// Unreachable after Validate
		return nil, errors.Mark(errors.Newf("unsupported target %q", cfg.Target), errors.ErrConfiguration)
	}
}

// Run performs mode on inst.
func Run(ctx context.Context, inst Installer, mode config.Mode) error {
	switch mode {
	case config.ModeInstall:
		return inst.Install(ctx)
	case config.ModeUninstall:
		return inst.Uninstall(ctx)
	default:
		return errors.Mark(errors.Newf("unknown mode %q", mode), errors.ErrConfiguration)
	}
}

// filesystem marks err as a filesystem error with context.
func filesystem(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), errors.ErrFilesystem)
}
