// Package runner invokes the native helper executables the installers depend
// on: xdg-mime on Linux, osacompile and open on macOS.
//
// The contract is deliberately thin. A command succeeds when it exits with
// status 0; a non-zero exit or a failure to start it is an error marked with
// errors.ErrExternalTool. Nothing else about the tool is assumed.
package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/thoreinstein/org-protocol/internal/errors"
	"github.com/thoreinstein/org-protocol/internal/logging"
)

// Runner runs an external command and waits for it to finish.
type Runner interface {
	// Run executes name with args. It returns nil only on exit status 0.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes name with args and returns its trimmed standard output.
	Output(ctx context.Context, name string, args ...string) (string, error)

	// LookPath reports where name would be found on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct {
	logger *slog.Logger
}

var _ Runner = (*ExecRunner)(nil)

// New returns an ExecRunner that logs each invocation at debug level.
// A nil logger uses slog.Default().
func New(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{logger: logger}
}

// Run executes the command and blocks until it exits. Combined stdout and
// stderr are captured and included in the error when the command fails.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	var output bytes.Buffer
	if err := r.exec(ctx, &output, &output, name, args); err != nil {
		return err
	}

	if out := strings.TrimSpace(output.String()); out != "" {
		r.logger.Log(ctx, logging.LevelTrace, "external tool output", "cmd", name, "output", out)
	}
	return nil
}

// Output executes the command and returns stdout with surrounding
// whitespace removed. Stderr is only reported on failure.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	if err := r.exec(ctx, &stdout, &stderr, name, args); err != nil {
		return "", err
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (r *ExecRunner) exec(ctx context.Context, stdout, stderr *bytes.Buffer, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	r.logger.Debug("running external tool", "cmd", name, "args", args)

	if err := cmd.Run(); err != nil {
		return commandError(name, args, err, stderr.String())
	}
	return nil
}

// LookPath wraps exec.LookPath, marking a miss as an external tool error.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.WithHint(
			errors.Mark(errors.Wrapf(err, "locating %s", name), errors.ErrExternalTool),
			installHint(name),
		)
	}
	return path, nil
}

func commandError(name string, args []string, err error, output string) error {
	line := strings.Join(append([]string{name}, args...), " ")

	var wrapped error
	var exitErr *exec.ExitError
	switch {
	case !errors.As(err, &exitErr):
		wrapped = errors.Wrapf(err, "starting %s", line)
	case strings.TrimSpace(output) != "":
		wrapped = errors.Wrapf(err, "%s exited with status %d (%s)", line, exitErr.ExitCode(), strings.TrimSpace(output))
	default:
		wrapped = errors.Wrapf(err, "%s exited with status %d", line, exitErr.ExitCode())
	}

	return errors.WithHint(errors.Mark(wrapped, errors.ErrExternalTool), installHint(name))
}

// installHint names the package that usually provides a helper tool.
func installHint(name string) string {
	switch name {
	case "xdg-mime":
		return "Install xdg-utils (e.g. apt install xdg-utils) and re-run the installer"
	case "osacompile", "open":
		return name + " ships with macOS; make sure /usr/bin is on PATH"
	default:
		return "Make sure " + name + " is installed and on PATH"
	}
}
