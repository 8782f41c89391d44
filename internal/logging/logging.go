package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/thoreinstein/org-protocol/internal/errors"
)

// Format is the console log encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --log-format value. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", errors.NewUserError(errors.Newf("unknown log format %q", s), "Log format must be one of: text, json")
}

// LevelTrace sits below debug and is enabled by -vvv. External tool output
// is logged at this level.
const LevelTrace = slog.Level(-8)

// LevelFromVerbosity maps the count of -v flags to a log level.
// No flags logs warnings and errors only.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// levelName renders LevelTrace as TRACE instead of DEBUG-4.
func levelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}

// renameTrace is a ReplaceAttr hook for slog's built-in handlers.
func renameTrace(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(l))
		}
	}
	return a
}

// Options configures Setup.
type Options struct {
	Level  slog.Level
	Format Format

	// Console receives human-facing output. Nil means os.Stderr.
	Console io.Writer

	// File, when set, is opened for append and receives JSON records at
	// the same level as the console.
	File string
}

// Setup builds a logger from opts. The returned closer releases the log
// file and is safe to call when no file was opened.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	handler := consoleHandler(console, opts.Format, opts.Level)
	if opts.File == "" {
		return slog.New(handler), nopCloser{}, nil
	}

	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, errors.NewUserError(
			errors.Wrapf(err, "opening log file %s", opts.File),
			"Check that the log file's directory exists and is writable",
		)
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: renameTrace})

	return slog.New(fanout{handler, file}), f, nil
}

func consoleHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: renameTrace}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return NewHandler(w, opts)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForTest returns a logger at trace level writing to t's output, so lines
// appear only for failing tests or under -v.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(NewHandler(t.Output(), &slog.HandlerOptions{Level: LevelTrace}))
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored by NewContext, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}
