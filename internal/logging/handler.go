package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// palette colors the parts of a line. A nil palette prints plain text.
type palette struct {
	time, key        *color.Color
	trace, debug     *color.Color
	info, warn, fail *color.Color
}

func newPalette() *palette {
	return &palette{
		time:  color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
	}
}

func (p *palette) level(l slog.Level) string {
	name := levelName(l)
	if p == nil {
		return name
	}
	switch {
	case l >= slog.LevelError:
		return p.fail.Sprint(name)
	case l >= slog.LevelWarn:
		return p.warn.Sprint(name)
	case l >= slog.LevelInfo:
		return p.info.Sprint(name)
	case l > LevelTrace:
		return p.debug.Sprint(name)
	default:
		return p.trace.Sprint(name)
	}
}

func (p *palette) timestamp(s string) string {
	if p == nil {
		return s
	}
	return p.time.Sprint(s)
}

func (p *palette) keyName(s string) string {
	if p == nil {
		return s
	}
	return p.key.Sprint(s)
}

// Handler writes one line per record:
//
//	3:04PM INFO  writing desktop entry path=/home/me/.local/share/applications/org-protocol.desktop
//
// Values containing spaces or quotes are quoted. Groups prefix keys with
// dots.
type Handler struct {
	level  slog.Leveler
	out    io.Writer
	mu     *sync.Mutex
	colors *palette
	prefix string
	attrs  string
}

// NewHandler returns a Handler writing to out. Colors are used only when out
// is a terminal that allows them.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}, level: slog.LevelInfo}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(h.colors.timestamp(r.Time.Format(time.Kitchen)))
		b.WriteByte(' ')
	}

	lvl := levelName(r.Level)
	b.WriteString(h.colors.level(r.Level))
	if pad := 5 - len(lvl); pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.attrs)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(b, prefix, ga)
		}
		return
	}

	fmt.Fprintf(b, " %s=%s", h.colors.keyName(prefix+a.Key), formatValue(a.Value))
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindString:
		s = v.String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		s = fmt.Sprint(v.Any())
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// WithAttrs pre-renders attrs so they are not formatted again per record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		h.writeAttr(&b, h.prefix, a)
	}
	next := *h
	next.attrs = b.String()
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
