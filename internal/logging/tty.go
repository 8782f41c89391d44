package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether w is backed by a terminal file descriptor.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether ANSI colors should be written to w.
// NO_COLOR (https://no-color.org) and TERM=dumb turn colors off.
func SupportsColor(w io.Writer) bool {
	return colorAllowed() && IsTTY(w)
}

func colorAllowed() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}
