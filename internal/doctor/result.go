package doctor

import "github.com/thoreinstein/org-protocol/internal/errors"

// Severity orders check outcomes from harmless to blocking.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	// SeverityWarning means the handler may work but something is off,
	// such as a world-writable applications directory.
	SeverityWarning
	// SeverityError means org-protocol:// links will not reach Emacs.
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name in JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return errors.Mark(errors.Newf("unknown severity %q", text), errors.ErrMalformedInput)
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details carries check-specific context such as the path inspected.
	Details map[string]any `json:"details,omitempty"`

	// Fixable is set when doctor --fix can repair the problem in place.
	Fixable bool   `json:"fixable,omitempty"`
	FixHint string `json:"fix_hint,omitempty"`
}

// Summary counts results by severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Add counts one result of severity s.
func (s *Summary) Add(sev Severity) {
	switch sev {
	case SeverityPass:
		s.Passed++
	case SeverityInfo:
		s.Info++
	case SeverityWarning:
		s.Warnings++
	case SeverityError:
		s.Errors++
	}
}

// Total is the number of results counted.
func (s Summary) Total() int {
	return s.Passed + s.Info + s.Warnings + s.Errors
}

// Worst returns the highest severity counted, or SeverityPass when empty.
func (s Summary) Worst() Severity {
	switch {
	case s.Errors > 0:
		return SeverityError
	case s.Warnings > 0:
		return SeverityWarning
	case s.Info > 0:
		return SeverityInfo
	default:
		return SeverityPass
	}
}
