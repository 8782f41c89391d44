package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, external tools, permissions, etc.).
	ExitSystem = 2
)

// Error categories. Errors returned by the installers are marked with exactly
// one of these so callers can branch with [Is] regardless of wrapping.
var (
	// ErrConfiguration indicates an unrecognized target or a missing required
	// field. It is detected before any installer runs.
	ErrConfiguration = crdb.New("configuration error")

	// ErrFilesystem indicates a create, open, write, or remove failure.
	ErrFilesystem = crdb.New("filesystem error")

	// ErrExternalTool indicates a helper executable exited non-zero or could
	// not be started.
	ErrExternalTool = crdb.New("external tool error")

	// ErrMalformedInput indicates a file that could not be parsed or lacks
	// the structure the installer needs to modify it.
	ErrMalformedInput = crdb.New("malformed input")
)

// Re-exported helpers so callers only import one errors package.
var (
	New      = crdb.New
	Newf     = crdb.Newf
	Wrap     = crdb.Wrap
	Wrapf    = crdb.Wrapf
	Is       = crdb.Is
	As       = crdb.As
	Mark     = crdb.Mark
	WithHint = crdb.WithHint
)

// Hints returns every hint attached anywhere in err's chain.
func Hints(err error) []string {
	return crdb.GetAllHints(err)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        crdb.Mark(err, ErrConfiguration),
		Code:       ExitUser,
		Suggestion: "Run: org-protocol-installer doctor",
	}
}

// FromError classifies err by its category mark. Configuration errors map to
// ExitUser; everything else maps to ExitSystem. The first hint attached to the
// chain, if any, becomes the suggestion. An existing ExitError is returned as is.
func FromError(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr
	}

	code := ExitSystem
	if crdb.Is(err, ErrConfiguration) {
		code = ExitUser
	}

	var suggestion string
	if hints := crdb.GetAllHints(err); len(hints) > 0 {
		suggestion = hints[0]
	}

	return &ExitError{
		Err:        err,
		Code:       code,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
