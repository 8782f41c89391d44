// Package errors provides error handling conventions for org-protocol-installer.
//
// It builds on github.com/cockroachdb/errors and adds four category
// sentinels that every installer failure is marked with, an ExitError type for
// CLI exit code handling, and exit code constants following standard Unix
// conventions.
//
// # Categories
//
// Callers check the category with [Is], which sees through any amount of
// wrapping:
//
//	if errors.Is(err, errors.ErrExternalTool) {
//	    // xdg-mime or osacompile failed or is missing
//	}
//
// The categories are [ErrConfiguration], [ErrFilesystem], [ErrExternalTool]
// and [ErrMalformedInput].
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Configuration error (bad flags, missing emacsclient, etc.)
//   - ExitSystem (2): Filesystem, external tool, or malformed input error
//
// # ExitError
//
// [FromError] converts a categorized error into an [ExitError], lifting the
// first hint in the chain into the Suggestion field:
//
//	exitErr := errors.FromError(err)
//	if exitErr.Suggestion != "" {
//	    fmt.Println("Suggestion:", exitErr.Suggestion)
//	}
//	os.Exit(exitErr.Code)
package errors
