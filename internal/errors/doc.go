// Package errors provides error handling conventions for the claudekit CLI.
//
// It re-exports the wrapping helpers from github.com/cockroachdb/errors so
// callers need a single import, and defines [ExitError] for mapping
// failures to process exit codes.
//
// # Exit Codes
//
//   - ExitSuccess (0): command completed successfully
//   - ExitUser (1): validation or verification failure, bad input
//   - ExitSystem (2): I/O, git or permission failure
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and an optional
// suggestion:
//
//	err := errors.NewUserError(errors.ErrVerificationFailed, "Run: claudekit install")
//	var exitErr *errors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
