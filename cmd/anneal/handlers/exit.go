package handlers

import "errors"

// ExitError carries a process exit code alongside an error so main can
// distinguish fatal aborts from tolerated best-effort failures.
type ExitError struct {
	Code int
	Err  error
}

// Error implements the error interface.
func (e *ExitError) Error() string { return e.Err.Error() }

// Unwrap exposes the wrapped error.
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode extracts the exit code from an error chain. A nil error is 0 and
// errors without an explicit code are 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
