package cli

import (
	"errors"
	"fmt"

	"github.com/kjk/rentman/auth"
	"github.com/kjk/rentman/backup"
	"github.com/kjk/rentman/linestore"
	"github.com/kjk/rentman/record"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed (I/O error, record not found, login failed)
	ExitCommandError = 2 // Invalid arguments (bad line number, bad field value, unknown format)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func isInvalidArgument(err error) bool {
	return errors.Is(err, linestore.ErrInvalidLineNumber) ||
		errors.Is(err, linestore.ErrInvalidText) ||
		errors.Is(err, record.ErrInvalidField) ||
		errors.Is(err, auth.ErrInvalidField) ||
		errors.Is(err, backup.ErrUnknownFormat)
}

// wrapErr maps err to exit code by its category
func wrapErr(message string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	code := ExitFailure
	if isInvalidArgument(err) {
		code = ExitCommandError
	}
	return WrapExitError(code, message, err)
}
