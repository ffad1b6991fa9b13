package linestore

import (
	"errors"
	"io/fs"
)

var (
	// ErrInvalidLineNumber is returned by Edit and Delete when the line
	// number is outside of 1..count
	ErrInvalidLineNumber = errors.New("invalid line number")

	// ErrInvalidText is returned when text contains a newline
	ErrInvalidText = errors.New("text cannot contain newlines")
)

// IOError reports a failure of the file backing the store.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return "linestore: " + e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioErr(op string, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsNotExist returns true if err means the store file doesn't exist yet.
// That's the normal state of a store that was never written to.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// IsIOError returns true if err is (or wraps) an *IOError
func IsIOError(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}
