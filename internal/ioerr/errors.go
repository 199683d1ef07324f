// Package ioerr classifies file-system failures for the gbm pipeline.
//
// Every open, read or write failure on an input or output path is reported as a
// *FileError. The error matches one of the kind sentinels with errors.Is, so
// callers can tell a missing file from an unreadable one without string checks.
package ioerr

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind sentinels.
var (
	ErrFileNotFound   = errors.New("file not found")
	ErrFileUnreadable = errors.New("file unreadable")
	ErrFileUnwritable = errors.New("file unwritable")
)

// Op names the file operation that failed.
type Op string

const (
	OpOpen   Op = "open"
	OpRead   Op = "read"
	OpCreate Op = "create"
	OpWrite  Op = "write"
)

// FileError is a failed operation on a named path.
type FileError struct {
	Op   Op     // operation that failed
	Path string // path as given by the caller
	Kind error  // one of the kind sentinels
	Err  error  // underlying cause, may be nil
}

// Error implements the error interface.
func (e *FileError) Error() string {
	verb := "open"
	switch e.Op {
	case OpRead:
		verb = "read"
	case OpWrite:
		verb = "write"
	}

	msg := fmt.Sprintf("could not %s file: %s: %v", verb, e.Path, e.Kind)
	if cause := rootCause(e.Err); cause != nil {
		msg += " (" + cause.Error() + ")"
	}
	return msg
}

// Unwrap allows errors.Is and errors.As to match both the kind and the cause.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New classifies err for op on path. A nil err returns nil.
func New(op Op, path string, err error) error {
	if err == nil {
		return nil
	}

	var kind error
	switch {
	case op == OpOpen && errors.Is(err, fs.ErrNotExist):
		kind = ErrFileNotFound
	case op == OpCreate || op == OpWrite:
		kind = ErrFileUnwritable
	default:
		kind = ErrFileUnreadable
	}

	return &FileError{Op: op, Path: path, Kind: kind, Err: err}
}

// Path returns the path carried by err if it is a *FileError.
func Path(err error) (string, bool) {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Path, true
	}
	return "", false
}

// rootCause strips *fs.PathError so the path is not repeated in messages.
func rootCause(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
