package store

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store: closed")

	// ErrNotFound is returned by Get when no record has the id.
	ErrNotFound = errors.New("store: record not found")

	// ErrStorage is matched by every *Error via errors.Is.
	ErrStorage = errors.New("store: storage failure")

	// ErrSchemaVariant is returned by Open when the database was created
	// with the other schema variant.
	ErrSchemaVariant = errors.New("store: schema variant mismatch")
)

// Error wraps a failure reported by the SQLite backend.
//
// Storage errors are never retried by the store; the caller decides whether
// to retry or give up.
type Error struct {
	// Op is the store operation that failed, e.g. "create".
	Op string

	// Err is the underlying driver error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStorage) true for any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrStorage
}

// IsStorageError returns true if err is or wraps a storage failure.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
