package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// BackendError wraps a backend failure that has no store sentinel.
type BackendError struct {
	Original error
}

func (e BackendError) Error() string {
	return fmt.Sprintf("store: backend: %v", e.Original)
}

func (e BackendError) Unwrap() error { return e.Original }

var (
	// ErrEmptyKey is returned by SetRaw for a zero-length key.
	ErrEmptyKey = errors.New("store: empty key")

	// ErrKeyNotFound is returned by GetRaw for an absent key.
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrConflict is returned by Update when a concurrent transaction wrote
	// keys this one read. The caller may retry.
	ErrConflict = errors.New("store: transaction conflict")

	// ErrReadOnlyTxn is returned by writes inside View.
	ErrReadOnlyTxn = errors.New("store: write in read-only transaction")

	// ErrDiscardedTxn is returned when a transaction is used after its
	// callback returned.
	ErrDiscardedTxn = errors.New("store: transaction already finished")

	ErrClosed = errors.New("store: database closed")
)

// NewBackendError wraps err with a stack trace.
func NewBackendError(err error) error {
	return errors.WithStack(BackendError{err})
}
