package core

import (
	"errors"
	"fmt"

	"ledgerbook/internal/docstore"
)

// ErrNotFound is returned when an operation targets an id that does not
// resolve to an existing record. Distinct from storage failures.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a malformed or missing field, rejected before any
// write is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps an underlying document-store failure. The core performs
// no retries and no rollback of steps already applied; the error surfaces to
// the caller untouched.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// classify maps docstore errors onto the core taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, docstore.ErrNoDocument) {
		return ErrNotFound
	}
	return &StorageError{Op: op, Err: err}
}
