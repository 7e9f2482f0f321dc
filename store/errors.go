package store

import (
	"fmt"

	"github.com/meshworks/gridnode/uid"
)

// ErrNotFound is returned when no object exists under an identifier.
type ErrNotFound struct {
	ID uid.UID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("no object stored under %s", e.ID)
}

// ErrInternal is returned when the backing medium fails.
type ErrInternal struct {
	Err error
}

func (e *ErrInternal) Error() string {
	return fmt.Sprintf("internal store error: %v", e.Err)
}

func (e *ErrInternal) Unwrap() error {
	return e.Err
}

// ErrEncoding is returned when an object can not be encoded for, or
// decoded from, a durable backend.
type ErrEncoding struct {
	ID     uid.UID
	Reason string
}

func (e *ErrEncoding) Error() string {
	return fmt.Sprintf("encoding failure for %s: %s", e.ID, e.Reason)
}
