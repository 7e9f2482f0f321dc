package worker

import (
	"errors"
	"fmt"

	"github.com/meshworks/gridnode/message"
	"github.com/meshworks/gridnode/uid"
)

// ErrNotImplementedTransport is returned when the base worker's
// abstract send/receive obligation is invoked directly. Concrete node
// types supply the transport; hitting this in traffic is a programming
// error, not a condition to recover from.
var ErrNotImplementedTransport = errors.New("transport not implemented on base worker")

// ErrUnknownKind is returned when the router has no handler for a
// received message kind. This is a protocol mismatch between caller and
// node and is never silently ignored.
type ErrUnknownKind struct {
	Kind message.Kind
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("no handler registered for message kind '%s'", e.Kind)
}

// ErrUnsupportedIndirection is returned when a target identifier
// resolves through a pointer chain longer than the single local hop
// this layer supports.
type ErrUnsupportedIndirection struct {
	ID       uid.UID
	Location string
}

func (e *ErrUnsupportedIndirection) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("object under %s is a pointer into '%s'; chained resolution is not supported", e.ID, e.Location)
	}
	return fmt.Sprintf("object under %s begins a multi-hop pointer chain; chained resolution is not supported", e.ID)
}

// ErrExecution wraps a failure raised by an invoked method, function or
// constructor.
type ErrExecution struct {
	Target string
	Err    error
}

func (e *ErrExecution) Error() string {
	return fmt.Sprintf("execution of '%s' failed: %v", e.Target, e.Err)
}

func (e *ErrExecution) Unwrap() error {
	return e.Err
}
