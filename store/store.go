/*
	Per-node object storage keyed by identifier. The store is the single
	shared mutable resource between concurrently dispatched messages, so
	every implementation must be safe for interleaved save/get/delete on
	the same identifier.
*/

package store

import "github.com/meshworks/gridnode/uid"

// Store maps identifiers to the opaque objects a node owns. At most one
// entry exists per identifier; Save against an existing key overwrites
// (last write wins). Absence is reported as *ErrNotFound, a recoverable
// condition, never a panic.
type Store interface {
	Save(id uid.UID, obj any) error
	Get(id uid.UID) (any, error)
	Delete(id uid.UID) error

	// Len reports the number of live entries.
	Len() int
}

// Closer is implemented by stores that hold resources beyond process
// memory. Callers that construct such a store own its shutdown.
type Closer interface {
	Close() error
}
