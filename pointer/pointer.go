/*
	A Pointer is a remote, non-owning reference: the object it names lives
	only in the owning node's store. Any number of pointers may reference
	the same identifier at once; dropping a pointer never affects the
	pointee.
*/

package pointer

import (
	"fmt"

	"github.com/meshworks/gridnode/uid"
)

type Pointer struct {
	// ID addresses the pointee in the owning node's store.
	ID uid.UID `json:"id"`
	// Location identifies the owning node.
	Location string `json:"location"`
	// TypeHint optionally caches the pointee's type name so callers can
	// decide what to do with the pointer without a round trip.
	TypeHint string `json:"type_hint,omitempty"`
}

// To builds a pointer at the given node for a stored object.
func To(id uid.UID, location string, typeHint string) Pointer {
	return Pointer{ID: id, Location: location, TypeHint: typeHint}
}

func (p Pointer) String() string {
	if p.TypeHint != "" {
		return fmt.Sprintf("<Pointer %s @ %s (%s)>", p.ID, p.Location, p.TypeHint)
	}
	return fmt.Sprintf("<Pointer %s @ %s>", p.ID, p.Location)
}
