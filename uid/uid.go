/*
	Node-unique 128-bit identifiers. Every object a node owns is addressed
	by exactly one of these. Values are random, never content-derived, so
	two nodes can mint ids concurrently without coordination.
*/

package uid

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// Size is the wire size of an identifier in bytes.
const Size = 16

// UID is an immutable 128-bit identifier. The zero value is not a valid
// identifier; use New or FromBytes. UID is comparable and safe to use as
// a map key directly.
type UID struct {
	value uuid.UUID
}

// New mints a fresh random identifier. It never blocks; the underlying
// reader is the process CSPRNG.
func New() UID {
	return UID{value: uuid.New()}
}

// FromBytes reconstructs an identifier from its exact 16-byte wire form.
func FromBytes(b []byte) (UID, error) {
	if len(b) != Size {
		return UID{}, &ErrInvalidIdentifierBytes{Length: len(b)}
	}
	v, err := uuid.FromBytes(b)
	if err != nil {
		return UID{}, &ErrInvalidIdentifierBytes{Length: len(b), Reason: err.Error()}
	}
	return UID{value: v}, nil
}

// MustParse builds a UID from the canonical string form, panicking on
// malformed input. Test and fixture use only.
func MustParse(s string) UID {
	return UID{value: uuid.MustParse(s)}
}

// Bytes returns the 16-byte wire form. Round trip through FromBytes
// reproduces the identical identifier bit for bit.
func (u UID) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, u.value[:])
	return b
}

// Equal reports whether other is a UID with the same 128-bit value.
// Comparison against anything that is not a UID is false, never a panic.
func (u UID) Equal(other any) bool {
	switch o := other.(type) {
	case UID:
		return u.value == o.value
	case *UID:
		return o != nil && u.value == o.value
	default:
		return false
	}
}

// Hash folds the 128-bit value into a fixed-width key. Equal identifiers
// hash identically. Residual collisions between distinct identifiers are
// the store's problem to detect, not ours.
func (u UID) Hash() uint64 {
	h := fnv.New64a()
	h.Write(u.value[:])
	return h.Sum64()
}

// IsZero reports whether u is the uninitialized identifier.
func (u UID) IsZero() bool {
	return u.value == uuid.UUID{}
}

func (u UID) String() string {
	return fmt.Sprintf("<UID:%s>", u.value.String())
}

// MarshalText/UnmarshalText let a UID ride inside json envelopes as the
// canonical uuid string without a custom codec at every call site.
func (u UID) MarshalText() ([]byte, error) {
	return []byte(u.value.String()), nil
}

func (u *UID) UnmarshalText(b []byte) error {
	v, err := uuid.Parse(string(b))
	if err != nil {
		return &ErrInvalidIdentifierBytes{Length: len(b), Reason: err.Error()}
	}
	u.value = v
	return nil
}
