package uid

import "fmt"

// ErrInvalidIdentifierBytes is returned when a byte form can not be
// reconstructed into a 128-bit identifier.
type ErrInvalidIdentifierBytes struct {
	Length int
	Reason string
}

func (e *ErrInvalidIdentifierBytes) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid identifier bytes (len %d): %s", e.Length, e.Reason)
	}
	return fmt.Sprintf("invalid identifier bytes: want %d bytes, got %d", Size, e.Length)
}

// ErrUnknownWrapper is returned when a wrapped identifier names an
// adapter that was never registered.
type ErrUnknownWrapper struct {
	Adapter string
}

func (e *ErrUnknownWrapper) Error() string {
	return fmt.Sprintf("no wrapper adapter registered for '%s'", e.Adapter)
}
