package message

import "fmt"

// ErrBadPayload is returned when an envelope or payload can not be
// decoded into its typed form.
type ErrBadPayload struct {
	Kind   Kind
	Reason string
}

func (e *ErrBadPayload) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("bad %s payload: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("bad message: %s", e.Reason)
}
