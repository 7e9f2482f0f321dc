package store

import (
	"encoding/json"

	"github.com/meshworks/gridnode/uid"
)

// Typed is a convenience view over a Store for embedders that keep one
// kind of object and want it back as that type rather than as the
// store's opaque form. Values pass through json so the view works the
// same over the memory and durable backends.
type Typed[T any] struct {
	backing Store
}

func NewTyped[T any](backing Store) *Typed[T] {
	return &Typed[T]{backing: backing}
}

func (t *Typed[T]) Save(id uid.UID, obj T) error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return &ErrEncoding{ID: id, Reason: err.Error()}
	}
	return t.backing.Save(id, json.RawMessage(raw))
}

func (t *Typed[T]) Get(id uid.UID) (T, error) {
	var zero T
	obj, err := t.backing.Get(id)
	if err != nil {
		return zero, err
	}

	// memory backend hands back exactly what was saved; the durable
	// backend hands back the decoded json form
	var raw []byte
	switch v := obj.(type) {
	case json.RawMessage:
		raw = v
	default:
		raw, err = json.Marshal(v)
		if err != nil {
			return zero, &ErrEncoding{ID: id, Reason: err.Error()}
		}
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, &ErrEncoding{ID: id, Reason: err.Error()}
	}
	return out, nil
}

func (t *Typed[T]) Delete(id uid.UID) error {
	return t.backing.Delete(id)
}
