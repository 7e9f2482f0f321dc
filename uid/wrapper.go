package uid

import (
	"sync"

	"github.com/google/uuid"
)

// A WrapperAdapter teaches the decoder how to hand back a foreign
// library's native identifier instead of a domain UID. Adapters are
// registered once at process init and consulted explicitly; the foreign
// type itself is never modified.
type WrapperAdapter interface {
	// Name identifies the foreign identifier family in the envelope.
	Name() string
	// Unwrap turns the 16-byte wire form into the raw foreign value.
	Unwrap(b []byte) (any, error)
}

// NativeWrapper is the adapter name used when no explicit family is
// carried in the envelope. It unwraps to the library-native uuid.UUID.
const NativeWrapper = "uuid"

var (
	adaptersMu sync.RWMutex
	adapters   = map[string]WrapperAdapter{}
)

// RegisterWrapper installs an adapter process-wide. Later registrations
// for the same name replace earlier ones; call at init time only.
func RegisterWrapper(a WrapperAdapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	adapters[a.Name()] = a
}

type uuidAdapter struct{}

func (uuidAdapter) Name() string { return NativeWrapper }

func (uuidAdapter) Unwrap(b []byte) (any, error) {
	v, err := uuid.FromBytes(b)
	if err != nil {
		return nil, &ErrInvalidIdentifierBytes{Length: len(b), Reason: err.Error()}
	}
	return v, nil
}

func init() {
	RegisterWrapper(uuidAdapter{})
}

// Decoded is the tagged result of decoding identifier bytes. Exactly one
// of ID / Raw is meaningful, selected by AsWrapper.
type Decoded struct {
	ID        UID
	Raw       any
	AsWrapper bool
}

// Decode reconstructs identifier bytes received off the wire. When
// asWrapper is false the result is a domain UID. When asWrapper is true
// the named adapter (NativeWrapper if adapter is empty) produces the raw
// foreign identifier value instead.
func Decode(b []byte, asWrapper bool, adapter string) (Decoded, error) {
	if !asWrapper {
		id, err := FromBytes(b)
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{ID: id}, nil
	}

	if adapter == "" {
		adapter = NativeWrapper
	}

	adaptersMu.RLock()
	a, ok := adapters[adapter]
	adaptersMu.RUnlock()
	if !ok {
		return Decoded{}, &ErrUnknownWrapper{Adapter: adapter}
	}

	raw, err := a.Unwrap(b)
	if err != nil {
		return Decoded{}, err
	}
	return Decoded{Raw: raw, AsWrapper: true}, nil
}
