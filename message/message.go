/*
	Typed request/response forms exchanged with a node. The envelope byte
	layout is owned by the serialization side of the transport; this
	package defines the closed set of variants, the json codec used by
	the websocket node, and the response shape.

	The identifier travels as its exact 16-byte wire form at the envelope
	level, with the wrapper flag carried out-of-band beside it rather
	than embedded in the bytes themselves.
*/

package message

import (
	"encoding/json"

	"github.com/meshworks/gridnode/uid"
)

// Kind is the discriminant identifying a request variant.
type Kind string

const (
	KindSaveObject     Kind = "save-object"
	KindGetObject      Kind = "get-object"
	KindDeleteObject   Kind = "delete-object"
	KindRunClassMethod Kind = "run-class-method"
	KindRunFunction    Kind = "run-function-or-constructor"
)

func (k Kind) String() string { return string(k) }

// Envelope is one request as it crosses the node boundary. Every
// variant carries exactly the fields needed to execute it; there is no
// multi-message negotiation at this layer.
type Envelope struct {
	Kind Kind `json:"kind"`

	// ID is the 16-byte identifier the variant operates on. Empty for
	// variants addressed by path instead.
	ID []byte `json:"id,omitempty"`
	// AsWrapper marks the identifier as a wrapped foreign id; see the
	// uid package's wrapper contract.
	AsWrapper bool `json:"as_wrapper,omitempty"`
	// Wrapper optionally names the adapter family for a wrapped id.
	Wrapper string `json:"wrapper,omitempty"`

	Payload json.RawMessage `json:"payload,omitempty"`
}

// UID reconstructs the envelope's target identifier.
func (e Envelope) UID() (uid.UID, error) {
	return uid.FromBytes(e.ID)
}

// DecodeID applies the full wrapper contract, yielding either a domain
// identifier or the raw foreign value.
func (e Envelope) DecodeID() (uid.Decoded, error) {
	return uid.Decode(e.ID, e.AsWrapper, e.Wrapper)
}

// SavePayload carries the object body of a save-object request.
type SavePayload struct {
	Object any `json:"object"`
}

// MethodPayload carries the invocation body of a run-class-method
// request; the receiver is addressed by the envelope identifier.
type MethodPayload struct {
	Method string `json:"method"`
	Args   []any  `json:"args,omitempty"`
}

// CallPayload carries the invocation body of a
// run-function-or-constructor request; the target is addressed by a
// dotted path through a registered framework.
type CallPayload struct {
	Path string `json:"path"`
	Args []any  `json:"args,omitempty"`
}

func SaveObject(id uid.UID, obj any) (Envelope, error) {
	raw, err := json.Marshal(SavePayload{Object: obj})
	if err != nil {
		return Envelope{}, &ErrBadPayload{Kind: KindSaveObject, Reason: err.Error()}
	}
	return Envelope{Kind: KindSaveObject, ID: id.Bytes(), Payload: raw}, nil
}

func GetObject(id uid.UID) Envelope {
	return Envelope{Kind: KindGetObject, ID: id.Bytes()}
}

func DeleteObject(id uid.UID) Envelope {
	return Envelope{Kind: KindDeleteObject, ID: id.Bytes()}
}

func RunClassMethod(id uid.UID, method string, args []any) (Envelope, error) {
	raw, err := json.Marshal(MethodPayload{Method: method, Args: args})
	if err != nil {
		return Envelope{}, &ErrBadPayload{Kind: KindRunClassMethod, Reason: err.Error()}
	}
	return Envelope{Kind: KindRunClassMethod, ID: id.Bytes(), Payload: raw}, nil
}

func RunFunctionOrConstructor(path string, args []any) (Envelope, error) {
	raw, err := json.Marshal(CallPayload{Path: path, Args: args})
	if err != nil {
		return Envelope{}, &ErrBadPayload{Kind: KindRunFunction, Reason: err.Error()}
	}
	return Envelope{Kind: KindRunFunction, Payload: raw}, nil
}

// Save decodes the envelope payload as a SavePayload.
func (e Envelope) Save() (SavePayload, error) {
	var p SavePayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return SavePayload{}, &ErrBadPayload{Kind: e.Kind, Reason: err.Error()}
	}
	return p, nil
}

// Method decodes the envelope payload as a MethodPayload.
func (e Envelope) Method() (MethodPayload, error) {
	var p MethodPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return MethodPayload{}, &ErrBadPayload{Kind: e.Kind, Reason: err.Error()}
	}
	if p.Method == "" {
		return MethodPayload{}, &ErrBadPayload{Kind: e.Kind, Reason: "missing method name"}
	}
	return p, nil
}

// Call decodes the envelope payload as a CallPayload.
func (e Envelope) Call() (CallPayload, error) {
	var p CallPayload
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return CallPayload{}, &ErrBadPayload{Kind: e.Kind, Reason: err.Error()}
	}
	if p.Path == "" {
		return CallPayload{}, &ErrBadPayload{Kind: e.Kind, Reason: "missing call path"}
	}
	return p, nil
}

// Encode / Decode are the codec used by the in-tree transport. Other
// transports may substitute their own byte layout; the typed forms
// above are the contract.
func Encode(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

func Decode(b []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, &ErrBadPayload{Reason: err.Error()}
	}
	if e.Kind == "" {
		return Envelope{}, &ErrBadPayload{Reason: "missing kind discriminant"}
	}
	return e, nil
}
