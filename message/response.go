package message

import (
	"encoding/json"

	"github.com/meshworks/gridnode/pointer"
)

// Status tags a response as a success or a typed failure.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Code classifies a failure so callers can react without parsing the
// human-readable error text.
type Code string

const (
	CodeNone                   Code = ""
	CodeNotFound               Code = "not-found"
	CodeUnknownKind            Code = "unknown-kind"
	CodeUnsupportedIndirection Code = "unsupported-indirection"
	CodeBadMessage             Code = "bad-message"
	CodeUnresolvedPath         Code = "unresolved-path"
	CodeInvalidIdentifier      Code = "invalid-identifier"
	CodeExecutionFailed        Code = "execution-failed"
	CodeInternal               Code = "internal"
)

// Response is the single reply produced for every received envelope:
// success with a payload, success with no payload, or a typed failure.
type Response struct {
	Status Status `json:"status"`
	Kind   Kind   `json:"kind,omitempty"`

	// Value is set for inline results.
	Value any `json:"value,omitempty"`
	// Pointer is set when the result stayed on the node and the caller
	// gets a reference instead.
	Pointer *pointer.Pointer `json:"pointer,omitempty"`

	Code  Code   `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// OK reports whether the response is a success.
func (r Response) OK() bool { return r.Status == StatusOK }

func Ack(kind Kind) Response {
	return Response{Status: StatusOK, Kind: kind}
}

func ValueResponse(kind Kind, v any) Response {
	return Response{Status: StatusOK, Kind: kind, Value: v}
}

func PointerResponse(kind Kind, p pointer.Pointer) Response {
	return Response{Status: StatusOK, Kind: kind, Pointer: &p}
}

func Failure(kind Kind, code Code, err error) Response {
	return Response{Status: StatusError, Kind: kind, Code: code, Error: err.Error()}
}

func EncodeResponse(r Response) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeResponse(b []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(b, &r); err != nil {
		return Response{}, &ErrBadPayload{Reason: err.Error()}
	}
	return r, nil
}
