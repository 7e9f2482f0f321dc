package client

import (
	"errors"
	"fmt"

	"github.com/meshworks/gridnode/message"
)

var (
	ErrNotFound               = errors.New("object not found")
	ErrUnknownKind            = errors.New("node does not understand the message kind")
	ErrUnsupportedIndirection = errors.New("target is a multi-hop pointer chain")
	ErrUnresolvedPath         = errors.New("call path does not resolve on the node")
	ErrInvalidIdentifier      = errors.New("invalid identifier")
	ErrBadMessage             = errors.New("node rejected the message as malformed")
	ErrExecutionFailed        = errors.New("remote execution failed")
	ErrRemote                 = errors.New("remote failure")
)

func translateResponse(resp message.Response) error {
	if resp.OK() {
		return nil
	}

	var sentinel error
	switch resp.Code {
	case message.CodeNotFound:
		sentinel = ErrNotFound
	case message.CodeUnknownKind:
		sentinel = ErrUnknownKind
	case message.CodeUnsupportedIndirection:
		sentinel = ErrUnsupportedIndirection
	case message.CodeUnresolvedPath:
		sentinel = ErrUnresolvedPath
	case message.CodeInvalidIdentifier:
		sentinel = ErrInvalidIdentifier
	case message.CodeBadMessage:
		sentinel = ErrBadMessage
	case message.CodeExecutionFailed:
		sentinel = ErrExecutionFailed
	default:
		sentinel = ErrRemote
	}

	if resp.Error != "" {
		return fmt.Errorf("%w: %s", sentinel, resp.Error)
	}
	return sentinel
}
