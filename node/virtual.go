/*
	Concrete node types. A node wraps a worker with an actual transport:
	Virtual for in-process callers, WS for websocket callers. The worker
	stays transport-blind either way.
*/

package node

import (
	"github.com/meshworks/gridnode/message"
	"github.com/meshworks/gridnode/worker"
)

// Virtual is the in-process node: no sockets, no encoding unless the
// caller wants the byte path. Used by tests and by embedders that run
// caller and node in one process.
type Virtual struct {
	worker *worker.Worker
}

func NewVirtual(w *worker.Worker) *Virtual {
	return &Virtual{worker: w}
}

func (v *Virtual) Worker() *worker.Worker { return v.worker }

// Recv hands a typed envelope straight to the worker.
func (v *Virtual) Recv(env message.Envelope) message.Response {
	return v.worker.Recv(env)
}

// RecvBytes runs the full byte path: decode, dispatch, encode. This is
// the same contract a networked node honors, minus the socket.
func (v *Virtual) RecvBytes(b []byte) ([]byte, error) {
	env, err := message.Decode(b)
	if err != nil {
		resp := message.Failure("", message.CodeBadMessage, err)
		return message.EncodeResponse(resp)
	}
	return message.EncodeResponse(v.worker.Recv(env))
}
