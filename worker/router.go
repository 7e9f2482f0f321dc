package worker

import "github.com/meshworks/gridnode/message"

type handler func(w *Worker, env message.Envelope) message.Response

// msgRouter is the process-wide routing table. Built once at package
// init and never mutated afterwards; every worker shares it.
var msgRouter = buildRouter()

func buildRouter() map[message.Kind]handler {
	return map[message.Kind]handler{
		message.KindSaveObject:     (*Worker).handleSave,
		message.KindGetObject:      (*Worker).handleGet,
		message.KindDeleteObject:   (*Worker).handleDelete,
		message.KindRunClassMethod: (*Worker).handleRunClassMethod,
		message.KindRunFunction:    (*Worker).handleRunFunction,
	}
}

// dispatch is an O(1) lookup by kind. An absent kind is a protocol
// mismatch and is surfaced, never dropped.
func dispatch(w *Worker, env message.Envelope) message.Response {
	h, ok := msgRouter[env.Kind]
	if !ok {
		return message.Failure(env.Kind, message.CodeUnknownKind, &ErrUnknownKind{Kind: env.Kind})
	}
	return h(w, env)
}
