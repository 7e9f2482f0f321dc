/*
	The worker is a node's dispatch actor: one store of owned objects, a
	set of registered frameworks for remote execution, and the shared
	message router. Concrete node types (websocket, in-process) wrap a
	worker with an actual transport; the worker itself never touches the
	network.

	Dispatch is synchronous: Recv fully completes, store mutation
	included, before the response is returned. Interleaving across
	callers is the transport's concern; the store carries its own lock
	discipline for that case.
*/

package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meshworks/gridnode/framework"
	"github.com/meshworks/gridnode/message"
	"github.com/meshworks/gridnode/pointer"
	"github.com/meshworks/gridnode/store"
	"github.com/meshworks/gridnode/uid"
)

type Worker struct {
	id         string
	logger     *slog.Logger
	store      store.Store
	frameworks *framework.Globals
	stats      *Stats
}

type options struct {
	logger     *slog.Logger
	store      store.Store
	frameworks []framework.Framework
	debug      bool
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStore swaps the default in-memory store for another
// implementation, e.g. store.Disk for a node that must survive
// restarts.
func WithStore(s store.Store) Option {
	return func(o *options) { o.store = s }
}

func WithFrameworks(fws ...framework.Framework) Option {
	return func(o *options) { o.frameworks = append(o.frameworks, fws...) }
}

// WithDebug attaches a statistics collector that observes every
// dispatch without altering its semantics.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

// New constructs a worker and registers its frameworks one at a time.
// A duplicate framework name fails construction; the worker is never
// usable in that case.
func New(id string, opts ...Option) (*Worker, error) {
	if id == "" {
		return nil, fmt.Errorf("worker requires a node id")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.store == nil {
		o.store = store.NewMemory(o.logger)
	}

	globals := framework.NewGlobals()
	for _, fw := range o.frameworks {
		if err := globals.Register(fw); err != nil {
			return nil, err
		}
	}

	w := &Worker{
		id:         id,
		logger:     o.logger.WithGroup("worker").With("node", id),
		store:      o.store,
		frameworks: globals,
	}
	if o.debug {
		w.stats = NewStats()
	}
	return w, nil
}

func (w *Worker) ID() string { return w.id }

// Store exposes the worker's object store to the embedding node.
func (w *Worker) Store() store.Store { return w.store }

// Stats returns the collector, or nil when debug is off.
func (w *Worker) Stats() *Stats { return w.stats }

// Recv is the sole entry point once a worker is constructed. It is pure
// routing plus optional observation; all business logic lives in the
// per-kind handlers.
func (w *Worker) Recv(env message.Envelope) message.Response {
	started := time.Now()
	resp := dispatch(w, env)
	if w.stats != nil {
		w.stats.Observe(env.Kind, resp.OK(), time.Since(started))
	}
	if !resp.OK() {
		w.logger.Debug("dispatch failed", "kind", env.Kind.String(), "code", string(resp.Code), "error", resp.Error)
	}
	return resp
}

// SendMsg and RecvMsg declare the transport obligation a concrete node
// type must satisfy. The base worker has no transport.
func (w *Worker) SendMsg(ctx context.Context, b []byte) error {
	return ErrNotImplementedTransport
}

func (w *Worker) RecvMsg(ctx context.Context) ([]byte, error) {
	return nil, ErrNotImplementedTransport
}

func (w *Worker) String() string {
	if w.stats != nil {
		return fmt.Sprintf("Worker: %s\n%s", w.id, w.stats)
	}
	return fmt.Sprintf("Worker id:%s", w.id)
}

// -------------------------- HANDLERS

func (w *Worker) handleSave(env message.Envelope) message.Response {
	id, err := env.UID()
	if err != nil {
		return message.Failure(env.Kind, message.CodeInvalidIdentifier, err)
	}
	payload, err := env.Save()
	if err != nil {
		return message.Failure(env.Kind, message.CodeBadMessage, err)
	}
	if err := w.store.Save(id, payload.Object); err != nil {
		return message.Failure(env.Kind, message.CodeInternal, err)
	}
	return message.Ack(env.Kind)
}

func (w *Worker) handleGet(env message.Envelope) message.Response {
	id, err := env.UID()
	if err != nil {
		return message.Failure(env.Kind, message.CodeInvalidIdentifier, err)
	}
	obj, err := w.resolveObject(id)
	if err != nil {
		return w.storeFailure(env.Kind, err)
	}
	return message.ValueResponse(env.Kind, obj)
}

func (w *Worker) handleDelete(env message.Envelope) message.Response {
	id, err := env.UID()
	if err != nil {
		return message.Failure(env.Kind, message.CodeInvalidIdentifier, err)
	}
	if err := w.store.Delete(id); err != nil {
		return w.storeFailure(env.Kind, err)
	}
	return message.Ack(env.Kind)
}

func (w *Worker) handleRunClassMethod(env message.Envelope) message.Response {
	id, err := env.UID()
	if err != nil {
		return message.Failure(env.Kind, message.CodeInvalidIdentifier, err)
	}
	payload, err := env.Method()
	if err != nil {
		return message.Failure(env.Kind, message.CodeBadMessage, err)
	}
	obj, err := w.resolveObject(id)
	if err != nil {
		return w.storeFailure(env.Kind, err)
	}
	result, err := invokeMethod(obj, payload.Method, payload.Args)
	if err != nil {
		return message.Failure(env.Kind, message.CodeExecutionFailed,
			&ErrExecution{Target: payload.Method, Err: err})
	}
	return w.resultResponse(env.Kind, result)
}

func (w *Worker) handleRunFunction(env message.Envelope) message.Response {
	payload, err := env.Call()
	if err != nil {
		return message.Failure(env.Kind, message.CodeBadMessage, err)
	}
	call, err := w.frameworks.Resolve(payload.Path)
	if err != nil {
		return message.Failure(env.Kind, message.CodeUnresolvedPath, err)
	}
	result, err := call(payload.Args)
	if err != nil {
		return message.Failure(env.Kind, message.CodeExecutionFailed,
			&ErrExecution{Target: payload.Path, Err: err})
	}
	return w.resultResponse(env.Kind, result)
}

// -------------------------- RESOLUTION

// resolveObject fetches the object under id, following at most one
// local pointer hop. Anything longer, or a hop into another node, is
// unsupported indirection at this layer.
func (w *Worker) resolveObject(id uid.UID) (any, error) {
	obj, err := w.store.Get(id)
	if err != nil {
		return nil, err
	}

	ptr, ok := asPointer(obj)
	if !ok {
		return obj, nil
	}
	if ptr.Location != w.id {
		return nil, &ErrUnsupportedIndirection{ID: id, Location: ptr.Location}
	}

	hop, err := w.store.Get(ptr.ID)
	if err != nil {
		return nil, err
	}
	if _, chained := asPointer(hop); chained {
		return nil, &ErrUnsupportedIndirection{ID: id}
	}
	return hop, nil
}

func asPointer(obj any) (pointer.Pointer, bool) {
	switch p := obj.(type) {
	case pointer.Pointer:
		return p, true
	case *pointer.Pointer:
		if p != nil {
			return *p, true
		}
	case map[string]any:
		// pointers saved through the wire path arrive as their decoded
		// json form and must still trigger the indirection rule
		return pointerFromMap(p)
	}
	return pointer.Pointer{}, false
}

// pointerFromMap re-hydrates a pointer from its json-decoded shape. A
// map only qualifies when it carries nothing beyond the pointer fields
// and its id parses as an identifier; anything else is a plain object.
func pointerFromMap(m map[string]any) (pointer.Pointer, bool) {
	for k := range m {
		switch k {
		case "id", "location", "type_hint":
		default:
			return pointer.Pointer{}, false
		}
	}
	idStr, ok := m["id"].(string)
	if !ok {
		return pointer.Pointer{}, false
	}
	loc, ok := m["location"].(string)
	if !ok || loc == "" {
		return pointer.Pointer{}, false
	}
	var id uid.UID
	if err := id.UnmarshalText([]byte(idStr)); err != nil {
		return pointer.Pointer{}, false
	}
	p := pointer.To(id, loc, "")
	if hint, ok := m["type_hint"].(string); ok {
		p.TypeHint = hint
	}
	return p, true
}

// resultResponse turns an invocation result into exactly one response:
// nothing to return is an ack, scalars travel inline, anything larger
// stays on the node behind a fresh pointer.
func (w *Worker) resultResponse(kind message.Kind, result any) message.Response {
	if result == nil {
		return message.Ack(kind)
	}
	switch result.(type) {
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return message.ValueResponse(kind, result)
	}

	id := uid.New()
	if err := w.store.Save(id, result); err != nil {
		return message.Failure(kind, message.CodeInternal, err)
	}
	return message.PointerResponse(kind, pointer.To(id, w.id, fmt.Sprintf("%T", result)))
}

func (w *Worker) storeFailure(kind message.Kind, err error) message.Response {
	switch err.(type) {
	case *store.ErrNotFound:
		return message.Failure(kind, message.CodeNotFound, err)
	case *ErrUnsupportedIndirection:
		return message.Failure(kind, message.CodeUnsupportedIndirection, err)
	default:
		return message.Failure(kind, message.CodeInternal, err)
	}
}
