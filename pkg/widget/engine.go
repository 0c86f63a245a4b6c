package widget

import (
	"errors"
	"log/slog"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
)

// Engine drives one mounted widget tree. It is the entry point for
// the inbound operations of the host transport: events, task
// completions, and mouse-capture transitions, all addressed by
// root-relative routes.
//
// An Engine is not safe for concurrent use; exactly one driver
// goroutine owns it.
type Engine struct {
	root   *ComponentInstance
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger. The default discards nothing
// and writes through slog.Default.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine mounts the top-level component with its props. The tree
// is built lazily: the first ToJSON triggers initialize and render.
func NewEngine(component, props host.Value, opts ...EngineOption) (*Engine, error) {
	root, err := NewRoot(component, props)
	if err != nil {
		return nil, err
	}
	e := &Engine{root: root, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Root returns the root component instance.
func (e *Engine) Root() *ComponentInstance { return e.root }

// ToJSON serializes the rendered tree for the remote view layer,
// rendering first if needed.
func (e *Engine) ToJSON() (any, error) {
	return e.root.ToJSON(nil)
}

// HandleEvent dispatches a user event. The bubbled action, if any, is
// returned to the caller. ErrInvalidHandler surfaces when the route
// or handler id dangles; the transport should drop the message.
func (e *Engine) HandleEvent(route vdom.Route, handlerID vdom.HandlerID, args host.Value) (host.Value, bool, error) {
	return e.root.HandleEvent(route, handlerID, args)
}

// TaskCompleted notifies the instance at route that its task
// finished. Delivery is best effort: a completion for a route with no
// matching instance is logged and swallowed, mirroring a cancelled
// task whose completion was already queued.
func (e *Engine) TaskCompleted(route vdom.Route) error {
	err := e.root.HandleTaskCompleted(route)
	if errors.Is(err, ErrMissingTaskTarget) {
		e.logger.Warn("task completion for missing target", "route", route)
		return nil
	}
	return err
}

// MouseCapture routes a mouse-capture gain to the addressed instance.
func (e *Engine) MouseCapture(route vdom.Route) error {
	return e.root.HandleMouseGainCapture(route)
}

// MouseRelease routes a mouse-capture loss along the route.
func (e *Engine) MouseRelease(route vdom.Route) error {
	return e.root.HandleMouseLoseCapture(route)
}

// Dispose tears down the tree, cancelling outstanding tasks.
func (e *Engine) Dispose() {
	e.root.Dispose()
}
