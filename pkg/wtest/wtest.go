// Package wtest provides builders for widget tests: deterministic id
// sources, host-value constructors for the declarative description
// language, and a hand-cranked task queue.
package wtest

import (
	"sync"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
	"github.com/provekit/widget/pkg/widget"
)

// ResetIDs installs fresh id sources so handler and instance ids in a
// test start from zero.
func ResetIDs() {
	widget.SetIDSources(&widget.IDSource{}, &widget.IDSource{})
}

// Declarative html constructors.

// El builds an element html value.
func El(tag string, attrs []host.Value, children ...host.Value) host.Value {
	return host.NewTagged(widget.TagElement, host.String(tag), host.List(attrs...), host.List(children...))
}

// Text builds an of_string html value.
func Text(s string) host.Value {
	return host.NewTagged(widget.TagOfString, host.String(s))
}

// Comp builds an of_component html value.
func Comp(props, component host.Value) host.Value {
	return host.NewTagged(widget.TagOfComponent, props, component)
}

// Attribute constructors.

// Val builds a key/value attribute.
func Val(key, value string) host.Value {
	return host.NewTagged(widget.TagAttrVal, host.String(key), host.String(value))
}

// Key builds the key pseudo-attribute used by keyed reconciliation.
func Key(k string) host.Value {
	return Val("key", k)
}

// OnClick builds an onClick mouse event attribute.
func OnClick(handler host.Value) host.Value {
	return mouseEvent(widget.MouseEventClick, handler)
}

// OnMouseEnter builds an onMouseEnter mouse event attribute.
func OnMouseEnter(handler host.Value) host.Value {
	return mouseEvent(widget.MouseEventEnter, handler)
}

// OnMouseLeave builds an onMouseLeave mouse event attribute.
func OnMouseLeave(handler host.Value) host.Value {
	return mouseEvent(widget.MouseEventLeave, handler)
}

func mouseEvent(kind uint32, handler host.Value) host.Value {
	return host.NewTagged(widget.TagAttrMouseEvent, host.NewTagged(kind), handler)
}

// Style builds a style attribute from alternating key/value pairs.
func Style(pairs ...string) host.Value {
	vs := make([]host.Value, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		vs = append(vs, host.Pair(host.String(pairs[i]), host.String(pairs[i+1])))
	}
	return host.NewTagged(widget.TagAttrStyle, host.List(vs...))
}

// Tooltip builds a tooltip attribute.
func Tooltip(content host.Value) host.Value {
	return host.NewTagged(widget.TagAttrTooltip, content)
}

// TextChange builds an onChange attribute.
func TextChange(handler host.Value) host.Value {
	return host.NewTagged(widget.TagAttrTextChange, handler)
}

// Component constructors.

// Pure builds a pure component from a view closure.
func Pure(view host.Value) host.Value {
	return host.NewTagged(widget.TagPure, view)
}

// FilterMapAction wraps a component with an action filter.
func FilterMapAction(mapFn, inner host.Value) host.Value {
	return host.NewTagged(widget.TagFilterMapAction, mapFn, inner)
}

// MapProps wraps a component with a props transformer.
func MapProps(mapFn, inner host.Value) host.Value {
	return host.NewTagged(widget.TagMapProps, mapFn, inner)
}

// WithShouldUpdate wraps a component with a re-render predicate.
func WithShouldUpdate(pred, inner host.Value) host.Value {
	return host.NewTagged(widget.TagWithShouldUpdate, pred, inner)
}

// WithState wraps a component with local state.
func WithState(init, update, inner host.Value) host.Value {
	return host.NewTagged(widget.TagWithState, init, update, inner)
}

// WithTask wraps a component with an asynchronous task.
func WithTask(builder, inner host.Value) host.Value {
	return host.NewTagged(widget.TagWithTask, builder, inner)
}

// WithMouseCapture wraps a component with mouse-capture tracking.
func WithMouseCapture(inner host.Value) host.Value {
	return host.NewTagged(widget.TagWithMouseCapture, inner)
}

// ManualQueue is a widget.TaskQueue cranked by hand: tasks run only
// when the test calls Complete. It records disposals so tests can
// assert cancellation.
type ManualQueue struct {
	mu        sync.Mutex
	notify    func(route vdom.Route)
	tasks     []*ManualTask
	completed []vdom.Route
}

// ManualTask is one submitted task.
type ManualTask struct {
	Spec     host.Value
	Disposed bool

	done   bool
	result host.Value
	routes []vdom.Route
}

// NewManualQueue builds a queue. notify may be nil; completion routes
// are then recorded on the queue instead.
func NewManualQueue(notify func(route vdom.Route)) *ManualQueue {
	return &ManualQueue{notify: notify}
}

// Install installs the queue as the process task queue, resetting any
// previous one. The caller should defer Uninstall.
func (q *ManualQueue) Install() {
	widget.ResetTaskQueue()
	if err := widget.SetTaskQueue(q); err != nil {
		panic(err)
	}
}

// Uninstall removes the queue.
func (q *ManualQueue) Uninstall() {
	widget.ResetTaskQueue()
}

// Submit implements widget.TaskQueue.
func (q *ManualQueue) Submit(spec host.Value) widget.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	t := &ManualTask{Spec: spec}
	q.tasks = append(q.tasks, t)
	return t
}

// Peek implements widget.TaskQueue.
func (q *ManualQueue) Peek(t widget.Task) (host.Value, bool) {
	mt := t.(*ManualTask)
	q.mu.Lock()
	defer q.mu.Unlock()
	if !mt.done || mt.Disposed {
		return nil, false
	}
	return mt.result, true
}

// FailAndDispose implements widget.TaskQueue.
func (q *ManualQueue) FailAndDispose(t widget.Task) {
	mt := t.(*ManualTask)
	q.mu.Lock()
	defer q.mu.Unlock()
	mt.Disposed = true
}

// NotifyOnCompletion implements widget.TaskQueue.
func (q *ManualQueue) NotifyOnCompletion(t widget.Task, route vdom.Route) {
	mt := t.(*ManualTask)
	q.mu.Lock()
	defer q.mu.Unlock()
	mt.routes = append(mt.routes, route)
}

// Tasks returns every submitted task in submission order.
func (q *ManualQueue) Tasks() []*ManualTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*ManualTask(nil), q.tasks...)
}

// Complete runs the task's spec and fires its completion routes.
func (q *ManualQueue) Complete(t *ManualTask) []vdom.Route {
	result, err := t.Spec.Invoke()
	q.mu.Lock()
	t.done = true
	if err == nil {
		t.result = result
	}
	routes := append([]vdom.Route(nil), t.routes...)
	notify := q.notify
	q.completed = append(q.completed, routes...)
	q.mu.Unlock()
	if notify != nil && !t.Disposed {
		for _, r := range routes {
			notify(r)
		}
	}
	return routes
}
