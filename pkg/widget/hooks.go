package widget

import (
	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
)

// Hook is one transformer in a component's render pipeline. Hooks are
// ordered outermost to innermost; props flow down through Props and
// actions bubble up through Action.
type Hook interface {
	// Initialize records the props as seen at this hook's position
	// and computes any initial state.
	Initialize(props host.Value) error

	// Reconcile matches this fresh hook against the prior render's
	// hook at the same position and reports whether the component
	// still needs to re-render. Hooks of disagreeing kinds fall back
	// to true.
	Reconcile(props host.Value, prior Hook) (bool, error)

	// Props transforms the props flowing to the next hook inward.
	Props(props host.Value) (host.Value, error)

	// Action transforms a bubbling action. ok=false drops the action
	// and halts propagation.
	Action(action host.Value) (host.Value, bool, error)
}

// baseHook supplies the defaults for undeclared capabilities:
// initialize stores nothing, reconcile re-renders, props pass through
// unchanged, actions bubble unchanged.
type baseHook struct{}

func (baseHook) Initialize(props host.Value) error { return nil }

func (baseHook) Reconcile(props host.Value, prior Hook) (bool, error) {
	return true, nil
}

func (baseHook) Props(props host.Value) (host.Value, error) {
	return props, nil
}

func (baseHook) Action(action host.Value) (host.Value, bool, error) {
	return action, true, nil
}

// routeAware hooks are told their owning instance's absolute route
// before initialize runs. Only with_task needs this, to address its
// completion back at the instance.
type routeAware interface {
	setRoute(r vdom.Route)
}

// disposable hooks hold external resources released on instance
// destruction or when a prior hook is not adopted during reconcile.
type disposable interface {
	dispose()
}

func disposeHook(h Hook) {
	if d, ok := h.(disposable); ok {
		d.dispose()
	}
}

// filterMapActionHook maps or drops actions bubbling through it.
type filterMapActionHook struct {
	baseHook
	mapFn host.Value
	props host.Value
}

func (h *filterMapActionHook) Initialize(props host.Value) error {
	h.props = props
	return nil
}

func (h *filterMapActionHook) Reconcile(props host.Value, prior Hook) (bool, error) {
	h.props = props
	return true, nil
}

func (h *filterMapActionHook) Action(action host.Value) (host.Value, bool, error) {
	r, err := host.Call("filter_map_action", h.mapFn, h.props, action)
	if err != nil {
		return nil, false, err
	}
	v, ok, err := host.AsOption(r)
	if err != nil {
		return nil, false, err
	}
	return v, ok, nil
}

// mapPropsHook rewrites the props flowing inward.
type mapPropsHook struct {
	baseHook
	mapFn host.Value
}

func (h *mapPropsHook) Props(props host.Value) (host.Value, error) {
	return host.Call("map_props", h.mapFn, props)
}

// shouldUpdateHook short-circuits re-rendering when its predicate,
// called with the prior and new props, returns false.
type shouldUpdateHook struct {
	baseHook
	pred  host.Value
	props host.Value
}

func (h *shouldUpdateHook) Initialize(props host.Value) error {
	h.props = props
	return nil
}

func (h *shouldUpdateHook) Reconcile(props host.Value, prior Hook) (bool, error) {
	prev, ok := prior.(*shouldUpdateHook)
	if !ok || prev.props == nil {
		return true, nil
	}
	h.props = props
	r, err := host.Call("with_should_update", h.pred, prev.props, props)
	if err != nil {
		return false, err
	}
	b, ok := r.AsBool()
	if !ok {
		return false, variantErr("should_update predicate result", r.VariantTag())
	}
	return b, nil
}

// statefulHook carries local component state between renders.
type statefulHook struct {
	baseHook
	init   host.Value
	update host.Value
	props  host.Value
	state  host.Value // nil until initialized
}

func (h *statefulHook) Initialize(props host.Value) error {
	prior := host.None()
	if h.state != nil {
		prior = host.Some(h.state)
	}
	s, err := host.Call("with_state init", h.init, props, prior)
	if err != nil {
		return err
	}
	h.state = s
	h.props = props
	return nil
}

func (h *statefulHook) Reconcile(props host.Value, prior Hook) (bool, error) {
	// Adopt the prior state, then initialize exactly once so the
	// init closure sees it as some(prior).
	if prev, ok := prior.(*statefulHook); ok {
		h.state = prev.state
	}
	if err := h.Initialize(props); err != nil {
		return false, err
	}
	return true, nil
}

func (h *statefulHook) Props(props host.Value) (host.Value, error) {
	if h.state == nil {
		if err := h.Initialize(props); err != nil {
			return nil, err
		}
	}
	return host.Pair(h.state, props), nil
}

func (h *statefulHook) Action(action host.Value) (host.Value, bool, error) {
	r, err := host.Call("with_state update", h.update, h.props, h.state, action)
	if err != nil {
		return nil, false, err
	}
	h.state = host.First(r)
	out, ok, err := host.AsOption(host.Second(r))
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

// taskHook starts an asynchronous task on first initialize and feeds
// its result into the view once the task completes.
type taskHook struct {
	baseHook
	builder host.Value
	task    Task
	route   vdom.Route
}

func (h *taskHook) setRoute(r vdom.Route) {
	h.route = r
}

func (h *taskHook) Initialize(props host.Value) error {
	if h.task != nil {
		return nil
	}
	q, err := taskQueue()
	if err != nil {
		return err
	}
	spec, err := host.Call("with_task builder", h.builder, props)
	if err != nil {
		return err
	}
	h.task = q.Submit(spec)
	q.NotifyOnCompletion(h.task, h.route)
	return nil
}

func (h *taskHook) Reconcile(props host.Value, prior Hook) (bool, error) {
	// The props are assumed to have changed, so the task is rebuilt
	// from scratch. The prior hook's task is disposed when the prior
	// instance is.
	if err := h.Initialize(props); err != nil {
		return false, err
	}
	return true, nil
}

func (h *taskHook) Props(props host.Value) (host.Value, error) {
	q, err := taskQueue()
	if err != nil {
		return nil, err
	}
	result := host.None()
	if h.task != nil {
		if v, done := q.Peek(h.task); done {
			result = host.Some(v)
		}
	}
	return host.Pair(result, props), nil
}

func (h *taskHook) dispose() {
	if h.task == nil {
		return
	}
	if q, err := taskQueue(); err == nil {
		q.FailAndDispose(h.task)
	}
	h.task = nil
}

// mouseCaptureHook exposes the mouse-capture state to the view. The
// state is mutated only by external lifecycle events, never during
// reconcile.
type mouseCaptureHook struct {
	baseHook
	state CaptureState
}

func (h *mouseCaptureHook) Props(props host.Value) (host.Value, error) {
	return host.Pair(host.Natural(uint64(h.state)), props), nil
}

// setState returns whether the state actually changed.
func (h *mouseCaptureHook) setState(s CaptureState) bool {
	if h.state == s {
		return false
	}
	h.state = s
	return true
}
