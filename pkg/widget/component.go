package widget

import (
	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
)

// ComponentInstance is a mounted component: the peeled hook chain of
// its description, the pure view closure, and the state accumulated
// across renders. Instances exclusively own their hook chain, render
// tree, handler table, and child instances.
type ComponentInstance struct {
	id            uint32
	route         vdom.Route // absolute route addressing this instance; empty for the root
	componentHash uint64
	props         host.Value
	innerProps    host.Value // props after the hook chain; set on initialize
	hooks         []Hook
	view          host.Value
	render        []*vdom.VNode
	children      []*ComponentInstance
	handlers      map[vdom.HandlerID]host.Value

	hasRendered    bool
	reconcileCount uint32
	disposed       bool
}

var _ vdom.Component = (*ComponentInstance)(nil)

// NewRoot mounts a component description as a dispatch root. The root
// is addressed by the empty route. Hooks do not run until the first
// serialization or reconcile.
func NewRoot(component, props host.Value) (*ComponentInstance, error) {
	return newInstance(component, props)
}

// newChild mounts a component created during a parent's render.
// parentRoute is the parent's absolute route; the child's own id is
// appended to it.
func newChild(component, props host.Value, parentRoute vdom.Route) (*ComponentInstance, error) {
	c, err := newInstance(component, props)
	if err != nil {
		return nil, err
	}
	c.route = parentRoute.Child(c.id)
	return c, nil
}

// newInstance peels the description's variant chain from outermost to
// innermost, one hook per layer, terminating at the pure view leaf.
// Hooks are not invoked yet.
func newInstance(component, props host.Value) (*ComponentInstance, error) {
	inst := &ComponentInstance{
		id:            freshInstanceID(),
		componentHash: component.Hash(),
		props:         props,
		handlers:      map[vdom.HandlerID]host.Value{},
	}
	c := component
	for c.VariantTag() != TagPure {
		switch c.VariantTag() {
		case TagFilterMapAction:
			inst.hooks = append(inst.hooks, &filterMapActionHook{mapFn: c.Field(0)})
			c = c.Field(1)
		case TagMapProps:
			inst.hooks = append(inst.hooks, &mapPropsHook{mapFn: c.Field(0)})
			c = c.Field(1)
		case TagWithShouldUpdate:
			inst.hooks = append(inst.hooks, &shouldUpdateHook{pred: c.Field(0)})
			c = c.Field(1)
		case TagWithState:
			inst.hooks = append(inst.hooks, &statefulHook{init: c.Field(0), update: c.Field(1)})
			c = c.Field(2)
		case TagWithTask:
			inst.hooks = append(inst.hooks, &taskHook{builder: c.Field(0)})
			c = c.Field(1)
		case TagWithMouseCapture:
			inst.hooks = append(inst.hooks, &mouseCaptureHook{})
			c = c.Field(0)
		default:
			return nil, variantErr("component", c.VariantTag())
		}
	}
	if c.NumFields() < 1 {
		return nil, variantErr("component pure leaf", c.VariantTag())
	}
	inst.view = c.Field(0)
	return inst, nil
}

// InstanceID implements vdom.Component.
func (ci *ComponentInstance) InstanceID() uint32 { return ci.id }

// ReconcileCount returns how many times this instance was adopted
// unchanged across reconciles.
func (ci *ComponentInstance) ReconcileCount() uint32 { return ci.reconcileCount }

// Route returns the instance's absolute route.
func (ci *ComponentInstance) Route() vdom.Route { return ci.route }

// Initialize runs every hook's initialize and flows the outer props
// through the chain into innerProps.
func (ci *ComponentInstance) Initialize() error {
	p := ci.props
	for _, h := range ci.hooks {
		if ra, ok := h.(routeAware); ok {
			ra.setRoute(ci.route)
		}
		if err := h.Initialize(p); err != nil {
			return err
		}
		next, err := h.Props(p)
		if err != nil {
			return err
		}
		p = next
	}
	ci.innerProps = p
	return nil
}

// Render invokes the view with the inner props, decomposes the
// resulting html into VDOM, reconciles it against the previous
// rendering, and installs the new tree. On failure the previous
// render, children, and handlers are left in place so the prior view
// remains addressable.
func (ci *ComponentInstance) Render() error {
	out, err := host.Call("view", ci.view, ci.innerProps)
	if err != nil {
		return err
	}
	rc := &renderCollector{handlers: map[vdom.HandlerID]host.Value{}}
	elements, err := renderHTMLList(out, rc, ci.route)
	if err != nil {
		return err
	}
	if err := vdom.ReconcileChildren(elements, ci.render); err != nil {
		return err
	}
	ci.handlers = rc.handlers
	ci.children = rc.components
	ci.render = elements
	ci.hasRendered = true
	return nil
}

// Reconcile matches this fresh instance against the prior rendering's
// component at the same position.
//
// The component hash is a conservative identity: distinct closures
// that do the same thing hash differently and reset state, while
// unhashable host values collapse to a shared sentinel and compare
// equal.
func (ci *ComponentInstance) Reconcile(prior vdom.Component) error {
	old, ok := prior.(*ComponentInstance)
	if !ok || old.componentHash != ci.componentHash {
		// A completely different component: render fresh, discard the
		// old subtree.
		if prior != nil {
			prior.Dispose()
		}
		if err := ci.Initialize(); err != nil {
			return err
		}
		return ci.Render()
	}

	p := ci.props
	shouldUpdate := !host.Equal(ci.props, old.props)
	adopted := make([]bool, len(ci.hooks))
	for i, h := range ci.hooks {
		if shouldUpdate {
			if ra, ok := h.(routeAware); ok {
				ra.setRoute(ci.route)
			}
			again, err := h.Reconcile(p, old.hooks[i])
			if err != nil {
				return err
			}
			shouldUpdate = shouldUpdate && again
		}
		if !shouldUpdate {
			ci.hooks[i] = old.hooks[i]
			adopted[i] = true
		} else {
			next, err := h.Props(p)
			if err != nil {
				return err
			}
			p = next
		}
	}

	if !shouldUpdate {
		// Equal props and unchanged state: keep the old rendering and
		// adopt the old identity wholesale.
		ci.innerProps = old.innerProps
		ci.children = old.children
		ci.render = old.render
		ci.handlers = old.handlers
		ci.id = old.id
		ci.route = old.route
		ci.hasRendered = true
		ci.reconcileCount = old.reconcileCount + 1
		old.releaseHooks(adopted)
		return nil
	}

	// The props changed: re-render, reconciling the new children
	// against the old rendering so descendant identity survives.
	ci.render = old.render
	ci.innerProps = p
	old.releaseHooks(adopted)
	if err := ci.Render(); err != nil {
		// The failed render left ci without a usable tree; the parent
		// keeps its own prior rendering.
		ci.render = nil
		return err
	}
	return nil
}

// releaseHooks disposes the prior instance's hooks that were not
// adopted during reconcile, cancelling their outstanding tasks, and
// marks the instance as spent so hooks, children, and render now
// owned by the adopting instance are not torn down twice.
func (ci *ComponentInstance) releaseHooks(adopted []bool) {
	for i, h := range ci.hooks {
		if i < len(adopted) && adopted[i] {
			continue
		}
		disposeHook(h)
	}
	ci.hooks = nil
	ci.handlers = nil
	ci.render = nil
	ci.children = nil
	ci.disposed = true
}

// ToJSON implements vdom.Component. A never-rendered instance
// initializes and renders first. route is this instance's absolute
// route; children embed it extended by their own id so that element
// leaves carry the absolute route of every registered event.
func (ci *ComponentInstance) ToJSON(route vdom.Route) (any, error) {
	if !ci.hasRendered {
		if err := ci.Initialize(); err != nil {
			return nil, err
		}
		if err := ci.Render(); err != nil {
			return nil, err
		}
	}
	children := make([]any, 0, len(ci.render))
	for _, n := range ci.render {
		cj, err := n.ToJSON(route)
		if err != nil {
			return nil, err
		}
		children = append(children, cj)
	}
	result := map[string]any{
		"id": ci.id,
		"c":  children,
	}
	for _, h := range ci.hooks {
		if _, ok := h.(*mouseCaptureHook); ok {
			result["mouse_capture"] = map[string]any{"r": routeJSON(route)}
			break
		}
	}
	return result, nil
}

func routeJSON(r vdom.Route) vdom.Route {
	if r == nil {
		return vdom.Route{}
	}
	return r
}

// HandleAction folds an action from the innermost hook outward. The
// first hook that drops the action halts propagation; the final value
// is the parent's bubbled action.
func (ci *ComponentInstance) HandleAction(action host.Value) (host.Value, bool, error) {
	result := action
	for i := len(ci.hooks) - 1; i >= 0; i-- {
		var ok bool
		var err error
		result, ok, err = ci.hooks[i].Action(result)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, nil
		}
	}
	return result, true, nil
}

// HandleEvent dispatches a user event down the route, invokes the
// addressed handler, and bubbles the resulting action back up through
// each ancestor's hook chain. Every instance whose action pipeline
// ran re-renders before HandleEvent returns, so hook state mutated by
// the action is visible to the next serialization. A route or handler
// id that no longer resolves fails with ErrInvalidHandler.
func (ci *ComponentInstance) HandleEvent(route vdom.Route, handlerID vdom.HandlerID, args host.Value) (host.Value, bool, error) {
	if len(route) == 0 {
		handler, ok := ci.handlers[handlerID]
		if !ok {
			return nil, false, routeErr(route, ErrInvalidHandler)
		}
		action, err := host.Call("event handler", handler, args)
		if err != nil {
			return nil, false, err
		}
		return ci.afterAction(ci.HandleAction(action))
	}
	for _, c := range ci.children {
		if c.id == route[0] {
			a, ok, err := c.HandleEvent(route[1:], handlerID, args)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
			return ci.afterAction(ci.HandleAction(a))
		}
	}
	// The addressed component no longer exists: the event was emitted
	// against an old rendering.
	return nil, false, routeErr(route, ErrInvalidHandler)
}

// afterAction re-renders the instance once its hooks processed an
// action, then passes the bubbled result through.
func (ci *ComponentInstance) afterAction(action host.Value, ok bool, err error) (host.Value, bool, error) {
	if err != nil {
		return nil, false, err
	}
	if rerr := ci.refresh(); rerr != nil {
		return nil, false, rerr
	}
	return action, ok, nil
}

// refresh recomputes the inner props by flowing the outer props
// through the hook chain, without re-initializing, and re-renders.
// Stateful hooks expose their current state through Props.
func (ci *ComponentInstance) refresh() error {
	p := ci.props
	for _, h := range ci.hooks {
		next, err := h.Props(p)
		if err != nil {
			return err
		}
		p = next
	}
	prev := ci.innerProps
	ci.innerProps = p
	if err := ci.Render(); err != nil {
		ci.innerProps = prev
		return err
	}
	return nil
}

// HandleTaskCompleted re-initializes and re-renders the instance at
// the end of the route so its with_task hooks observe the completed
// task through Props.
func (ci *ComponentInstance) HandleTaskCompleted(route vdom.Route) error {
	if len(route) == 0 {
		if err := ci.Initialize(); err != nil {
			return err
		}
		return ci.Render()
	}
	for _, c := range ci.children {
		if c.id == route[0] {
			return c.HandleTaskCompleted(route[1:])
		}
	}
	return routeErr(route, ErrMissingTaskTarget)
}

// updateCaptureState flips every mouse-capture hook to s and, when
// anything changed, re-initializes and re-renders so the new state
// flows through Props into the view.
func (ci *ComponentInstance) updateCaptureState(s CaptureState) error {
	changed := false
	for _, h := range ci.hooks {
		if mh, ok := h.(*mouseCaptureHook); ok {
			if mh.setState(s) {
				changed = true
			}
		}
	}
	if !changed {
		return nil
	}
	if err := ci.Initialize(); err != nil {
		return err
	}
	return ci.Render()
}

// HandleMouseGainCapture marks the instance at the end of the route
// as holding the mouse and every instance along the route as
// containing it.
func (ci *ComponentInstance) HandleMouseGainCapture(route vdom.Route) error {
	if len(route) == 0 {
		return ci.updateCaptureState(CaptureInsideImmediate)
	}
	if err := ci.updateCaptureState(CaptureInsideChild); err != nil {
		return err
	}
	for _, c := range ci.children {
		if c.id == route[0] {
			return c.HandleMouseGainCapture(route[1:])
		}
	}
	return nil
}

// HandleMouseLoseCapture returns every instance along the route to
// the outside state.
func (ci *ComponentInstance) HandleMouseLoseCapture(route vdom.Route) error {
	if err := ci.updateCaptureState(CaptureOutside); err != nil {
		return err
	}
	if len(route) == 0 {
		return nil
	}
	for _, c := range ci.children {
		if c.id == route[0] {
			return c.HandleMouseLoseCapture(route[1:])
		}
	}
	return nil
}

// Dispose implements vdom.Component. It releases the hook chain,
// cancelling outstanding tasks, and recursively disposes child
// instances.
func (ci *ComponentInstance) Dispose() {
	if ci == nil || ci.disposed {
		return
	}
	ci.disposed = true
	for _, h := range ci.hooks {
		disposeHook(h)
	}
	for _, c := range ci.children {
		c.Dispose()
	}
	ci.hooks = nil
	ci.children = nil
	ci.render = nil
	ci.handlers = nil
}
