package vdom

// EventRef is the wire form of a registered event: the absolute route
// of the owning component and the handler id to fire.
type EventRef struct {
	Route   Route     `json:"r" msgpack:"r"`
	Handler HandlerID `json:"h" msgpack:"h"`
}

// ToJSON converts the node to its wire form. Elements become
// {"t","a","e","c","tt"}, text nodes become the raw string, and
// component references delegate to the instance, which renders on
// demand. route is the absolute route of the component whose render
// this node belongs to; element leaves embed it so that every event
// can be dispatched back to its owner.
func (v *VNode) ToJSON(route Route) (any, error) {
	switch v.Kind {
	case KindText:
		return v.Text, nil
	case KindComponent:
		return v.Comp.ToJSON(route.Child(v.Comp.InstanceID()))
	case KindElement:
		entry := map[string]any{
			"t": v.Tag,
			"a": v.Attrs,
		}
		if v.Attrs == nil {
			entry["a"] = map[string]any{}
		}
		events := map[string]EventRef{}
		for name, id := range v.Events {
			events[name] = EventRef{Route: routeJSON(route), Handler: id}
		}
		entry["e"] = events
		children := make([]any, 0, len(v.Children))
		for _, c := range v.Children {
			cj, err := c.ToJSON(route)
			if err != nil {
				return nil, err
			}
			children = append(children, cj)
		}
		entry["c"] = children
		if v.Tooltip != nil {
			tt, err := v.Tooltip.ToJSON(route)
			if err != nil {
				return nil, err
			}
			entry["tt"] = tt
		}
		return entry, nil
	}
	return nil, nil
}

// routeJSON normalizes a route for serialization so that the empty
// route encodes as [] rather than null.
func routeJSON(r Route) Route {
	if r == nil {
		return Route{}
	}
	return r
}
