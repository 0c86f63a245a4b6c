package widget

import (
	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
)

// renderCollector accumulates the component instances and event
// handlers allocated while decomposing one view's html output.
type renderCollector struct {
	components []*ComponentInstance
	handlers   map[vdom.HandlerID]host.Value
}

func (rc *renderCollector) registerEvent(name string, handler host.Value, events map[string]vdom.HandlerID) {
	id := freshHandlerID()
	events[name] = id
	rc.handlers[id] = handler
}

// renderHTML decomposes one declarative html value into a VDOM node.
// Component instances created here are not initialized; that is
// deferred until serialization or reconciliation decides.
func renderHTML(v host.Value, rc *renderCollector, route vdom.Route) (*vdom.VNode, error) {
	switch v.VariantTag() {
	case TagElement:
		return renderElement(v, rc, route)
	case TagOfString:
		s, ok := v.Field(0).AsString()
		if !ok {
			return nil, variantErr("of_string payload", v.Field(0).VariantTag())
		}
		return vdom.NewText(s), nil
	case TagOfComponent:
		child, err := newChild(v.Field(1), v.Field(0), route)
		if err != nil {
			return nil, err
		}
		rc.components = append(rc.components, child)
		return vdom.NewComponent(child), nil
	default:
		return nil, variantErr("html", v.VariantTag())
	}
}

// renderElement decodes an element's tag, attribute list, and child
// list.
func renderElement(v host.Value, rc *renderCollector, route vdom.Route) (*vdom.VNode, error) {
	tag, ok := v.Field(0).AsString()
	if !ok {
		return nil, variantErr("element tag", v.Field(0).VariantTag())
	}
	attrList, err := host.Elements(v.Field(1))
	if err != nil {
		return nil, err
	}

	attrs := map[string]any{}
	events := map[string]vdom.HandlerID{}
	var tooltip *vdom.VNode

	for _, attr := range attrList {
		switch attr.VariantTag() {
		case TagAttrVal:
			key, ok := attr.Field(0).AsString()
			if !ok {
				return nil, variantErr("attribute key", attr.Field(0).VariantTag())
			}
			value, ok := attr.Field(1).AsString()
			if !ok {
				return nil, variantErr("attribute value", attr.Field(1).VariantTag())
			}
			// className contributions merge in declaration order.
			if key == "className" {
				if existing, ok := attrs[key].(string); ok {
					attrs[key] = existing + " " + value
					continue
				}
			}
			attrs[key] = value
		case TagAttrMouseEvent:
			handler := attr.Field(1)
			switch attr.Field(0).VariantTag() {
			case MouseEventClick:
				rc.registerEvent("onClick", handler, events)
			case MouseEventEnter:
				rc.registerEvent("onMouseEnter", handler, events)
			case MouseEventLeave:
				rc.registerEvent("onMouseLeave", handler, events)
			default:
				return nil, variantErr("mouse event kind", attr.Field(0).VariantTag())
			}
		case TagAttrStyle:
			pairs, err := host.Elements(attr.Field(0))
			if err != nil {
				return nil, err
			}
			style, _ := attrs["style"].(map[string]any)
			if style == nil {
				style = map[string]any{}
				attrs["style"] = style
			}
			for _, p := range pairs {
				k, ok := host.First(p).AsString()
				if !ok {
					return nil, variantErr("style key", host.First(p).VariantTag())
				}
				sv, ok := host.Second(p).AsString()
				if !ok {
					return nil, variantErr("style value", host.Second(p).VariantTag())
				}
				style[k] = sv
			}
		case TagAttrTooltip:
			tt, err := renderHTML(attr.Field(0), rc, route)
			if err != nil {
				return nil, err
			}
			tooltip = tt
		case TagAttrTextChange:
			rc.registerEvent("onChange", attr.Field(0), events)
		default:
			return nil, variantErr("attribute", attr.VariantTag())
		}
	}

	children, err := renderHTMLList(v.Field(2), rc, route)
	if err != nil {
		return nil, err
	}
	return vdom.NewElement(tag, attrs, events, children, tooltip), nil
}

// renderHTMLList renders a host list of html values left to right,
// preserving order. A bare html value (a view returning a single
// node) renders as a one-element list.
func renderHTMLList(v host.Value, rc *renderCollector, route vdom.Route) ([]*vdom.VNode, error) {
	switch v.VariantTag() {
	case TagElement, TagOfString, TagOfComponent:
		n, err := renderHTML(v, rc, route)
		if err != nil {
			return nil, err
		}
		return []*vdom.VNode{n}, nil
	}
	items, err := host.Elements(v)
	if err != nil {
		return nil, err
	}
	nodes := make([]*vdom.VNode, 0, len(items))
	for _, item := range items {
		n, err := renderHTML(item, rc, route)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}
