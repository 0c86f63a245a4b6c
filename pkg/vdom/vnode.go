package vdom

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindComponent             // Nested component instance
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// HandlerID names an installed event closure. IDs are process-unique
// and never reused within a process lifetime.
type HandlerID uint32

// Route is a sequence of component-instance ids addressing a node in
// the live tree, ordered root-first and relative to the dispatching
// root: the root itself is the empty route.
type Route []uint32

// Child extends a route by one instance id, without aliasing the
// receiver's backing array.
func (r Route) Child(id uint32) Route {
	out := make(Route, len(r)+1)
	copy(out, r)
	out[len(r)] = id
	return out
}

// Component is a mounted component instance referenced from a VNode.
// pkg/widget provides the implementation.
type Component interface {
	// InstanceID is the process-unique instance id.
	InstanceID() uint32

	// Reconcile matches this (fresh) instance against a prior one,
	// adopting identity and state where compatible.
	Reconcile(prior Component) error

	// ToJSON serializes the instance, rendering it first if needed.
	// route addresses this instance from the dispatching root.
	ToJSON(route Route) (any, error)

	// Dispose releases the instance and its subtree. Outstanding
	// tasks are cancelled.
	Dispose()
}

// VNode is a virtual DOM node.
type VNode struct {
	Kind     Kind
	Tag      string               // Element tag name (e.g. "div")
	Attrs    map[string]any       // Attribute key/values; "style" holds a sub-object
	Events   map[string]HandlerID // Event name to handler id
	Children []*VNode
	Tooltip  *VNode    // Optional tooltip subtree
	Text     string    // For KindText
	Comp     Component // For KindComponent
}

// NewElement builds an element node.
func NewElement(tag string, attrs map[string]any, events map[string]HandlerID, children []*VNode, tooltip *VNode) *VNode {
	return &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    attrs,
		Events:   events,
		Children: children,
		Tooltip:  tooltip,
	}
}

// NewText builds a text node.
func NewText(s string) *VNode {
	return &VNode{Kind: KindText, Text: s}
}

// NewComponent builds a node referencing a mounted component.
func NewComponent(c Component) *VNode {
	return &VNode{Kind: KindComponent, Comp: c}
}

// Key returns the node's reconciliation key, if it carries one. Only
// elements have keys; the "key" pseudo-attribute is a stable identity
// hint and is still serialized like any other attribute.
func (v *VNode) Key() (string, bool) {
	if v == nil || v.Kind != KindElement || v.Attrs == nil {
		return "", false
	}
	if k, ok := v.Attrs["key"].(string); ok {
		return k, true
	}
	return "", false
}

// Dispose releases every component instance in the subtree.
func (v *VNode) Dispose() {
	if v == nil {
		return
	}
	if v.Kind == KindComponent {
		if v.Comp != nil {
			v.Comp.Dispose()
		}
		return
	}
	for _, c := range v.Children {
		c.Dispose()
	}
	v.Tooltip.Dispose()
}
