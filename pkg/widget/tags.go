package widget

// Variant tags of the host-level widget description language. The
// numbering is shared with the host runtime and is part of the value
// bridge contract.

// Component constructors, outermost hook to the pure view leaf.
const (
	TagPure uint32 = iota
	TagFilterMapAction
	TagMapProps
	TagWithShouldUpdate
	TagWithState
	TagWithTask
	TagWithMouseCapture
)

// Html constructors.
const (
	TagElement uint32 = iota + 7
	TagOfString
	TagOfComponent
)

// Attribute constructors.
const (
	TagAttrVal uint32 = iota + 10
	TagAttrMouseEvent
	TagAttrStyle
	TagAttrTooltip
	TagAttrTextChange
)

// Mouse event kinds, as carried by the mouse_event attribute.
const (
	MouseEventClick uint32 = iota
	MouseEventEnter
	MouseEventLeave
)

// CaptureState is the mouse-capture state exposed to with_mouse_capture
// views.
type CaptureState uint32

const (
	CaptureOutside CaptureState = iota
	CaptureInsideImmediate
	CaptureInsideChild
)

// String returns the string representation of the CaptureState.
func (s CaptureState) String() string {
	switch s {
	case CaptureOutside:
		return "outside"
	case CaptureInsideImmediate:
		return "inside_immediate"
	case CaptureInsideChild:
		return "inside_child"
	default:
		return "unknown"
	}
}
