package widget

import (
	"sync/atomic"

	"github.com/provekit/widget/pkg/vdom"
)

// IDSource hands out monotonic 32-bit ids. Ids are never reused
// within a process lifetime.
type IDSource struct {
	n atomic.Uint32
}

// Next returns the next fresh id.
func (s *IDSource) Next() uint32 {
	return s.n.Add(1) - 1
}

// Process-wide id sources for handler and component-instance ids.
var (
	handlerIDs  = &IDSource{}
	instanceIDs = &IDSource{}
)

// SetIDSources replaces the process id sources. It exists so tests
// can make ids deterministic; production code never calls it.
func SetIDSources(handler, instance *IDSource) {
	handlerIDs = handler
	instanceIDs = instance
}

func freshHandlerID() vdom.HandlerID {
	return vdom.HandlerID(handlerIDs.Next())
}

func freshInstanceID() uint32 {
	return instanceIDs.Next()
}
