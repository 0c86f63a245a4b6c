package widget

import (
	"errors"
	"fmt"

	"github.com/provekit/widget/pkg/vdom"
)

// Sentinel errors for engine dispatch and lifecycle conditions.
var (
	// ErrInvalidHandler is returned when an event arrives for a route
	// or handler id no longer present, typically because the tree
	// re-rendered between emit and receive. Transports should drop
	// the message.
	ErrInvalidHandler = errors.New("widget: invalid handler")

	// ErrMissingTaskTarget is returned when a task completion resolves
	// a route with no matching instance. Callers log and swallow it.
	ErrMissingTaskTarget = errors.New("widget: task completion for missing target")

	// ErrTaskQueueSet is returned when the process task queue is
	// installed twice.
	ErrTaskQueueSet = errors.New("widget: task queue already set")

	// ErrTaskQueueNotSet is returned when a with_task hook initializes
	// before a task queue is installed.
	ErrTaskQueueNotSet = errors.New("widget: task queue not set")

	// ErrVariantUnreachable is returned for a malformed host value
	// outside the documented variant set. It indicates a programming
	// error in the host.
	ErrVariantUnreachable = errors.New("widget: unreachable variant")
)

// RouteError wraps a dispatch failure with the route that failed to
// resolve.
type RouteError struct {
	Route vdom.Route
	Err   error
}

// Error returns the error message with the failing route.
func (e *RouteError) Error() string {
	return fmt.Sprintf("widget: route %v: %v", e.Route, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *RouteError) Unwrap() error {
	return e.Err
}

func routeErr(route vdom.Route, err error) error {
	return &RouteError{Route: route, Err: err}
}

func variantErr(what string, tag uint32) error {
	return fmt.Errorf("%w: %s with tag %d", ErrVariantUnreachable, what, tag)
}
