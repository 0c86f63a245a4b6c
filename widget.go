// Package widget provides the public API for the widget engine.
//
// This is the recommended import for embedding hosts:
//
//	import "github.com/provekit/widget"
//
// Usage:
//
//	engine, err := widget.NewEngine(component, props)
//	tree, err := engine.ToJSON()
//	action, ok, err := engine.HandleEvent(route, handlerID, args)
package widget

import (
	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
	corewidget "github.com/provekit/widget/pkg/widget"
)

// =============================================================================
// Engine (pkg/widget exposed at the module root)
// =============================================================================

// Engine drives one mounted widget tree.
type Engine = corewidget.Engine

// ComponentInstance is a mounted component.
type ComponentInstance = corewidget.ComponentInstance

// TaskQueue executes host task values for with_task hooks.
type TaskQueue = corewidget.TaskQueue

// NewEngine mounts the top-level component with its props.
func NewEngine(component, props host.Value, opts ...corewidget.EngineOption) (*Engine, error) {
	return corewidget.NewEngine(component, props, opts...)
}

// SetTaskQueue installs the process task queue. Installing twice
// fails.
func SetTaskQueue(q TaskQueue) error {
	return corewidget.SetTaskQueue(q)
}

// ResetTaskQueue removes the installed task queue.
func ResetTaskQueue() {
	corewidget.ResetTaskQueue()
}

// =============================================================================
// Addressing and values
// =============================================================================

// Route addresses a component instance in the live tree, root-first.
type Route = vdom.Route

// HandlerID names an installed event closure.
type HandlerID = vdom.HandlerID

// Value is an opaque handle to a host-runtime value.
type Value = host.Value

// Dispatch errors, re-exported for transports.
var (
	ErrInvalidHandler    = corewidget.ErrInvalidHandler
	ErrMissingTaskTarget = corewidget.ErrMissingTaskTarget
)
