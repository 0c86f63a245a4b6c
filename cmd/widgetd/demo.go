package main

import (
	"strconv"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/widget"
)

// demoRoot builds the built-in demo: a stateful counter whose button
// increments on click. It doubles as a smoke test for a deployment,
// real hosts mount their own component descriptions.
func demoRoot() (host.Value, host.Value, error) {
	init := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		// (props, prior) -> state; a carried-over counter survives.
		if prior, ok, err := host.AsOption(args[1]); err == nil && ok {
			return prior, nil
		}
		return host.Natural(0), nil
	})
	update := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		// (props, state, action) -> (state', none)
		n := args[1].(*host.Nat).N()
		return host.Pair(host.Natural(n+1), host.None()), nil
	})
	onClick := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.None(), nil
	})
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		state := host.First(args[0])
		n := state.(*host.Nat).N()
		return host.NewTagged(widget.TagElement,
			host.String("button"),
			host.List(host.NewTagged(widget.TagAttrMouseEvent,
				host.NewTagged(widget.MouseEventClick), onClick)),
			host.List(host.NewTagged(widget.TagOfString,
				host.String(strconv.FormatUint(n, 10)))),
		), nil
	})

	component := host.NewTagged(widget.TagWithState,
		init, update,
		host.NewTagged(widget.TagPure, view))
	return component, host.None(), nil
}
