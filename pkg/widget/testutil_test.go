package widget_test

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
	"github.com/provekit/widget/pkg/widget"
	"github.com/provekit/widget/pkg/wtest"
)

// asJSON round-trips a serialized tree through encoding/json so tests
// can walk it as plain maps and strings.
func asJSON(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal tree: %v", err)
	}
	return out
}

func marshalTree(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}
	return string(data)
}

// eventRef is one event extracted from a serialized tree.
type eventRef struct {
	Name    string
	Route   vdom.Route
	Handler vdom.HandlerID
}

// collectEvents walks a JSON tree and returns every registered event.
func collectEvents(v any) []eventRef {
	var out []eventRef
	walkJSON(v, func(node map[string]any) {
		events, ok := node["e"].(map[string]any)
		if !ok {
			return
		}
		for name, raw := range events {
			ev := raw.(map[string]any)
			var route vdom.Route
			for _, id := range ev["r"].([]any) {
				route = append(route, uint32(id.(float64)))
			}
			out = append(out, eventRef{
				Name:    name,
				Route:   route,
				Handler: vdom.HandlerID(ev["h"].(float64)),
			})
		}
	})
	return out
}

// collectTexts returns every text leaf in document order.
func collectTexts(v any) []string {
	var out []string
	switch x := v.(type) {
	case string:
		out = append(out, x)
	case map[string]any:
		if cs, ok := x["c"].([]any); ok {
			for _, c := range cs {
				out = append(out, collectTexts(c)...)
			}
		}
		if tt, ok := x["tt"]; ok {
			out = append(out, collectTexts(tt)...)
		}
	}
	return out
}

// collectInstanceIDs returns every component instance id in document
// order.
func collectInstanceIDs(v any) []uint32 {
	var out []uint32
	walkJSON(v, func(node map[string]any) {
		if id, ok := node["id"].(float64); ok {
			out = append(out, uint32(id))
		}
	})
	return out
}

func walkJSON(v any, visit func(map[string]any)) {
	node, ok := v.(map[string]any)
	if !ok {
		return
	}
	visit(node)
	if cs, ok := node["c"].([]any); ok {
		for _, c := range cs {
			walkJSON(c, visit)
		}
	}
	if tt, ok := node["tt"]; ok {
		walkJSON(tt, visit)
	}
}

// constClosure returns a closure ignoring its arguments.
func constClosure(result host.Value) host.Value {
	return host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return result, nil
	})
}

// counter builds the S1 counter: state starts at zero, every click
// increments, the view is a button whose label is the count.
func counter() (component, props host.Value) {
	init := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.Natural(0), nil
	})
	update := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		n := args[1].(*host.Nat).N()
		return host.Pair(host.Natural(n+1), host.None()), nil
	})
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		n := host.First(args[0]).(*host.Nat).N()
		return wtest.El("button",
			[]host.Value{wtest.OnClick(constClosure(host.String("clicked")))},
			wtest.Text(strconv.FormatUint(n, 10))), nil
	})
	return wtest.WithState(init, update, wtest.Pure(view)), host.None()
}

// mustEngine mounts a component and fails the test on error.
func mustEngine(t *testing.T, component, props host.Value) *widget.Engine {
	t.Helper()
	e, err := widget.NewEngine(component, props)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// mustTree serializes the engine's tree and fails the test on error.
func mustTree(t *testing.T, e *widget.Engine) any {
	t.Helper()
	tree, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	return asJSON(t, tree)
}
