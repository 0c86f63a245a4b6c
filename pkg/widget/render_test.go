package widget_test

import (
	"errors"
	"testing"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/widget"
	"github.com/provekit/widget/pkg/wtest"
)

func pureOf(node host.Value) host.Value {
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return node, nil
	})
	return wtest.Pure(view)
}

func TestClassNameMergesInDeclarationOrder(t *testing.T) {
	wtest.ResetIDs()
	node := wtest.El("div", []host.Value{
		wtest.Val("className", "a"),
		wtest.Val("id", "x"),
		wtest.Val("className", "b"),
	})
	e := mustEngine(t, pureOf(node), host.None())

	tree := mustTree(t, e).(map[string]any)
	div := tree["c"].([]any)[0].(map[string]any)
	attrs := div["a"].(map[string]any)
	if attrs["className"] != "a b" {
		t.Errorf("className = %v, want \"a b\"", attrs["className"])
	}
	if attrs["id"] != "x" {
		t.Errorf("id = %v, want x", attrs["id"])
	}
}

func TestStylePairsMergeAcrossAttributes(t *testing.T) {
	wtest.ResetIDs()
	node := wtest.El("div", []host.Value{
		wtest.Style("color", "red", "margin", "0"),
		wtest.Style("color", "blue"),
	})
	e := mustEngine(t, pureOf(node), host.None())

	tree := mustTree(t, e).(map[string]any)
	div := tree["c"].([]any)[0].(map[string]any)
	style := div["a"].(map[string]any)["style"].(map[string]any)
	if style["color"] != "blue" {
		t.Errorf("style.color = %v, want blue (later attr wins)", style["color"])
	}
	if style["margin"] != "0" {
		t.Errorf("style.margin = %v, want 0", style["margin"])
	}
}

func TestTooltipRendersAsSubtree(t *testing.T) {
	wtest.ResetIDs()
	node := wtest.El("span",
		[]host.Value{wtest.Tooltip(wtest.Text("explanation"))},
		wtest.Text("term"))
	e := mustEngine(t, pureOf(node), host.None())

	tree := mustTree(t, e).(map[string]any)
	span := tree["c"].([]any)[0].(map[string]any)
	if span["tt"] != "explanation" {
		t.Errorf("tooltip = %v, want explanation", span["tt"])
	}
}

func TestTextChangeRegistersOnChange(t *testing.T) {
	wtest.ResetIDs()
	var got string
	handler := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		got, _ = args[0].AsString()
		return host.None(), nil
	})
	node := wtest.El("input", []host.Value{wtest.TextChange(handler)})
	e := mustEngine(t, pureOf(node), host.None())

	events := collectEvents(mustTree(t, e))
	if len(events) != 1 || events[0].Name != "onChange" {
		t.Fatalf("events = %+v, want one onChange", events)
	}
	if _, _, err := e.HandleEvent(events[0].Route, events[0].Handler, host.String("typed")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if got != "typed" {
		t.Errorf("handler received %q, want typed", got)
	}
}

func TestMouseEnterAndLeaveNames(t *testing.T) {
	wtest.ResetIDs()
	node := wtest.El("div", []host.Value{
		wtest.OnMouseEnter(constClosure(host.None())),
		wtest.OnMouseLeave(constClosure(host.None())),
	})
	e := mustEngine(t, pureOf(node), host.None())

	names := map[string]bool{}
	for _, ev := range collectEvents(mustTree(t, e)) {
		names[ev.Name] = true
	}
	if !names["onMouseEnter"] || !names["onMouseLeave"] {
		t.Errorf("event names = %v", names)
	}
}

func TestKeyedSwapPreservesComponentIdentity(t *testing.T) {
	wtest.ResetIDs()

	item := func(label string) host.Value {
		view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
			return wtest.Text(label), nil
		})
		return wtest.Pure(view)
	}
	compA, compB := item("value-A"), item("value-B")
	propsA, propsB := host.None(), host.None()

	entry := func(key string, props, comp host.Value) host.Value {
		return wtest.El("div", []host.Value{wtest.Key(key)}, wtest.Comp(props, comp))
	}

	init := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.Natural(0), nil
	})
	update := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.Pair(host.Natural(1), host.None()), nil
	})
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		flip := host.First(args[0]).(*host.Nat).N() == 1
		swap := wtest.El("button",
			[]host.Value{wtest.OnClick(constClosure(host.String("swap")))},
			wtest.Text("swap"))
		if flip {
			return wtest.El("div", nil, swap,
				entry("B", propsB, compB), entry("A", propsA, compA)), nil
		}
		return wtest.El("div", nil, swap,
			entry("A", propsA, compA), entry("B", propsB, compB)), nil
	})
	component := wtest.WithState(init, update, wtest.Pure(view))

	e := mustEngine(t, component, host.None())
	before := mustTree(t, e)
	beforeIDs := collectInstanceIDs(before)[1:] // skip the root's own id
	beforeTexts := collectTexts(before)

	var swap eventRef
	for _, ev := range collectEvents(before) {
		if len(ev.Route) == 0 {
			swap = ev
		}
	}
	if _, _, err := e.HandleEvent(swap.Route, swap.Handler, host.None()); err != nil {
		t.Fatalf("swap: %v", err)
	}

	after := mustTree(t, e)
	afterIDs := collectInstanceIDs(after)[1:]
	afterTexts := collectTexts(after)

	if len(beforeIDs) != 2 || len(afterIDs) != 2 {
		t.Fatalf("instance ids before %v after %v", beforeIDs, afterIDs)
	}
	// A rendered first before the swap, B first after; each keeps its
	// instance id and its value.
	if afterIDs[0] != beforeIDs[1] || afterIDs[1] != beforeIDs[0] {
		t.Errorf("ids did not swap: before %v after %v", beforeIDs, afterIDs)
	}
	wantBefore := []string{"swap", "value-A", "value-B"}
	wantAfter := []string{"swap", "value-B", "value-A"}
	for i := range wantBefore {
		if beforeTexts[i] != wantBefore[i] {
			t.Errorf("before texts = %v, want %v", beforeTexts, wantBefore)
			break
		}
	}
	for i := range wantAfter {
		if afterTexts[i] != wantAfter[i] {
			t.Errorf("after texts = %v, want %v", afterTexts, wantAfter)
			break
		}
	}
}

func TestStatefulReconcileInitializesOnce(t *testing.T) {
	wtest.ResetIDs()

	initCalls := 0
	var sawPrior bool
	init := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		initCalls++
		if v, ok, _ := host.AsOption(args[1]); ok {
			sawPrior = true
			return v, nil
		}
		return host.Natural(7), nil
	})
	update := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.Pair(args[1], host.None()), nil
	})
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return wtest.Text("x"), nil
	})
	component := wtest.WithState(init, update, wtest.Pure(view))

	prior, err := widget.NewRoot(component, host.String("p1"))
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	if _, err := prior.ToJSON(nil); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if initCalls != 1 {
		t.Fatalf("init ran %d times on first render, want 1", initCalls)
	}

	next, err := widget.NewRoot(component, host.String("p2"))
	if err != nil {
		t.Fatalf("NewRoot: %v", err)
	}
	if err := next.Reconcile(prior); err != nil {
		t.Fatalf("Reconcile: %v", err)
	}

	// Adopting the prior state runs init exactly once, with the
	// carried-over state passed as some(prior).
	if initCalls != 2 {
		t.Errorf("init ran %d times across reconcile, want 2", initCalls)
	}
	if !sawPrior {
		t.Error("init did not observe the carried-over state")
	}
}

func TestMalformedComponentVariant(t *testing.T) {
	wtest.ResetIDs()
	bogus := host.NewTagged(42, host.String("nonsense"))
	if _, err := widget.NewEngine(bogus, host.None()); !errors.Is(err, widget.ErrVariantUnreachable) {
		t.Errorf("err = %v, want ErrVariantUnreachable", err)
	}
}

func TestMalformedHTMLVariant(t *testing.T) {
	wtest.ResetIDs()
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.NewTagged(99, host.String("junk")), nil
	})
	e := mustEngine(t, wtest.Pure(view), host.None())
	if _, err := e.ToJSON(); err == nil {
		t.Error("expected error rendering a malformed html value")
	}
}

func TestFailedRenderKeepsPriorView(t *testing.T) {
	wtest.ResetIDs()

	fail := false
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		if fail {
			return nil, errors.New("view trapped")
		}
		return wtest.El("div", nil,
			wtest.El("button",
				[]host.Value{wtest.OnClick(constClosure(host.String("go")))},
				wtest.Text("ok"))), nil
	})
	init := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.Natural(0), nil
	})
	update := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.Pair(host.Natural(1), host.None()), nil
	})
	component := wtest.WithState(init, update, wtest.Pure(view))

	e := mustEngine(t, component, host.None())
	before := marshalTree(t, mustTree(t, e))
	events := collectEvents(mustTree(t, e))

	fail = true
	if _, _, err := e.HandleEvent(events[0].Route, events[0].Handler, host.None()); err == nil {
		t.Fatal("expected the trapped view to surface an error")
	}
	fail = false

	// The prior view is still addressable: its handler table and
	// render were not overwritten by the failed render.
	after := marshalTree(t, mustTree(t, e))
	if before != after {
		t.Errorf("failed render mutated the serialized tree:\n before %s\n after %s", before, after)
	}
}
