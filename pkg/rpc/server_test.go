package rpc

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
	"github.com/provekit/widget/pkg/widget"
	"github.com/provekit/widget/pkg/wtest"
)

func counterEngine(t *testing.T) *widget.Engine {
	t.Helper()
	wtest.ResetIDs()
	init := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		return host.Natural(0), nil
	})
	update := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		n := args[1].(*host.Nat).N()
		return host.Pair(host.Natural(n+1), host.None()), nil
	})
	view := host.NewClosure(func(args ...host.Value) (host.Value, error) {
		n := host.First(args[0]).(*host.Nat).N()
		click := host.NewClosure(func(args ...host.Value) (host.Value, error) {
			return host.None(), nil
		})
		return wtest.El("button",
			[]host.Value{wtest.OnClick(click)},
			wtest.Text(strconv.FormatUint(n, 10))), nil
	})
	e, err := widget.NewEngine(wtest.WithState(init, update, wtest.Pure(view)), host.None())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// firstEvent pulls the first event's route and handler out of a tree.
func firstEvent(t *testing.T, tree any) (vdom.Route, vdom.HandlerID) {
	t.Helper()
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	var route vdom.Route
	var handler vdom.HandlerID
	found := false
	var walk func(v any)
	walk = func(v any) {
		node, ok := v.(map[string]any)
		if !ok {
			return
		}
		if events, ok := node["e"].(map[string]any); ok {
			for _, raw := range events {
				ev := raw.(map[string]any)
				route = nil
				for _, id := range ev["r"].([]any) {
					route = append(route, uint32(id.(float64)))
				}
				handler = vdom.HandlerID(ev["h"].(float64))
				found = true
				return
			}
		}
		if cs, ok := node["c"].([]any); ok {
			for _, c := range cs {
				walk(c)
			}
		}
	}
	walk(decoded)
	if !found {
		t.Fatal("no event found in tree")
	}
	return route, handler
}

func dialPair(t *testing.T, srv *Server) *jsonrpc2.Conn {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Serve(ctx, serverSide)

	client := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
			return nil, nil
		}))
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRenderReturnsTree(t *testing.T) {
	client := dialPair(t, NewServer(counterEngine(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result RenderResult
	if err := client.Call(ctx, "widget/render", nil, &result); err != nil {
		t.Fatalf("widget/render: %v", err)
	}
	if result.Tree == nil {
		t.Fatal("render returned no tree")
	}
}

func TestEventIncrementsCounter(t *testing.T) {
	client := dialPair(t, NewServer(counterEngine(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rendered RenderResult
	if err := client.Call(ctx, "widget/render", nil, &rendered); err != nil {
		t.Fatalf("widget/render: %v", err)
	}
	route, handler := firstEvent(t, rendered.Tree)

	var result RenderResult
	params := EventParams{Route: route, Handler: handler, Args: nil}
	if err := client.Call(ctx, "widget/event", params, &result); err != nil {
		t.Fatalf("widget/event: %v", err)
	}

	data, _ := json.Marshal(result.Tree)
	if want := `"1"`; !containsStr(string(data), want) {
		t.Errorf("tree after click lacks %s: %s", want, data)
	}
}

func TestStaleHandlerSurfacesRPCError(t *testing.T) {
	client := dialPair(t, NewServer(counterEngine(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var rendered RenderResult
	if err := client.Call(ctx, "widget/render", nil, &rendered); err != nil {
		t.Fatalf("widget/render: %v", err)
	}

	var result RenderResult
	params := EventParams{Route: nil, Handler: 4242}
	err := client.Call(ctx, "widget/event", params, &result)
	if err == nil {
		t.Fatal("expected error for stale handler")
	}
	rpcErr, ok := err.(*jsonrpc2.Error)
	if !ok {
		t.Fatalf("error type = %T", err)
	}
	if rpcErr.Code != errInvalidHandler.Code {
		t.Errorf("code = %d, want %d", rpcErr.Code, errInvalidHandler.Code)
	}
}

func TestUnknownMethod(t *testing.T) {
	client := dialPair(t, NewServer(counterEngine(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result any
	err := client.Call(ctx, "widget/unknown", nil, &result)
	if err == nil {
		t.Fatal("expected method-not-found error")
	}
}

func containsStr(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
