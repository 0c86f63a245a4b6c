// Package rpc serves a widget engine over JSON-RPC 2.0, the shape
// IDE clients of theorem-prover frontends expect. One connection
// drives one engine; requests serialize onto the engine through the
// server's lock so the single-driver discipline holds.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/vdom"
	"github.com/provekit/widget/pkg/widget"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}

	// errInvalidHandler mirrors widget.ErrInvalidHandler on the wire.
	errInvalidHandler = &jsonrpc2.Error{
		Code: -32001, Message: "invalid handler"}
)

// EventParams are the parameters of widget/event.
type EventParams struct {
	Route   vdom.Route     `json:"r"`
	Handler vdom.HandlerID `json:"h"`
	Args    any            `json:"args,omitempty"`
}

// RouteParams address a component instance.
type RouteParams struct {
	Route vdom.Route `json:"r"`
}

// RenderResult is the response of widget/render and widget/event.
type RenderResult struct {
	Tree   any `json:"tree"`
	Action any `json:"action,omitempty"`
}

// Server exposes one engine over JSON-RPC.
type Server struct {
	mu     sync.Mutex
	engine *widget.Engine
}

// NewServer wraps an engine.
func NewServer(engine *widget.Engine) *Server {
	return &Server{engine: engine}
}

// Serve drives the connection until the peer disconnects.
func (s *Server) Serve(ctx context.Context, stream io.ReadWriteCloser) {
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(stream, jsonrpc2.VSCodeObjectCodec{}),
		s.handler())
	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		conn.Close()
	}
}

type method func(context.Context, json.RawMessage) (any, error)

func (s *Server) handler() jsonrpc2.Handler {
	methods := map[string]method{
		"widget/render":        s.render,
		"widget/event":         s.event,
		"widget/taskCompleted": s.taskCompleted,
		"widget/mouseCapture":  s.mouseCapture,
		"widget/mouseRelease":  s.mouseRelease,
	}
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, params)
	})
}

// Handler implementations. The lock makes each one an exclusive
// engine driver for its duration.

func (s *Server) render(_ context.Context, _ json.RawMessage) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tree, err := s.engine.ToJSON()
	if err != nil {
		return nil, err
	}
	return &RenderResult{Tree: tree}, nil
}

func (s *Server) event(_ context.Context, rawParams json.RawMessage) (any, error) {
	var params EventParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	action, ok, err := s.engine.HandleEvent(params.Route, params.Handler, host.FromJSON(params.Args))
	if errors.Is(err, widget.ErrInvalidHandler) {
		return nil, errInvalidHandler
	}
	if err != nil {
		return nil, err
	}
	tree, err := s.engine.ToJSON()
	if err != nil {
		return nil, err
	}
	result := &RenderResult{Tree: tree}
	if ok {
		result.Action = host.ToJSON(action)
	}
	return result, nil
}

func (s *Server) taskCompleted(_ context.Context, rawParams json.RawMessage) (any, error) {
	var params RouteParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.TaskCompleted(params.Route); err != nil {
		return nil, err
	}
	tree, err := s.engine.ToJSON()
	if err != nil {
		return nil, err
	}
	return &RenderResult{Tree: tree}, nil
}

func (s *Server) mouseCapture(_ context.Context, rawParams json.RawMessage) (any, error) {
	return s.mouse(rawParams, s.engine.MouseCapture)
}

func (s *Server) mouseRelease(_ context.Context, rawParams json.RawMessage) (any, error) {
	return s.mouse(rawParams, s.engine.MouseRelease)
}

func (s *Server) mouse(rawParams json.RawMessage, apply func(vdom.Route) error) (any, error) {
	var params RouteParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := apply(params.Route); err != nil {
		return nil, err
	}
	tree, err := s.engine.ToJSON()
	if err != nil {
		return nil, err
	}
	return &RenderResult{Tree: tree}, nil
}
