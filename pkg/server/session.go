package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/protocol"
	"github.com/provekit/widget/pkg/vdom"
	"github.com/provekit/widget/pkg/widget"
)

// Session drives one widget tree over one websocket connection. All
// engine mutation happens on the session's event loop goroutine; the
// read goroutine only decodes frames and queues them.
type Session struct {
	// ID is the unique session identifier.
	ID string

	conn   *websocket.Conn
	engine *widget.Engine
	codec  protocol.Codec
	logger *slog.Logger

	frames     chan *protocol.Frame
	taskRoutes chan vdom.Route

	writeTimeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
	onClose   func(*Session)
}

func newSession(conn *websocket.Conn, engine *widget.Engine, codec protocol.Codec, cfg *Config, logger *slog.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		ID:           id,
		conn:         conn,
		engine:       engine,
		codec:        codec,
		logger:       logger.With("session_id", id),
		frames:       make(chan *protocol.Frame, cfg.MaxEventQueue),
		taskRoutes:   make(chan vdom.Route, cfg.MaxEventQueue),
		writeTimeout: cfg.WriteTimeout,
		done:         make(chan struct{}),
	}
}

// run blocks until the connection drops or the session closes. It
// sends the initial tree, then processes inbound frames and task
// completions in arrival order; a re-render triggered by one frame
// completes before the next dispatches. The engine is touched only on
// this goroutine, including its disposal.
func (s *Session) run() {
	defer s.teardown()

	go s.readLoop()

	if err := s.sendTree(); err != nil {
		s.logger.Error("initial render failed", "err", err)
		return
	}

	for {
		select {
		case <-s.done:
			return
		case f := <-s.frames:
			s.dispatch(f)
		case route := <-s.taskRoutes:
			s.dispatch(&protocol.Frame{Type: protocol.FrameTaskCompleted, Route: route})
		}
	}
}

// readLoop decodes inbound frames off the websocket. It never touches
// the engine.
func (s *Session) readLoop() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.Close()
			return
		}
		// The event loop is the connection's only writer, so malformed
		// frames are logged and dropped rather than answered here.
		f, err := s.codec.Decode(data)
		if err != nil {
			s.logger.Warn("dropping malformed frame", "err", err)
			continue
		}
		select {
		case s.frames <- f:
		case <-s.done:
			return
		default:
			s.logger.Warn("event queue full, dropping frame", "type", f.Type)
		}
	}
}

// dispatch routes one frame into the engine and ships the updated
// tree back.
func (s *Session) dispatch(f *protocol.Frame) {
	start := time.Now()
	_, span := startFrameSpan(context.Background(), s.ID, f)

	err := s.dispatchFrame(f)

	endFrameSpan(span, err)
	status := "success"
	if err != nil {
		status = "error"
	}
	recordFrame(string(f.Type), time.Since(start).Seconds(), status)
}

func (s *Session) dispatchFrame(f *protocol.Frame) error {
	switch f.Type {
	case protocol.FrameEvent:
		action, ok, err := s.engine.HandleEvent(f.Route, f.Handler, host.FromJSON(f.Args))
		if errors.Is(err, widget.ErrInvalidHandler) {
			// Stale event against a re-rendered tree; the client gets
			// a fresh tree and drops its stale handlers.
			recordInvalidHandler()
			s.logger.Warn("invalid handler", "route", f.Route, "handler", f.Handler)
			s.sendError("W101", err.Error())
			return s.sendTree()
		}
		if err != nil {
			s.sendError("W104", err.Error())
			return err
		}
		if ok && action != nil {
			s.send(&protocol.Frame{Type: protocol.FrameAction, Action: host.ToJSON(action)})
		}
		return s.sendTree()

	case protocol.FrameTaskCompleted:
		recordTaskCompleted()
		if err := s.engine.TaskCompleted(f.Route); err != nil {
			s.sendError("W104", err.Error())
			return err
		}
		return s.sendTree()

	case protocol.FrameMouseCapture:
		if err := s.engine.MouseCapture(f.Route); err != nil {
			s.sendError("W104", err.Error())
			return err
		}
		return s.sendTree()

	case protocol.FrameMouseRelease:
		if err := s.engine.MouseRelease(f.Route); err != nil {
			s.sendError("W104", err.Error())
			return err
		}
		return s.sendTree()

	default:
		s.sendError("W201", "unexpected inbound frame type")
		return nil
	}
}

// sendTree re-serializes the rendered tree and ships it whole; the
// client may diff.
func (s *Session) sendTree() error {
	tree, err := s.engine.ToJSON()
	if err != nil {
		s.sendError("W104", err.Error())
		return err
	}
	return s.send(protocol.NewTreeFrame(tree))
}

func (s *Session) sendError(code, message string) {
	if err := s.send(protocol.NewErrorFrame(code, message)); err != nil {
		s.logger.Warn("failed to send error frame", "code", code, "err", err)
	}
}

func (s *Session) send(f *protocol.Frame) error {
	data, err := s.codec.Encode(f)
	if err != nil {
		return NewSessionError(s.ID, "encode frame", err)
	}
	if f.Type == protocol.FrameTree {
		recordTreeBytes(len(data))
	}
	messageType := websocket.TextMessage
	if s.codec.Name() != (protocol.JSONCodec{}).Name() {
		messageType = websocket.BinaryMessage
	}
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return NewSessionError(s.ID, "set write deadline", err)
	}
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		return NewSessionError(s.ID, "write frame", err)
	}
	return nil
}

// deliverTaskRoute hands a task completion to the event loop. Returns
// false when the session is closed or backed up; completions are best
// effort.
func (s *Session) deliverTaskRoute(route vdom.Route) bool {
	select {
	case s.taskRoutes <- route:
		return true
	case <-s.done:
		return false
	default:
		s.logger.Warn("task completion queue full, dropping", "route", route)
		return false
	}
}

// Close signals the session to shut down. The event loop disposes the
// engine on its own goroutine and then unregisters the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// teardown runs on the event loop goroutine once it exits, so engine
// disposal never races a dispatch.
func (s *Session) teardown() {
	s.Close()
	s.engine.Dispose()
	if s.onClose != nil {
		s.onClose(s)
	}
	recordSessionClose()
	s.logger.Info("session closed")
}

// IsClosed reports whether the session has closed.
func (s *Session) IsClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// TreeJSON returns the current serialized tree as raw JSON. It is a
// testing and debugging convenience and must only be called from the
// session's own goroutine discipline.
func (s *Session) TreeJSON() (json.RawMessage, error) {
	tree, err := s.engine.ToJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}
