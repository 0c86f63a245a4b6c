// Package server serves widget engines to remote view layers over
// websockets: one session per connection, one engine per session, all
// engine mutation confined to the session's event loop.
package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/provekit/widget/pkg/host"
	"github.com/provekit/widget/pkg/protocol"
	"github.com/provekit/widget/pkg/task"
	"github.com/provekit/widget/pkg/vdom"
	"github.com/provekit/widget/pkg/widget"
)

// RootProvider builds the top-level component description and props
// for a new session. It is called once per session so every client
// gets its own tree.
type RootProvider func() (component, props host.Value, err error)

// Config holds server tunables.
type Config struct {
	// MaxSessions caps concurrent sessions.
	MaxSessions int

	// MaxEventQueue caps queued inbound frames per session.
	MaxEventQueue int

	// WriteTimeout bounds websocket writes.
	WriteTimeout time.Duration

	// Codec is the default frame codec; clients may negotiate another
	// with the codec query parameter.
	Codec protocol.Codec

	// TaskWorkers is the task queue worker pool size.
	TaskWorkers int

	// Logger is the server's logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxSessions:   256,
		MaxEventQueue: 64,
		WriteTimeout:  10 * time.Second,
		Codec:         protocol.JSONCodec{},
		TaskWorkers:   task.DefaultWorkers,
	}
}

// Server upgrades websocket connections into widget sessions and owns
// the process task queue.
type Server struct {
	config   *Config
	provider RootProvider
	logger   *slog.Logger
	upgrader websocket.Upgrader
	queue    *task.Queue

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// New creates a Server and installs the process task queue.
// Installing over an existing queue fails with ErrQueueInstalled.
func New(cfg *Config, provider RootProvider) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Codec == nil {
		cfg.Codec = protocol.JSONCodec{}
	}
	s := &Server{
		config:   cfg,
		provider: provider,
		logger:   cfg.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		sessions: make(map[string]*Session),
	}
	s.queue = task.New(cfg.TaskWorkers, s.routeTaskCompletion)
	if err := widget.SetTaskQueue(s.queue); err != nil {
		s.queue.Close()
		return nil, ErrQueueInstalled
	}
	return s, nil
}

// routeTaskCompletion fans a completed task's route out to the
// session loops. Instance ids are process-unique, so at most one
// session resolves the route; the rest log and swallow it.
func (s *Server) routeTaskCompletion(route vdom.Route) {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.deliverTaskRoute(route)
	}
}

// HandleWS is the http.HandlerFunc for the websocket endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		http.Error(w, "server closed", http.StatusServiceUnavailable)
		return
	}
	if len(s.sessions) >= s.config.MaxSessions {
		s.mu.Unlock()
		recordSessionRefused()
		http.Error(w, "session limit reached", http.StatusServiceUnavailable)
		return
	}
	s.mu.Unlock()

	component, props, err := s.provider()
	if err != nil {
		s.logger.Error("root provider failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	engine, err := widget.NewEngine(component, props, widget.WithLogger(s.logger))
	if err != nil {
		s.logger.Error("mounting root component failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		engine.Dispose()
		return
	}

	codec := s.config.Codec
	if name := r.URL.Query().Get("codec"); name != "" {
		codec = protocol.CodecByName(name)
	}

	sess := newSession(conn, engine, codec, s.config, s.logger)
	sess.onClose = s.removeSession

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	recordSessionOpen()
	sess.logger.Info("session opened", "codec", codec.Name())

	go sess.run()
}

func (s *Server) removeSession(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
}

// SessionCount returns the number of active sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close shuts every session down and releases the process task queue.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
	s.queue.Close()
	widget.ResetTaskQueue()
}
