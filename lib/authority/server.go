// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/zeebo/blake3"

	"github.com/orchdash/orchdash/lib/clock"
	"github.com/orchdash/orchdash/lib/codec"
	"github.com/orchdash/orchdash/lib/mirror"
	"github.com/orchdash/orchdash/lib/wire"
)

// Controller is the component supervisor the server fronts.
type Controller interface {
	Snapshot() *mirror.Document
	Start(id int) error
	Stop(id int) error
	SetRevive(id int, value bool) error
}

// Config configures a Server. Zero values take the listed defaults.
type Config struct {
	// Endpoint is the websocket path. Default /ws.
	Endpoint string

	// FlushDelay coalesces changes before a broadcast. Zero
	// broadcasts every change immediately.
	FlushDelay time.Duration

	// PingInterval (default 20s), ReadTimeout (default 60s), and
	// WriteTimeout (default 10s) govern client liveness.
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// SendQueue is the per-client frame queue (default 16). A client
	// whose queue is full is disconnected.
	SendQueue int

	// Clock drives the flush timer. Default [clock.Real].
	Clock clock.Clock
}

func (config Config) withDefaults() Config {
	if config.Endpoint == "" {
		config.Endpoint = "/ws"
	}
	if config.PingInterval <= 0 {
		config.PingInterval = 20 * time.Second
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 60 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.SendQueue <= 0 {
		config.SendQueue = 16
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	return config
}

// Server is the authority's HTTP and websocket front end.
type Server struct {
	config     Config
	controller Controller
	logger     *slog.Logger
	router     *mux.Router
	upgrader   websocket.Upgrader

	mu         sync.Mutex
	clients    map[*client]struct{}
	flushTimer *clock.Timer
	lastDigest [32]byte
	broadcasts int
	closed     bool
}

// New creates a server for controller. Wire the controller's change
// notifications to [Server.Changed].
func New(config Config, controller Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	server := &Server{
		config:     config.withDefaults(),
		controller: controller,
		logger:     logger,
		clients:    make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			Subprotocols: codec.Subprotocols(),
			// Dashboards are not authenticated; any origin may
			// connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	server.lastDigest = digest(server.controller.Snapshot())

	router := mux.NewRouter()
	router.HandleFunc(server.config.Endpoint, server.serveWebsocket).Methods(http.MethodGet)
	router.HandleFunc("/state", server.serveState).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	}).Methods(http.MethodGet)
	server.router = router
	return server
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler { return s.router }

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Broadcasts returns how many snapshots have been broadcast.
func (s *Server) Broadcasts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broadcasts
}

// Changed schedules a broadcast of the controller's current state.
// Calls within one FlushDelay window produce a single broadcast.
func (s *Server) Changed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.flushTimer != nil {
		return
	}
	if s.config.FlushDelay <= 0 {
		s.flushLocked()
		return
	}
	s.flushTimer = s.config.Clock.AfterFunc(s.config.FlushDelay, s.flush)
}

// Close disconnects every client and stops pending broadcasts. The
// HTTP listener is the caller's to shut down.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.flushTimer != nil {
		s.flushTimer.Stop()
		s.flushTimer = nil
	}
	for client := range s.clients {
		s.dropLocked(client)
	}
}

func (s *Server) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushTimer = nil
	if s.closed {
		return
	}
	s.flushLocked()
}

func (s *Server) flushLocked() {
	document := s.controller.Snapshot()
	sum := digest(document)
	if sum == s.lastDigest {
		return
	}
	s.lastDigest = sum
	s.broadcasts++

	frame := wire.StateFrame(document)
	encoded := make(map[string][]byte, 2)
	for client := range s.clients {
		data, ok := encoded[client.codec.Name()]
		if !ok {
			var err error
			data, err = client.codec.Marshal(frame)
			if err != nil {
				s.logger.Error("encoding snapshot", "encoding", client.codec.Name(), "error", err)
				return
			}
			encoded[client.codec.Name()] = data
		}
		s.enqueueLocked(client, data)
	}
	s.logger.Debug("snapshot broadcast",
		"clients", len(s.clients),
		"components", document.Len(),
	)
}

// digest identifies a snapshot's content. CBOR's deterministic mode
// makes equal documents encode identically.
func digest(document *mirror.Document) [32]byte {
	data, err := codec.CBOR.Marshal(wire.StateFrame(document))
	if err != nil {
		return [32]byte{}
	}
	return blake3.Sum256(data)
}

func (s *Server) enqueueLocked(client *client, data []byte) {
	select {
	case client.send <- data:
	default:
		s.logger.Warn("client too slow, disconnecting", "connection_id", client.id)
		s.dropLocked(client)
	}
}

func (s *Server) dropLocked(client *client) {
	if _, ok := s.clients[client]; !ok {
		return
	}
	delete(s.clients, client)
	close(client.send)
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	data, err := codec.JSON.Marshal(wire.StateFrame(s.controller.Snapshot()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	selected, ok := codec.BySubprotocol(conn.Subprotocol())
	if !ok {
		selected = codec.JSON
	}

	client := &client{
		id:     uuid.NewString(),
		conn:   conn,
		codec:  selected,
		send:   make(chan []byte, s.config.SendQueue),
		server: s,
	}
	if err := s.register(client); err != nil {
		s.logger.Warn("rejecting client", "connection_id", client.id, "error", err)
		conn.Close()
		return
	}
	s.logger.Info("client connected",
		"connection_id", client.id,
		"remote", r.RemoteAddr,
		"encoding", selected.Name(),
	)

	go client.writePump()
	client.readPump()

	s.mu.Lock()
	s.dropLocked(client)
	s.mu.Unlock()
	s.logger.Info("client disconnected", "connection_id", client.id)
}

// register queues the current snapshot for client and adds it to the
// broadcast set in one step, so it sees every later broadcast.
func (s *Server) register(client *client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("server closed")
	}
	data, err := client.codec.Marshal(wire.StateFrame(s.controller.Snapshot()))
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	client.send <- data
	s.clients[client] = struct{}{}
	return nil
}

// apply executes one decoded request against the controller.
func (s *Server) apply(command wire.Command) error {
	switch command := command.(type) {
	case wire.Start:
		return s.controller.Start(command.ID)
	case wire.Stop:
		return s.controller.Stop(command.ID)
	case wire.Revive:
		return s.controller.SetRevive(command.ID, command.Value)
	}
	return fmt.Errorf("unsupported command %q", command.Name())
}
