// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orchdash/orchdash/lib/clock"
	"github.com/orchdash/orchdash/lib/codec"
	"github.com/orchdash/orchdash/lib/mirror"
	"github.com/orchdash/orchdash/lib/wire"
)

// ConnState is the lifecycle state of a channel.
type ConnState string

const (
	StateConnecting ConnState = "connecting"
	StateConnected  ConnState = "connected"
	StateClosed     ConnState = "closed"
)

// maxFrameSize bounds a single inbound frame.
const maxFrameSize = 4 << 20

// Config configures a Channel. Zero durations and a nil Codec or Clock
// take the defaults listed on each field.
type Config struct {
	// URL is the authority's websocket endpoint, e.g.
	// ws://localhost:8080/ws.
	URL string

	// Codec selects the frame encoding. Default [codec.JSON].
	Codec codec.Codec

	// InitialBackoff is the first reconnect delay (default 1s). Each
	// failed attempt doubles it up to MaxBackoff (default 30s). A
	// connection that completed its handshake resets it.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// HandshakeTimeout bounds the websocket handshake (default 10s).
	HandshakeTimeout time.Duration

	// PingInterval is the keepalive period (default 20s). ReadTimeout
	// (default 60s) is extended by every frame and every pong.
	// WriteTimeout (default 10s) bounds each write.
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// SendQueue is the outbound queue length (default 64).
	SendQueue int

	// Clock drives reconnect waits. Default [clock.Real]. Network
	// deadlines always use wall time.
	Clock clock.Clock
}

func (config Config) withDefaults() Config {
	if config.Codec == nil {
		config.Codec = codec.JSON
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = 10 * time.Second
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
		config.SendQueue = 64
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	return config
}

// Channel is a reconnecting websocket client for the authority.
type Channel struct {
	config Config
	logger *slog.Logger
	state  atomic.Value // stores ConnState

	mu        sync.Mutex
	onState   func(*mirror.Document)
	onConn    func(ConnState)
	outbound  chan []byte // nil while disconnected
	cancel    context.CancelFunc
	done      chan struct{}
	connected atomic.Int64
}

// New creates a channel. Nothing is dialed until [Channel.Open].
func New(config Config, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	channel := &Channel{
		config: config.withDefaults(),
		logger: logger,
	}
	channel.state.Store(StateClosed)
	return channel
}

// OnState registers the handler that receives every complete document
// (snapshot or patched). It runs on the channel's read goroutine and
// must not block for long; the dashboard hands documents to its own
// loop through a mailbox. Register before Open.
func (c *Channel) OnState(handler func(*mirror.Document)) {
	c.mu.Lock()
	c.onState = handler
	c.mu.Unlock()
}

// OnConnState registers a handler for connection state transitions.
// Register before Open.
func (c *Channel) OnConnState(handler func(ConnState)) {
	c.mu.Lock()
	c.onConn = handler
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Channel) State() ConnState {
	return c.state.Load().(ConnState)
}

// Connections returns how many connections have completed their
// handshake since Open.
func (c *Channel) Connections() int64 {
	return c.connected.Load()
}

// Open starts the connection loop. It returns immediately; the loop
// runs until ctx is cancelled or Close is called.
func (c *Channel) Open(ctx context.Context) error {
	if c.config.URL == "" {
		return errors.New("channel: no URL configured")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("channel: already open")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	go func() {
		defer close(done)
		c.connectLoop(loopCtx)
		c.setState(StateClosed)
	}()
	return nil
}

// Close stops the connection loop and waits for it to exit. Safe to
// call more than once, and before Open.
func (c *Channel) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Send encodes a command and queues it on the live connection. It
// never blocks. While disconnected, or with a full queue, the command
// is dropped.
func (c *Channel) Send(command wire.Command) {
	data, err := c.config.Codec.Marshal(wire.Request(command))
	if err != nil {
		c.logger.Error("encoding command", "command", command.Name(), "error", err)
		return
	}

	c.mu.Lock()
	outbound := c.outbound
	c.mu.Unlock()
	if outbound == nil {
		c.logger.Debug("dropping command while disconnected",
			"command", command.Name(),
			"component_id", command.Payload().ID,
		)
		return
	}
	select {
	case outbound <- data:
	default:
		c.logger.Warn("send queue full, dropping command",
			"command", command.Name(),
			"component_id", command.Payload().ID,
		)
	}
}

func (c *Channel) setState(state ConnState) {
	if c.state.Swap(state) == state {
		return
	}
	c.mu.Lock()
	handler := c.onConn
	c.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

func (c *Channel) deliver(document *mirror.Document) {
	c.mu.Lock()
	handler := c.onState
	c.mu.Unlock()
	if handler != nil {
		handler(document)
	}
}

// connectLoop manages the connection lifecycle with exponential
// backoff reconnection.
func (c *Channel) connectLoop(ctx context.Context) {
	backoff := c.config.InitialBackoff
	for {
		c.setState(StateConnecting)
		handshaken, err := c.runConnection(ctx)
		if ctx.Err() != nil {
			return
		}
		c.setState(StateConnecting)
		if handshaken {
			backoff = c.config.InitialBackoff
		}

		level := slog.LevelWarn
		if IsExpectedClose(err) {
			level = slog.LevelInfo
		}
		c.logger.Log(ctx, level, "channel disconnected",
			"url", c.config.URL,
			"error", err,
			"backoff", backoff,
		)

		select {
		case <-ctx.Done():
			return
		case <-c.config.Clock.After(backoff):
		}
		backoff = min(backoff*2, c.config.MaxBackoff)
	}
}

// runConnection dials once and pumps frames until the connection ends
// or ctx is cancelled. It reports whether the handshake completed.
func (c *Channel) runConnection(ctx context.Context) (bool, error) {
	dialer := &websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: c.config.HandshakeTimeout,
		Subprotocols:     []string{c.config.Codec.Subprotocol()},
	}
	conn, _, err := dialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		return false, fmt.Errorf("dialing %s: %w", c.config.URL, err)
	}
	if conn.Subprotocol() != c.config.Codec.Subprotocol() {
		conn.Close()
		return false, fmt.Errorf("authority did not accept subprotocol %q", c.config.Codec.Subprotocol())
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outbound := make(chan []byte, c.config.SendQueue)
	c.mu.Lock()
	c.outbound = outbound
	c.mu.Unlock()
	// outbound is never closed: a Send racing with teardown lands in
	// an orphaned buffer instead of panicking.
	defer func() {
		c.mu.Lock()
		c.outbound = nil
		c.mu.Unlock()
	}()

	c.connected.Add(1)
	c.setState(StateConnected)
	c.logger.Info("channel connected",
		"url", c.config.URL,
		"encoding", c.config.Codec.Name(),
	)

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		defer cancel()
		c.writePump(connCtx, conn, outbound)
	}()

	err = c.readPump(conn)
	cancel()
	<-writeDone
	return true, err
}

func (c *Channel) messageType() int {
	if c.config.Codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// writePump owns all data writes to conn and closes it on exit, which
// also unblocks the read pump.
func (c *Channel) writePump(ctx context.Context, conn *websocket.Conn, outbound <-chan []byte) {
	defer conn.Close()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(c.config.WriteTimeout))
			return
		case data := <-outbound:
			conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := conn.WriteMessage(c.messageType(), data); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.config.WriteTimeout)); err != nil {
				c.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

// readPump decodes frames until the connection fails. Malformed
// frames are logged and skipped.
func (c *Channel) readPump(conn *websocket.Conn) error {
	conn.SetReadLimit(maxFrameSize)
	extend := func() error {
		return conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}
	extend()
	conn.SetPongHandler(func(string) error { return extend() })

	var document *mirror.Document
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		extend()

		if messageType != c.messageType() {
			c.logger.Warn("dropping frame with unexpected message type",
				"message_type", messageType,
				"encoding", c.config.Codec.Name(),
			)
			continue
		}

		var frame wire.ServerFrame
		if err := c.config.Codec.Unmarshal(data, &frame); err != nil {
			c.logger.Warn("dropping malformed frame", "error", err)
			continue
		}

		next, err := c.applyFrame(document, frame)
		if err != nil {
			c.logger.Warn("dropping malformed frame", "type", frame.Type, "error", err)
			continue
		}
		if next == nil {
			continue
		}
		document = next
		c.deliver(document)
	}
}

// applyFrame returns the document a frame produces from current, or
// nil for frames that carry no state.
func (c *Channel) applyFrame(current *mirror.Document, frame wire.ServerFrame) (*mirror.Document, error) {
	switch frame.Type {
	case wire.FrameState:
		return mirror.NewDocument(frame.Components...)
	case wire.FramePatch:
		if current == nil {
			return nil, errors.New("patch before any snapshot")
		}
		return current.Apply(frame.Put, frame.Remove)
	case wire.FrameError:
		c.logger.Warn("authority reported an error", "message", frame.Message)
		return nil, nil
	default:
		c.logger.Debug("ignoring unknown frame type", "type", frame.Type)
		return nil, nil
	}
}

// IsExpectedClose reports whether err is an orderly end of a
// connection rather than a failure.
func IsExpectedClose(err error) bool {
	if err == nil {
		return true
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
