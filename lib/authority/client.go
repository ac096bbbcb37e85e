// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package authority

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/orchdash/orchdash/lib/codec"
	"github.com/orchdash/orchdash/lib/wire"
)

// maxRequestSize bounds a single client frame.
const maxRequestSize = 64 << 10

// client is one connected dashboard. The server closes send to
// disconnect it.
type client struct {
	id     string
	conn   *websocket.Conn
	codec  codec.Codec
	send   chan []byte
	server *Server
}

func (c *client) messageType() int {
	if c.codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// writePump is the connection's only data writer. It exits when send
// is closed or a write fails, closing the connection either way.
func (c *client) writePump() {
	config := c.server.config
	ticker := time.NewTicker(config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(c.messageType(), data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(config.WriteTimeout)); err != nil {
				return
			}
		}
	}
}

// readPump decodes requests until the connection fails.
func (c *client) readPump() {
	config := c.server.config
	logger := c.server.logger.With("connection_id", c.id)

	c.conn.SetReadLimit(maxRequestSize)
	extend := func() error {
		return c.conn.SetReadDeadline(time.Now().Add(config.ReadTimeout))
	}
	extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("client read failed", "error", err)
			}
			return
		}
		extend()

		var frame wire.ClientFrame
		if err := c.codec.Unmarshal(data, &frame); err != nil {
			logger.Warn("ignoring undecodable request", "error", err)
			c.reject(err.Error())
			continue
		}
		command, err := wire.ParseCommand(frame)
		if err != nil {
			logger.Warn("ignoring invalid request", "name", frame.Name, "error", err)
			c.reject(err.Error())
			continue
		}
		logger.Info("request",
			"command", command.Name(),
			"component_id", command.Payload().ID,
		)
		if err := c.server.apply(command); err != nil {
			logger.Warn("request failed", "command", command.Name(), "error", err)
			c.reject(err.Error())
		}
	}
}

// reject sends an error frame to this client.
func (c *client) reject(message string) {
	data, err := c.codec.Marshal(wire.ServerFrame{Type: wire.FrameError, Message: message})
	if err != nil {
		return
	}
	c.server.mu.Lock()
	defer c.server.mu.Unlock()
	if _, ok := c.server.clients[c]; ok {
		c.server.enqueueLocked(c, data)
	}
}
