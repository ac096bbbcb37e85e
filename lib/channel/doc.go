// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package channel is the dashboard's persistent websocket connection
// to the orchestrator authority.
//
// A [Channel] dials the authority, negotiates the frame encoding via
// websocket subprotocol, and then runs two pumps per connection: the
// read pump decodes server frames into complete [mirror.Document]
// values and hands each to the registered state handler; the write
// pump drains a bounded queue of outbound request frames and sends
// keepalive pings. When a connection ends the channel reconnects with
// exponential backoff until it is closed.
//
// Outbound commands are fire-and-forget. [Channel.Send] never blocks:
// while disconnected, or when the queue is full, the command is
// dropped and logged. Results of a command arrive, if at all, as a
// later state frame.
//
// Incremental "patch" frames are applied to the connection's own copy
// of the last snapshot, so the handler only ever receives whole
// documents. A reconnect discards that copy and waits for a fresh
// snapshot; what the handler last received is left alone.
package channel
