// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package authority serves component state to dashboards over
// websocket and applies their requests to a [Controller].
//
// Every client receives a full snapshot as soon as it connects. After
// that, the server broadcasts a new snapshot whenever the controller
// reports a change, coalescing bursts of changes over FlushDelay and
// skipping a broadcast whose content is identical to the last one.
// Requests are fire-and-forget: a start, stop, or revive is applied to
// the controller and its effect reaches the client, like every other
// client, as a later snapshot. Invalid requests are answered with an
// error frame and the connection stays open.
//
// Routes:
//
//	GET <endpoint>  websocket (default /ws)
//	GET /state      current snapshot as JSON
//	GET /healthz    "ok"
package authority
