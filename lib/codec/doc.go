// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the two wire encodings spoken between the
// dashboard and the orchestrator authority:
//
//   - [JSON]: text websocket frames, encoded with json-iterator in
//     standard-library-compatible mode.
//   - [CBOR]: binary websocket frames, Core Deterministic Encoding
//     (RFC 8949 §4.2) via fxamacker/cbor.
//
// Wire types carry only `json` struct tags. fxamacker/cbor falls back
// to `json` tags when `cbor` tags are absent, so one tag set names the
// fields for both encodings.
//
// The encoding is negotiated per connection through the websocket
// subprotocol (see [Codec.Subprotocol]).
package codec
