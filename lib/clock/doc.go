// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that reconnect
// backoff, broadcast coalescing, and simulated component timers can be
// driven deterministically in tests.
//
// Production code holds a Clock and calls Real(). Tests use Fake():
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go loop(c)
//	c.WaitForTimers(1)         // loop has registered its timer
//	c.Advance(2 * time.Second) // fire it
package clock
