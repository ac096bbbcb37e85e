// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds test helpers shared across orchdash packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests waiting on goroutines never hang forever and never
// sprinkle time.After through test bodies.
//
// All helpers fail the test via Fatalf instead of returning errors.
package testutil
