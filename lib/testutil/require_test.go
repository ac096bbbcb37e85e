// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

type recordingT struct {
	failed  bool
	message string
}

func (r *recordingT) Helper() {}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.failed = true
	r.message = fmt.Sprintf(format, args...)
	panic(r)
}

func capture(fn func(t T)) (result *recordingT) {
	result = &recordingT{}
	defer func() {
		if recovered := recover(); recovered != nil && recovered != result {
			panic(recovered)
		}
	}()
	fn(result)
	return result
}

func TestRequireReceiveValue(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second); got != 7 {
		t.Fatalf("got %d, want 7", got)
	}
}

func TestRequireReceiveTimeout(t *testing.T) {
	ch := make(chan int)
	result := capture(func(rt T) { RequireReceive(rt, ch, 10*time.Millisecond, "waiting for %s", "x") })
	if !result.failed {
		t.Fatal("expected failure")
	}
	if result.message != "timed out after 10ms: waiting for x" {
		t.Fatalf("message = %q", result.message)
	}
}

func TestRequireReceiveClosed(t *testing.T) {
	ch := make(chan int)
	close(ch)
	result := capture(func(rt T) { RequireReceive(rt, ch, time.Second, "closed") })
	if !result.failed || result.message != "channel closed: closed" {
		t.Fatalf("result = %+v", result)
	}
}

func TestRequireClosed(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	RequireClosed(t, ch, time.Second)
}
