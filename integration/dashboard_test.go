// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package integration_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orchdash/orchdash/lib/authority"
	"github.com/orchdash/orchdash/lib/channel"
	"github.com/orchdash/orchdash/lib/clock"
	"github.com/orchdash/orchdash/lib/codec"
	"github.com/orchdash/orchdash/lib/dashboard"
	"github.com/orchdash/orchdash/lib/mirror"
	"github.com/orchdash/orchdash/lib/simulate"
	"github.com/orchdash/orchdash/lib/surface"
	"github.com/orchdash/orchdash/lib/testutil"
	"github.com/orchdash/orchdash/lib/vtree"
)

const timeout = 5 * time.Second

// stack is an authority over a simulated controller, reached through
// a real listener, plus a dashboard connected to it.
type stack struct {
	simClock   *clock.FakeClock
	netClock   *clock.FakeClock
	controller *simulate.Controller
	server     *authority.Server
	handler    atomic.Pointer[http.Handler]
	httpServer *httptest.Server

	channel   *channel.Channel
	app       *dashboard.App
	documents chan *mirror.Document
	states    chan channel.ConnState
}

func newStack(t *testing.T, frameCodec codec.Codec, specs ...simulate.Spec) *stack {
	t.Helper()
	s := &stack{
		simClock:  clock.Fake(time.Unix(1_700_000_000, 0)),
		netClock:  clock.Fake(time.Unix(1_700_000_000, 0)),
		documents: make(chan *mirror.Document, 256),
		states:    make(chan channel.ConnState, 16),
	}

	s.controller = simulate.New(specs, s.simClock, nil)
	t.Cleanup(s.controller.Close)
	s.serve(t)
	s.controller.Launch()

	s.httpServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		(*s.handler.Load()).ServeHTTP(w, r)
	}))
	t.Cleanup(s.httpServer.Close)

	s.channel = channel.New(channel.Config{
		URL:   "ws" + strings.TrimPrefix(s.httpServer.URL, "http") + "/ws",
		Codec: frameCodec,
		Clock: s.netClock,
	}, nil)
	s.channel.OnState(func(document *mirror.Document) { s.documents <- document })
	s.channel.OnConnState(func(state channel.ConnState) { s.states <- state })

	s.app = dashboard.NewApp(s.channel, nil)
	t.Cleanup(s.app.Close)

	if err := s.channel.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(s.channel.Close)
	return s
}

// serve installs a fresh authority in front of the controller.
func (s *stack) serve(t *testing.T) {
	t.Helper()
	s.server = authority.New(authority.Config{}, s.controller, nil)
	t.Cleanup(s.server.Close)
	s.controller.OnChange(s.server.Changed)
	handler := s.server.Handler()
	s.handler.Store(&handler)
}

// waitFor applies received documents to the app until match accepts
// one.
func (s *stack) waitFor(t *testing.T, description string, match func(*mirror.Document) bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			t.Fatalf("timed out waiting for %s", description)
		}
		document := testutil.RequireReceive(t, s.documents, remaining, description)
		s.app.ApplyState(document)
		if match(document) {
			return
		}
	}
}

func statusIs(id int, status mirror.Status) func(*mirror.Document) bool {
	return func(document *mirror.Document) bool {
		component, ok := document.Component(id)
		return ok && component.Status == status
	}
}

func (s *stack) click(t *testing.T, row int, control dashboard.Control) bool {
	t.Helper()
	delivered, err := s.app.Activate(dashboard.ControlPath(row, control), surface.Event{Type: vtree.Click})
	if err != nil {
		t.Fatalf("Activate(row %d): %v", row, err)
	}
	return delivered
}

func (s *stack) cell(t *testing.T, row, column int) string {
	t.Helper()
	element, err := s.app.Surface().Lookup([]int{0, 1, row, column})
	if err != nil {
		t.Fatalf("Lookup(row %d, column %d): %v", row, column, err)
	}
	return element.TextContent()
}

func TestDashboardControlsSimulatedComponents(t *testing.T) {
	for _, frameCodec := range []codec.Codec{codec.JSON, codec.CBOR} {
		t.Run(frameCodec.Name(), func(t *testing.T) {
			s := newStack(t, frameCodec,
				simulate.Spec{Name: "event", AutoStart: true, StartDelay: -1},
				simulate.Spec{Name: "gateway", Delay: 5, AutoStart: true},
				simulate.Spec{Name: "monitor"},
			)

			s.waitFor(t, "initial snapshot", statusIs(0, mirror.StatusRunning))
			if got := s.cell(t, 1, 0); got != "gateway" {
				t.Errorf("row 1 name = %q, want gateway", got)
			}
			if got := s.cell(t, 1, 3); got != "DELAYED" {
				t.Errorf("row 1 status = %q, want DELAYED", got)
			}
			if got := s.cell(t, 1, 1); got != "5" {
				t.Errorf("row 1 delay = %q, want 5", got)
			}

			// Start on a running component is disabled and sends
			// nothing; stop goes through the authority.
			if s.click(t, 0, dashboard.ControlStart) {
				t.Error("start on a RUNNING component reached the dispatcher")
			}
			if !s.click(t, 0, dashboard.ControlStop) {
				t.Fatal("stop on a RUNNING component was dropped")
			}
			s.waitFor(t, "event stopped", statusIs(0, mirror.StatusStopped))
			if got := s.cell(t, 0, 3); got != "STOPPED" {
				t.Errorf("row 0 status = %q after stop", got)
			}

			// Revive on a stopped component starts it.
			checkbox, err := s.app.Surface().Lookup(dashboard.ControlPath(2, dashboard.ControlRevive))
			if err != nil {
				t.Fatal(err)
			}
			if checkbox.BoolProp("checked") {
				t.Fatal("monitor revive should start unchecked")
			}
			if _, err := s.app.Activate(dashboard.ControlPath(2, dashboard.ControlRevive),
				surface.Event{Type: vtree.Change, Checked: true}); err != nil {
				t.Fatal(err)
			}
			s.waitFor(t, "monitor starting", statusIs(2, mirror.StatusStarting))
			s.simClock.Advance(simulate.DefaultStartDelay)
			s.waitFor(t, "monitor running", statusIs(2, mirror.StatusRunning))

			if err := s.controller.Fail(2); err != nil {
				t.Fatal(err)
			}
			s.waitFor(t, "monitor revived after failure", statusIs(2, mirror.StatusStarting))

			// The delayed component launches itself five seconds
			// after launch; one has passed.
			s.simClock.Advance(4 * time.Second)
			s.waitFor(t, "gateway starting", statusIs(1, mirror.StatusStarting))
			s.simClock.Advance(simulate.DefaultStartDelay)
			s.waitFor(t, "gateway running", statusIs(1, mirror.StatusRunning))
		})
	}
}

func TestDashboardKeepsMirrorAcrossReconnect(t *testing.T) {
	s := newStack(t, codec.JSON,
		simulate.Spec{Name: "event", AutoStart: true, StartDelay: -1},
	)
	s.waitFor(t, "initial snapshot", statusIs(0, mirror.StatusRunning))
	if state := testutil.RequireReceive(t, s.states, timeout, "connecting"); state != channel.StateConnecting {
		t.Fatalf("first state = %s", state)
	}
	if state := testutil.RequireReceive(t, s.states, timeout, "connected"); state != channel.StateConnected {
		t.Fatalf("second state = %s", state)
	}

	// Replace the authority: the old one drops its clients and the
	// dashboard retries against the new one after its backoff.
	previous := s.server
	s.serve(t)
	if err := s.controller.Stop(0); err != nil {
		t.Fatal(err)
	}
	previous.Close()

	if state := testutil.RequireReceive(t, s.states, timeout, "disconnect"); state != channel.StateConnecting {
		t.Fatalf("state after disconnect = %s", state)
	}
	testutil.RequireNothing(t, s.documents, 50*time.Millisecond, "no document while disconnected")
	if s.app.Document() == nil || s.cell(t, 0, 3) != "RUNNING" {
		t.Fatal("mirror must survive the disconnect unchanged")
	}
	if s.click(t, 0, dashboard.ControlStart) {
		t.Error("start stays disabled while the mirror says RUNNING")
	}

	s.netClock.WaitForTimers(1)
	s.netClock.Advance(time.Second)
	s.waitFor(t, "fresh snapshot after reconnect", statusIs(0, mirror.StatusStopped))
	if s.channel.Connections() != 2 {
		t.Errorf("Connections() = %d, want 2", s.channel.Connections())
	}
}
