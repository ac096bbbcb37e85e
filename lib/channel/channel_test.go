// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package channel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/orchdash/orchdash/lib/clock"
	"github.com/orchdash/orchdash/lib/codec"
	"github.com/orchdash/orchdash/lib/mirror"
	"github.com/orchdash/orchdash/lib/testutil"
	"github.com/orchdash/orchdash/lib/wire"
)

const timeout = 5 * time.Second

// testAuthority is a scripted websocket server. Each accepted
// connection is handed to the test through conns.
type testAuthority struct {
	server *httptest.Server
	conns  chan *serverConn
}

type serverConn struct {
	conn  *websocket.Conn
	codec codec.Codec
}

func newTestAuthority(t *testing.T) *testAuthority {
	t.Helper()
	authority := &testAuthority{conns: make(chan *serverConn, 4)}
	upgrader := websocket.Upgrader{Subprotocols: codec.Subprotocols()}
	authority.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		selected, ok := codec.BySubprotocol(conn.Subprotocol())
		if !ok {
			conn.Close()
			return
		}
		authority.conns <- &serverConn{conn: conn, codec: selected}
	}))
	t.Cleanup(authority.server.Close)
	return authority
}

func (a *testAuthority) url() string {
	return "ws" + strings.TrimPrefix(a.server.URL, "http")
}

func (s *serverConn) send(t *testing.T, frame wire.ServerFrame) {
	t.Helper()
	data, err := s.codec.Marshal(frame)
	if err != nil {
		t.Fatalf("encoding frame: %v", err)
	}
	s.sendRaw(t, data)
}

func (s *serverConn) sendRaw(t *testing.T, data []byte) {
	t.Helper()
	messageType := websocket.TextMessage
	if s.codec.Binary() {
		messageType = websocket.BinaryMessage
	}
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		t.Fatalf("writing frame: %v", err)
	}
}

func (s *serverConn) receive(t *testing.T) wire.ClientFrame {
	t.Helper()
	s.conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		t.Fatalf("reading client frame: %v", err)
	}
	var frame wire.ClientFrame
	if err := s.codec.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decoding client frame: %v", err)
	}
	return frame
}

func openChannel(t *testing.T, config Config) (*Channel, <-chan *mirror.Document) {
	t.Helper()
	documents := make(chan *mirror.Document, 16)
	channel := New(config, nil)
	channel.OnState(func(document *mirror.Document) { documents <- document })
	if err := channel.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(channel.Close)
	return channel, documents
}

func components(t *testing.T, document *mirror.Document) []mirror.Component {
	t.Helper()
	if document == nil {
		t.Fatal("nil document delivered")
	}
	return document.Components()
}

func TestSnapshotAndPatch(t *testing.T) {
	for _, selected := range []codec.Codec{codec.JSON, codec.CBOR} {
		t.Run(selected.Name(), func(t *testing.T) {
			authority := newTestAuthority(t)
			_, documents := openChannel(t, Config{URL: authority.url(), Codec: selected})
			server := testutil.RequireReceive(t, authority.conns, timeout, "waiting for connection")
			if server.codec != selected {
				t.Fatalf("server negotiated %s, want %s", server.codec.Name(), selected.Name())
			}

			server.send(t, wire.ServerFrame{Type: wire.FrameState, Components: []mirror.Component{
				{ID: 0, Name: "web", Status: mirror.StatusRunning},
				{ID: 1, Name: "db", Delay: 1.5, Status: mirror.StatusDelayed},
			}})
			got := components(t, testutil.RequireReceive(t, documents, timeout, "waiting for snapshot"))
			if len(got) != 2 || got[1].Name != "db" || got[1].Delay != 1.5 {
				t.Fatalf("snapshot = %+v", got)
			}

			server.send(t, wire.ServerFrame{
				Type:   wire.FramePatch,
				Put:    []mirror.Component{{ID: 1, Name: "db", Delay: 1.5, Status: mirror.StatusStarting}},
				Remove: []int{0},
			})
			got = components(t, testutil.RequireReceive(t, documents, timeout, "waiting for patch"))
			if len(got) != 1 || got[0].ID != 1 || got[0].Status != mirror.StatusStarting {
				t.Fatalf("patched = %+v", got)
			}
		})
	}
}

func TestEmptySnapshotIsPresent(t *testing.T) {
	authority := newTestAuthority(t)
	_, documents := openChannel(t, Config{URL: authority.url()})
	server := testutil.RequireReceive(t, authority.conns, timeout, "waiting for connection")
	server.send(t, wire.ServerFrame{Type: wire.FrameState})
	document := testutil.RequireReceive(t, documents, timeout, "waiting for snapshot")
	if document == nil || document.Len() != 0 {
		t.Fatalf("document = %v, want an empty non-nil document", document)
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	authority := newTestAuthority(t)
	_, documents := openChannel(t, Config{URL: authority.url()})
	server := testutil.RequireReceive(t, authority.conns, timeout, "waiting for connection")

	server.sendRaw(t, []byte("{not json"))
	server.send(t, wire.ServerFrame{Type: wire.FramePatch, Put: []mirror.Component{{ID: 3, Status: mirror.StatusRunning}}})
	server.sendRaw(t, []byte(`{"type":"state","components":[{"id":0,"name":"x","delay":0,"revive":false,"status":"EXPLODED"}]}`))
	server.sendRaw(t, []byte(`{"type":"state","components":[{"id":0,"status":"RUNNING"},{"id":0,"status":"STOPPED"}]}`))
	server.send(t, wire.ServerFrame{Type: wire.FrameError, Message: "boom"})
	server.send(t, wire.ServerFrame{Type: "telemetry"})
	server.send(t, wire.ServerFrame{Type: wire.FrameState, Components: []mirror.Component{{ID: 7, Name: "ok", Status: mirror.StatusStopped}}})

	got := components(t, testutil.RequireReceive(t, documents, timeout, "waiting for the valid snapshot"))
	if len(got) != 1 || got[0].ID != 7 {
		t.Fatalf("first delivered document = %+v, want only the valid snapshot", got)
	}

	// A patch after a bad patch still applies to the last good snapshot.
	server.send(t, wire.ServerFrame{Type: wire.FramePatch, Remove: []int{42}})
	server.send(t, wire.ServerFrame{Type: wire.FramePatch, Put: []mirror.Component{{ID: 8, Name: "new", Status: mirror.StatusStopped}}})
	got = components(t, testutil.RequireReceive(t, documents, timeout, "waiting for patch"))
	if len(got) != 2 || got[0].ID != 7 || got[1].ID != 8 {
		t.Fatalf("patched = %+v", got)
	}
}

func TestSendReachesAuthority(t *testing.T) {
	for _, selected := range []codec.Codec{codec.JSON, codec.CBOR} {
		t.Run(selected.Name(), func(t *testing.T) {
			authority := newTestAuthority(t)
			channel, documents := openChannel(t, Config{URL: authority.url(), Codec: selected})
			server := testutil.RequireReceive(t, authority.conns, timeout, "waiting for connection")
			server.send(t, wire.ServerFrame{Type: wire.FrameState})
			testutil.RequireReceive(t, documents, timeout, "waiting for snapshot")

			channel.Send(wire.Stop{ID: 1})
			channel.Send(wire.Revive{ID: 2, Value: true})

			frame := server.receive(t)
			command, err := wire.ParseCommand(frame)
			if err != nil {
				t.Fatalf("ParseCommand: %v", err)
			}
			if command != (wire.Stop{ID: 1}) {
				t.Errorf("first command = %#v, want stop 1", command)
			}
			command, err = wire.ParseCommand(server.receive(t))
			if err != nil {
				t.Fatalf("ParseCommand: %v", err)
			}
			if command != (wire.Revive{ID: 2, Value: true}) {
				t.Errorf("second command = %#v, want revive 2 true", command)
			}
		})
	}
}

func TestSendWhileDisconnectedIsDropped(t *testing.T) {
	channel := New(Config{URL: "ws://127.0.0.1:1/ws"}, nil)
	channel.Send(wire.Start{ID: 0})
	if channel.State() != StateClosed {
		t.Errorf("State() = %s, want closed", channel.State())
	}
	channel.Close()
}

func TestOpenValidation(t *testing.T) {
	if err := New(Config{}, nil).Open(context.Background()); err == nil {
		t.Error("Open without a URL should fail")
	}
	authority := newTestAuthority(t)
	channel, _ := openChannel(t, Config{URL: authority.url()})
	if err := channel.Open(context.Background()); err == nil {
		t.Error("second Open should fail")
	}
}

func TestReconnectAfterDisconnect(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	authority := newTestAuthority(t)
	states := make(chan ConnState, 16)
	channel := New(Config{URL: authority.url(), Clock: fake}, nil)
	documents := make(chan *mirror.Document, 16)
	channel.OnState(func(document *mirror.Document) { documents <- document })
	channel.OnConnState(func(state ConnState) { states <- state })
	if err := channel.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(channel.Close)

	server := testutil.RequireReceive(t, authority.conns, timeout, "first connection")
	server.send(t, wire.ServerFrame{Type: wire.FrameState, Components: []mirror.Component{{ID: 0, Status: mirror.StatusRunning}}})
	testutil.RequireReceive(t, documents, timeout, "first snapshot")
	server.conn.Close()

	fake.WaitForTimers(1)
	if channel.State() != StateConnecting {
		t.Errorf("State() during backoff = %s, want connecting", channel.State())
	}
	channel.Send(wire.Start{ID: 0})
	fake.Advance(time.Second)

	server = testutil.RequireReceive(t, authority.conns, timeout, "second connection")
	// The first frame after a reconnect must be a fresh snapshot; a
	// patch against the previous connection's document is rejected.
	server.send(t, wire.ServerFrame{Type: wire.FramePatch, Put: []mirror.Component{{ID: 1, Status: mirror.StatusRunning}}})
	server.send(t, wire.ServerFrame{Type: wire.FrameState, Components: []mirror.Component{{ID: 5, Status: mirror.StatusStopped}}})
	got := components(t, testutil.RequireReceive(t, documents, timeout, "second snapshot"))
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("second snapshot = %+v", got)
	}
	if channel.Connections() != 2 {
		t.Errorf("Connections() = %d, want 2", channel.Connections())
	}

	var seen []ConnState
	for len(states) > 0 {
		seen = append(seen, <-states)
	}
	want := []ConnState{StateConnecting, StateConnected, StateConnecting, StateConnected}
	if len(seen) != len(want) {
		t.Fatalf("state transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("state transitions = %v, want %v", seen, want)
		}
	}
}

func TestBackoffDoublesUntilHandshake(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	attempts := make(chan struct{}, 16)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts <- struct{}{}
		http.Error(w, "not today", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	channel := New(Config{
		URL:            "ws" + strings.TrimPrefix(server.URL, "http"),
		Clock:          fake,
		InitialBackoff: time.Second,
		MaxBackoff:     4 * time.Second,
	}, nil)
	if err := channel.Open(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer channel.Close()

	testutil.RequireReceive(t, attempts, timeout, "attempt 1")
	fake.WaitForTimers(1)
	fake.Advance(time.Second)
	testutil.RequireReceive(t, attempts, timeout, "attempt 2 after 1s")

	fake.WaitForTimers(1)
	fake.Advance(time.Second + 999*time.Millisecond)
	if fake.PendingCount() != 1 {
		t.Fatal("second backoff fired before 2s")
	}
	fake.Advance(time.Millisecond)
	testutil.RequireReceive(t, attempts, timeout, "attempt 3 after 2s")

	fake.WaitForTimers(1)
	fake.Advance(4 * time.Second)
	testutil.RequireReceive(t, attempts, timeout, "attempt 4 after 4s")

	// Capped at MaxBackoff.
	fake.WaitForTimers(1)
	fake.Advance(4 * time.Second)
	testutil.RequireReceive(t, attempts, timeout, "attempt 5 after the 4s cap")
}

func TestCloseStopsLoop(t *testing.T) {
	authority := newTestAuthority(t)
	channel, _ := openChannel(t, Config{URL: authority.url()})
	testutil.RequireReceive(t, authority.conns, timeout, "connection")
	channel.Close()
	if channel.State() != StateClosed {
		t.Errorf("State() after Close = %s, want closed", channel.State())
	}
	channel.Close()
}

func TestIsExpectedClose(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"normal", &websocket.CloseError{Code: websocket.CloseNormalClosure}, true},
		{"going away", &websocket.CloseError{Code: websocket.CloseGoingAway}, true},
		{"abnormal", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, false},
		{"other", context.DeadlineExceeded, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsExpectedClose(test.err); got != test.want {
				t.Errorf("IsExpectedClose(%v) = %v, want %v", test.err, got, test.want)
			}
		})
	}
}
