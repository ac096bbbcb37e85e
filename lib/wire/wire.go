// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the frames exchanged between the dashboard and
// the orchestrator authority, and the three outbound commands.
//
// The authority pushes [ServerFrame] values: a full snapshot
// ("state") or an incremental change ("patch") that the client applies
// to its copy of the last snapshot. The client sends [ClientFrame]
// requests and never waits for a reply.
package wire

import (
	"fmt"

	"github.com/orchdash/orchdash/lib/mirror"
)

// Server frame types.
const (
	FrameState = "state"
	FramePatch = "patch"
	FrameError = "error"
)

// FrameRequest is the only client frame type.
const FrameRequest = "request"

// Command names.
const (
	CommandStart  = "start"
	CommandStop   = "stop"
	CommandRevive = "revive"
)

// ServerFrame is one authority → dashboard message.
type ServerFrame struct {
	Type string `json:"type"`

	// Components is the full component list of a "state" frame, in
	// presentation order. An empty or missing list is a snapshot of
	// zero components.
	Components []mirror.Component `json:"components,omitempty"`

	// Put and Remove carry a "patch" frame's changes.
	Put    []mirror.Component `json:"put,omitempty"`
	Remove []int              `json:"remove,omitempty"`

	// Message is set on "error" frames.
	Message string `json:"message,omitempty"`
}

// StateFrame builds a snapshot frame from a document.
func StateFrame(document *mirror.Document) ServerFrame {
	components := document.Components()
	if components == nil {
		components = []mirror.Component{}
	}
	return ServerFrame{Type: FrameState, Components: components}
}

// ClientFrame is one dashboard → authority message.
type ClientFrame struct {
	Type string      `json:"type"`
	Name string      `json:"name"`
	Data RequestData `json:"data"`
}

// RequestData is the payload shared by the three commands. Value is
// only meaningful for "revive", where it is required.
type RequestData struct {
	ID    int   `json:"id"`
	Value *bool `json:"value,omitempty"`
}

// Command is a typed outbound command.
type Command interface {
	// Name is the wire event name.
	Name() string

	// Payload is the wire data.
	Payload() RequestData
}

// Start asks the authority to start a component.
type Start struct{ ID int }

// Stop asks the authority to stop a component.
type Stop struct{ ID int }

// Revive asks the authority to change a component's revive flag.
type Revive struct {
	ID    int
	Value bool
}

func (Start) Name() string           { return CommandStart }
func (c Start) Payload() RequestData { return RequestData{ID: c.ID} }

func (Stop) Name() string           { return CommandStop }
func (c Stop) Payload() RequestData { return RequestData{ID: c.ID} }

func (Revive) Name() string { return CommandRevive }

func (c Revive) Payload() RequestData {
	value := c.Value
	return RequestData{ID: c.ID, Value: &value}
}

// Request wraps a command into a client frame.
func Request(command Command) ClientFrame {
	return ClientFrame{Type: FrameRequest, Name: command.Name(), Data: command.Payload()}
}

// ParseCommand validates a received client frame and returns the
// typed command it carries.
func ParseCommand(frame ClientFrame) (Command, error) {
	if frame.Type != FrameRequest {
		return nil, fmt.Errorf("unexpected frame type %q", frame.Type)
	}
	switch frame.Name {
	case CommandStart:
		return Start{ID: frame.Data.ID}, nil
	case CommandStop:
		return Stop{ID: frame.Data.ID}, nil
	case CommandRevive:
		if frame.Data.Value == nil {
			return nil, fmt.Errorf("revive request for component %d has no value", frame.Data.ID)
		}
		return Revive{ID: frame.Data.ID, Value: *frame.Data.Value}, nil
	}
	return nil, fmt.Errorf("unknown request %q", frame.Name)
}
