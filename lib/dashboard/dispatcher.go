// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"fmt"
	"log/slog"

	"github.com/orchdash/orchdash/lib/surface"
	"github.com/orchdash/orchdash/lib/vtree"
	"github.com/orchdash/orchdash/lib/wire"
)

// Sender delivers commands to the authority without waiting.
// The channel package's Channel is the production implementation.
type Sender interface {
	Send(command wire.Command)
}

// Dispatcher turns user intents into outbound commands. It does no
// legality checks of its own; the authority decides.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher sending through sender.
func NewDispatcher(sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{sender: sender, logger: logger}
}

func (d *Dispatcher) Start(id int)              { d.send(wire.Start{ID: id}) }
func (d *Dispatcher) Stop(id int)               { d.send(wire.Stop{ID: id}) }
func (d *Dispatcher) Revive(id int, value bool) { d.send(wire.Revive{ID: id, Value: value}) }

func (d *Dispatcher) send(command wire.Command) {
	d.logger.Debug("dispatching command",
		"command", command.Name(),
		"component_id", command.Payload().ID,
	)
	d.sender.Send(command)
}

// HandleGesture validates a gesture from the surface and dispatches
// the command it names. start and stop need a click; revive needs a
// change and takes the checkbox's new value.
func (d *Dispatcher) HandleGesture(gesture surface.Gesture) error {
	action := gesture.Action
	switch action.Name {
	case wire.CommandStart, wire.CommandStop:
		if gesture.Event.Type != vtree.Click {
			return fmt.Errorf("%s on component %d needs a click, got %s", action.Name, action.Target, gesture.Event.Type)
		}
		if action.Name == wire.CommandStart {
			d.Start(action.Target)
		} else {
			d.Stop(action.Target)
		}
		return nil
	case wire.CommandRevive:
		if gesture.Event.Type != vtree.Change {
			return fmt.Errorf("revive on component %d needs a change, got %s", action.Target, gesture.Event.Type)
		}
		d.Revive(action.Target, gesture.Event.Checked)
		return nil
	}
	return fmt.Errorf("unknown action %q", action.Name)
}
