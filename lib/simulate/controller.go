// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package simulate

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/orchdash/orchdash/lib/clock"
	"github.com/orchdash/orchdash/lib/mirror"
)

// DefaultStartDelay is used when a Spec leaves StartDelay zero.
const DefaultStartDelay = time.Second

// Spec describes one simulated component.
type Spec struct {
	Name string

	// Delay in seconds before a delayed component launches itself.
	Delay float64

	Revive    bool
	AutoStart bool

	// StartDelay is the time spent STARTING, standing in for process
	// creation. There is no wait before STARTING. Zero means
	// DefaultStartDelay; use a negative value for an immediate start.
	StartDelay time.Duration

	// StopDelay is the time spent STOPPING. Zero stops immediately.
	StopDelay time.Duration
}

type component struct {
	spec   Spec
	status mirror.Status
	revive bool

	// wantStart records a start requested while STOPPING.
	wantStart bool

	timer      *clock.Timer
	generation uint64
}

// Controller owns a set of simulated components. Methods are safe for
// concurrent use.
type Controller struct {
	clock  clock.Clock
	logger *slog.Logger

	mu         sync.Mutex
	components []*component
	onChange   func()
	dirty      bool
	launched   bool
	closed     bool
}

// New creates a controller. Components get ids in spec order. Nothing
// moves until [Controller.Launch].
func New(specs []Spec, clk clock.Clock, logger *slog.Logger) *Controller {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	controller := &Controller{clock: clk, logger: logger}
	for _, spec := range specs {
		if spec.StartDelay == 0 {
			spec.StartDelay = DefaultStartDelay
		}
		status := mirror.StatusStopped
		if spec.Delay > 0 {
			status = mirror.StatusDelayed
		}
		controller.components = append(controller.components, &component{
			spec:   spec,
			status: status,
			revive: spec.Revive,
		})
	}
	return controller
}

// OnChange registers a callback invoked after any status or revive
// change. It runs without the controller's lock held and may call
// back into the controller.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Launch arms delay timers and starts auto-start components.
func (c *Controller) Launch() {
	c.update(func() error {
		if c.launched {
			return nil
		}
		c.launched = true
		for id, comp := range c.components {
			switch {
			case comp.status == mirror.StatusDelayed:
				c.schedule(id, comp, time.Duration(comp.spec.Delay*float64(time.Second)), c.delayExpired)
			case comp.spec.AutoStart || comp.revive:
				c.beginStart(id, comp)
			}
		}
		return nil
	})
}

// Close cancels all pending timers. Components freeze in place.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, comp := range c.components {
		c.cancelTimer(comp)
	}
}

// Len returns the number of components.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.components)
}

// Snapshot returns the current state of every component.
func (c *Controller) Snapshot() *mirror.Document {
	c.mu.Lock()
	components := make([]mirror.Component, len(c.components))
	for id, comp := range c.components {
		components[id] = mirror.Component{
			ID:     id,
			Name:   comp.spec.Name,
			Delay:  comp.spec.Delay,
			Revive: comp.revive,
			Status: comp.status,
		}
	}
	c.mu.Unlock()

	document, err := mirror.NewDocument(components...)
	if err != nil {
		// Ids are positions and statuses come from this package.
		panic(fmt.Sprintf("simulate: inconsistent snapshot: %v", err))
	}
	return document
}

// Start requests that a component run.
func (c *Controller) Start(id int) error {
	return c.update(func() error {
		comp, err := c.lookup(id)
		if err != nil {
			return err
		}
		c.logger.Info("start requested", "component_id", id, "status", comp.status)
		switch comp.status {
		case mirror.StatusStopped, mirror.StatusDelayed:
			c.beginStart(id, comp)
		case mirror.StatusStopping:
			comp.wantStart = true
		}
		return nil
	})
}

// Stop requests that a component stop.
func (c *Controller) Stop(id int) error {
	return c.update(func() error {
		comp, err := c.lookup(id)
		if err != nil {
			return err
		}
		c.logger.Info("stop requested", "component_id", id, "status", comp.status)
		comp.wantStart = false
		switch comp.status {
		case mirror.StatusDelayed:
			c.cancelTimer(comp)
			c.settle(id, comp)
		case mirror.StatusStarting, mirror.StatusRunning:
			c.beginStop(id, comp)
		}
		return nil
	})
}

// SetRevive changes a component's revive flag. Turning it on starts a
// component that is not DELAYED.
func (c *Controller) SetRevive(id int, value bool) error {
	return c.update(func() error {
		comp, err := c.lookup(id)
		if err != nil {
			return err
		}
		if comp.revive == value {
			return nil
		}
		comp.revive = value
		c.dirty = true
		c.logger.Info("revive changed", "component_id", id, "revive", value)
		if value {
			switch comp.status {
			case mirror.StatusStopped:
				c.beginStart(id, comp)
			case mirror.StatusStopping:
				comp.wantStart = true
			}
		}
		return nil
	})
}

// Fail simulates a running component's process exiting by itself.
func (c *Controller) Fail(id int) error {
	return c.update(func() error {
		comp, err := c.lookup(id)
		if err != nil {
			return err
		}
		if comp.status != mirror.StatusRunning {
			return fmt.Errorf("component %d is %s, not RUNNING", id, comp.status)
		}
		c.logger.Warn("component failed", "component_id", id)
		comp.wantStart = false
		c.beginStop(id, comp)
		return nil
	})
}

// update runs fn under the lock and fires the change callback if
// anything changed.
func (c *Controller) update(fn func() error) error {
	c.mu.Lock()
	err := fn()
	changed, onChange := c.dirty, c.onChange
	c.dirty = false
	c.mu.Unlock()
	if changed && onChange != nil {
		onChange()
	}
	return err
}

func (c *Controller) lookup(id int) (*component, error) {
	if id < 0 || id >= len(c.components) {
		return nil, fmt.Errorf("unknown component id %d", id)
	}
	return c.components[id], nil
}

func (c *Controller) setStatus(id int, comp *component, status mirror.Status) {
	if comp.status == status {
		return
	}
	c.logger.Debug("status change",
		"component_id", id,
		"name", comp.spec.Name,
		"from", comp.status,
		"to", status,
	)
	comp.status = status
	c.dirty = true
}

// schedule runs step after d with the lock held. A later transition
// on the same component invalidates it. Non-positive delays run step
// immediately.
func (c *Controller) schedule(id int, comp *component, d time.Duration, step func(int, *component)) {
	c.cancelTimer(comp)
	if d <= 0 {
		step(id, comp)
		return
	}
	generation := comp.generation
	comp.timer = c.clock.AfterFunc(d, func() {
		c.update(func() error {
			if c.closed || comp.generation != generation {
				return nil
			}
			comp.timer = nil
			step(id, comp)
			return nil
		})
	})
}

func (c *Controller) cancelTimer(comp *component) {
	comp.generation++
	if comp.timer != nil {
		comp.timer.Stop()
		comp.timer = nil
	}
}

func (c *Controller) delayExpired(id int, comp *component) {
	if comp.spec.AutoStart || comp.revive {
		c.beginStart(id, comp)
		return
	}
	c.setStatus(id, comp, mirror.StatusStopped)
}

func (c *Controller) beginStart(id int, comp *component) {
	c.setStatus(id, comp, mirror.StatusStarting)
	c.schedule(id, comp, comp.spec.StartDelay, func(id int, comp *component) {
		c.setStatus(id, comp, mirror.StatusRunning)
	})
}

func (c *Controller) beginStop(id int, comp *component) {
	c.setStatus(id, comp, mirror.StatusStopping)
	c.schedule(id, comp, comp.spec.StopDelay, c.settle)
}

// settle moves a component to STOPPED and relaunches it if a start is
// pending or revive is on.
func (c *Controller) settle(id int, comp *component) {
	c.setStatus(id, comp, mirror.StatusStopped)
	if comp.wantStart || comp.revive {
		comp.wantStart = false
		c.beginStart(id, comp)
	}
}
