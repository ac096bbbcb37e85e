// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"fmt"
	"math"
)

// Status is the remote lifecycle state of a component. The wire form
// is the upper-case name.
type Status string

const (
	StatusStopped  Status = "STOPPED"
	StatusDelayed  Status = "DELAYED"
	StatusStarting Status = "STARTING"
	StatusRunning  Status = "RUNNING"
	StatusStopping Status = "STOPPING"
)

// Statuses lists every status in declaration order.
func Statuses() []Status {
	return []Status{StatusStopped, StatusDelayed, StatusStarting, StatusRunning, StatusStopping}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusStopped, StatusDelayed, StatusStarting, StatusRunning, StatusStopping:
		return true
	}
	return false
}

// Component is one supervised component as reported by the authority.
type Component struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Delay  float64 `json:"delay"`
	Revive bool    `json:"revive"`
	Status Status  `json:"status"`
}

// Validate checks the fields the dashboard relies on.
func (c Component) Validate() error {
	if math.IsNaN(c.Delay) || math.IsInf(c.Delay, 0) || c.Delay < 0 {
		return fmt.Errorf("component %d: invalid delay %v", c.ID, c.Delay)
	}
	if !c.Status.Valid() {
		return fmt.Errorf("component %d: unknown status %q", c.ID, c.Status)
	}
	return nil
}
