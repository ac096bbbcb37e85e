// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package simulate runs fake supervised components that move through
// the orchestrator's status lifecycle on timers, without processes.
//
// Each component starts DELAYED when it has a delay and STOPPED
// otherwise. A delayed component launches itself when the delay
// expires (if it auto-starts) unless a stop arrived first; a start
// during the delay launches it early. Starting takes StartDelay in
// STARTING before RUNNING; stopping takes StopDelay in STOPPING before
// STOPPED. A component with revive set relaunches whenever it reaches
// STOPPED, including after a stop request, and turning revive on
// starts a component that is not DELAYED.
//
// [Controller.Fail] simulates the process exiting on its own.
package simulate
