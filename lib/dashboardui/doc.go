// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboardui is the terminal front end of the dashboard. It
// paints the live surface of a [dashboard.App] as a table and turns
// key presses into surface events on the selected row, so the
// keyboard goes through the same bindings a pointer would.
//
// Documents arrive through a [dashboard.Mailbox]; connection state
// and log records arrive as bubbletea messages sent from other
// goroutines.
package dashboardui
