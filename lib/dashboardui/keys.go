// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboardui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the dashboard.
type KeyMap struct {
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// Row controls. Each one activates the matching element of the
	// selected row.
	Stop   key.Binding
	Start  key.Binding
	Revive key.Binding

	// Filter.
	FilterActivate key.Binding
	FilterClear    key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x", "s"),
		key.WithHelp("x", "stop"),
	),
	Start: key.NewBinding(
		key.WithKeys("enter", "p"),
		key.WithHelp("enter", "start"),
	),
	Revive: key.NewBinding(
		key.WithKeys("space", " ", "r"),
		key.WithHelp("space", "revive"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpLine renders the short help shown in the status bar.
func (keys KeyMap) helpLine() string {
	bindings := []key.Binding{keys.Up, keys.Down, keys.Stop, keys.Start, keys.Revive, keys.FilterActivate, keys.Help, keys.Quit}
	line := ""
	for index, binding := range bindings {
		if index > 0 {
			line += "  "
		}
		help := binding.Help()
		line += help.Key + " " + help.Desc
	}
	return line
}
