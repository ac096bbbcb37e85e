// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboardui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/orchdash/orchdash/lib/channel"
	"github.com/orchdash/orchdash/lib/mirror"
)

// Theme defines the colors of the dashboard. All colors are ANSI
// 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	StatusStopped  lipgloss.Color
	StatusDelayed  lipgloss.Color
	StatusStarting lipgloss.Color
	StatusRunning  lipgloss.Color
	StatusStopping lipgloss.Color

	HeaderForeground lipgloss.Color
	HelpText         lipgloss.Color

	Connected    lipgloss.Color
	Disconnected lipgloss.Color

	WarnText  lipgloss.Color
	ErrorText lipgloss.Color
}

// StatusColor returns the color for a component status, FaintText for
// unknown values.
func (theme Theme) StatusColor(status string) lipgloss.Color {
	switch mirror.Status(status) {
	case mirror.StatusStopped:
		return theme.StatusStopped
	case mirror.StatusDelayed:
		return theme.StatusDelayed
	case mirror.StatusStarting:
		return theme.StatusStarting
	case mirror.StatusRunning:
		return theme.StatusRunning
	case mirror.StatusStopping:
		return theme.StatusStopping
	default:
		return theme.FaintText
	}
}

// ConnStateColor returns the color of the connection indicator.
func (theme Theme) ConnStateColor(state channel.ConnState) lipgloss.Color {
	if state == channel.StateConnected {
		return theme.Connected
	}
	return theme.Disconnected
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusStopped:  lipgloss.Color("245"), // gray
	StatusDelayed:  lipgloss.Color("141"), // light purple
	StatusStarting: lipgloss.Color("220"), // amber
	StatusRunning:  lipgloss.Color("114"), // green
	StatusStopping: lipgloss.Color("208"), // orange

	HeaderForeground: lipgloss.Color("255"),
	HelpText:         lipgloss.Color("241"),

	Connected:    lipgloss.Color("114"),
	Disconnected: lipgloss.Color("196"),

	WarnText:  lipgloss.Color("220"),
	ErrorText: lipgloss.Color("196"),
}
