// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"strconv"

	"github.com/orchdash/orchdash/lib/mirror"
	"github.com/orchdash/orchdash/lib/store"
	"github.com/orchdash/orchdash/lib/vtree"
	"github.com/orchdash/orchdash/lib/wire"
)

// Column classes, in display order.
var Columns = []struct {
	Class string
	Title string
}{
	{"col-component", "Component"},
	{"col-delay", "Delay"},
	{"col-revive", "Revive"},
	{"col-status", "Status"},
	{"col-action", "Action"},
}

// Control identifies an interactive element within a row.
type Control int

const (
	ControlRevive Control = iota
	ControlStop
	ControlStart
)

// ControlPath returns the surface path of a control in the given
// table row.
func ControlPath(row int, control Control) []int {
	// div.orchestrator > table > tbody > tr > td > control
	switch control {
	case ControlRevive:
		return []int{0, 1, row, 2, 0}
	case ControlStop:
		return []int{0, 1, row, 4, 0}
	default:
		return []int{0, 1, row, 4, 1}
	}
}

// RowsPath is the surface path of the tbody element.
var RowsPath = []int{0, 1}

// StopDisabled reports whether the Stop button is disabled for status.
func StopDisabled(status mirror.Status) bool {
	return status == mirror.StatusStopping || status == mirror.StatusStopped
}

// StartDisabled reports whether the Start button is disabled for
// status.
func StartDisabled(status mirror.Status) bool {
	return status == mirror.StatusStarting || status == mirror.StatusRunning || status == mirror.StatusStopping
}

// BuildTree renders the component table. With no snapshot yet the
// result is an empty div.orchestrator.
func BuildTree(view *store.View) *vtree.Node {
	if !view.Present() {
		return vtree.H("div.orchestrator")
	}

	var header vtree.Children
	for _, column := range Columns {
		header = append(header, vtree.H("th."+column.Class, vtree.Text(column.Title)))
	}

	var rows vtree.Children
	for _, component := range view.Components() {
		rows = append(rows, buildRow(component))
	}

	return vtree.H("div.orchestrator",
		vtree.H("table",
			vtree.H("thead", vtree.H("tr", header)),
			vtree.H("tbody", rows),
		),
	)
}

func buildRow(component mirror.Component) *vtree.Node {
	id := component.ID
	return vtree.H("tr", vtree.Key(strconv.Itoa(id)),
		vtree.H("td.col-component", vtree.Text(component.Name)),
		vtree.H("td.col-delay", vtree.Text(FormatDelay(component.Delay))),
		vtree.H("td.col-revive",
			vtree.H("input",
				vtree.Props{"type": "checkbox", "checked": component.Revive},
				vtree.On{vtree.Change: {Name: wire.CommandRevive, Target: id}},
			),
		),
		vtree.H("td.col-status", vtree.Text(string(component.Status))),
		vtree.H("td.col-action",
			vtree.H("button",
				vtree.Props{"title": "Stop", "disabled": StopDisabled(component.Status)},
				vtree.On{vtree.Click: {Name: wire.CommandStop, Target: id}},
				vtree.H("span.fa.fa-times"),
			),
			vtree.H("button",
				vtree.Props{"title": "Start", "disabled": StartDisabled(component.Status)},
				vtree.On{vtree.Click: {Name: wire.CommandStart, Target: id}},
				vtree.H("span.fa.fa-play"),
			),
		),
	)
}

// FormatDelay renders a delay in seconds with the shortest exact
// decimal form: 0, 1.5, 30.
func FormatDelay(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
