// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboardui

import (
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var fuzzyInitOnce sync.Once

// Filter narrows the table to components whose name fuzzy-matches the
// query, the way fzf matches file names.
type Filter struct {
	// Input is the query text.
	Input string

	// Active is true while the query has keyboard focus.
	Active bool

	slab *util.Slab
}

func newFilter() Filter {
	return Filter{slab: util.MakeSlab(16*1024, 2048)}
}

// Matches reports whether name matches the query. An empty query
// matches everything. Matching ignores case.
func (filter *Filter) Matches(name string) bool {
	if filter.Input == "" {
		return true
	}
	fuzzyInitOnce.Do(func() { algo.Init("default") })
	chars := util.ToChars([]byte(name))
	pattern := []rune(strings.ToLower(filter.Input))
	result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, filter.slab)
	return result.Start >= 0
}

// HandleRune appends a typed character.
func (filter *Filter) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character. It reports whether the
// query changed.
func (filter *Filter) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the query and releases focus.
func (filter *Filter) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter line, "" when there is no query and no
// focus.
func (filter *Filter) View(model Model) string {
	switch {
	case filter.Active:
		cursor := model.style(model.theme.HeaderForeground).Bold(true).Render("▎")
		return model.style(model.theme.NormalText).Render("/ "+filter.Input) + cursor
	case filter.Input != "":
		return model.style(model.theme.FaintText).Render("filter: " + filter.Input)
	}
	return ""
}
