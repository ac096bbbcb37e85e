// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package mirror

import "fmt"

// Document is an immutable ordered set of components keyed by ID.
type Document struct {
	components []Component
	index      map[int]int
}

// NewDocument builds a document from components in the given order.
// Duplicate IDs and invalid components are rejected.
func NewDocument(components ...Component) (*Document, error) {
	document := &Document{
		components: make([]Component, 0, len(components)),
		index:      make(map[int]int, len(components)),
	}
	for _, component := range components {
		if err := component.Validate(); err != nil {
			return nil, err
		}
		if _, exists := document.index[component.ID]; exists {
			return nil, fmt.Errorf("duplicate component id %d", component.ID)
		}
		document.index[component.ID] = len(document.components)
		document.components = append(document.components, component)
	}
	return document, nil
}

// Len returns the number of components. Zero for a nil document.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.components)
}

// Components returns a copy of the components in document order.
func (d *Document) Components() []Component {
	if d == nil {
		return nil
	}
	result := make([]Component, len(d.components))
	copy(result, d.components)
	return result
}

// Component looks up a component by ID.
func (d *Document) Component(id int) (Component, bool) {
	if d == nil {
		return Component{}, false
	}
	position, ok := d.index[id]
	if !ok {
		return Component{}, false
	}
	return d.components[position], true
}

// IDs returns component IDs in document order.
func (d *Document) IDs() []int {
	if d == nil {
		return nil
	}
	ids := make([]int, len(d.components))
	for position, component := range d.components {
		ids[position] = component.ID
	}
	return ids
}

// Equal reports structural equality: same components, same order.
// Two nil documents are equal; nil never equals a non-nil document,
// even an empty one.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == nil && other == nil
	}
	if len(d.components) != len(other.components) {
		return false
	}
	for position := range d.components {
		if d.components[position] != other.components[position] {
			return false
		}
	}
	return true
}

// Apply returns a new document with removals applied first and then
// upserts: an existing ID keeps its position, a new ID is appended.
// Removing an unknown ID is an error, as is any invalid result. The
// receiver is unchanged either way.
func (d *Document) Apply(put []Component, remove []int) (*Document, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot patch an absent document")
	}

	removed := make(map[int]bool, len(remove))
	for _, id := range remove {
		if _, ok := d.index[id]; !ok {
			return nil, fmt.Errorf("remove of unknown component id %d", id)
		}
		removed[id] = true
	}

	next := make([]Component, 0, len(d.components)+len(put))
	for _, component := range d.components {
		if !removed[component.ID] {
			next = append(next, component)
		}
	}

	positions := make(map[int]int, len(next))
	for position, component := range next {
		positions[component.ID] = position
	}
	for _, component := range put {
		if position, ok := positions[component.ID]; ok {
			next[position] = component
			continue
		}
		positions[component.ID] = len(next)
		next = append(next, component)
	}

	return NewDocument(next...)
}
