// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package surface

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/orchdash/orchdash/lib/vtree"
)

// Element is one live node of a surface.
type Element struct {
	tag      string
	key      string
	text     string
	classes  []string
	props    map[string]any
	on       map[vtree.EventType]vtree.Action
	children []*Element
}

func build(node *vtree.Node) *Element {
	if node == nil {
		return nil
	}
	element := &Element{
		tag:     node.Tag(),
		key:     node.Key(),
		text:    node.Text(),
		classes: node.Classes(),
		props:   make(map[string]any),
		on:      node.Bindings(),
	}
	if element.on == nil {
		element.on = make(map[vtree.EventType]vtree.Action)
	}
	for _, prop := range node.Props() {
		element.props[prop.Name] = prop.Value
	}
	for _, child := range node.Children() {
		element.children = append(element.children, build(child))
	}
	return element
}

// snapshot converts the live element back to an immutable node.
func (e *Element) snapshot() *vtree.Node {
	if e.tag == vtree.TextTag {
		return vtree.NewText(e.text)
	}
	parts := []vtree.Part{vtree.Props(maps.Clone(e.props))}
	if e.key != "" {
		parts = append(parts, vtree.Key(e.key))
	}
	if len(e.on) > 0 {
		parts = append(parts, vtree.On(maps.Clone(e.on)))
	}
	for _, child := range e.children {
		parts = append(parts, child.snapshot())
	}
	selector := e.tag
	if len(e.classes) > 0 {
		selector += "." + strings.Join(e.classes, ".")
	}
	return vtree.H(selector, parts...)
}

func (e *Element) Tag() string                { return e.tag }
func (e *Element) Key() string                { return e.key }
func (e *Element) Text() string               { return e.text }
func (e *Element) IsText() bool               { return e.tag == vtree.TextTag }
func (e *Element) Len() int                   { return len(e.children) }
func (e *Element) Child(i int) *Element       { return e.children[i] }
func (e *Element) Classes() []string          { return slices.Clone(e.classes) }
func (e *Element) HasClass(class string) bool { return slices.Contains(e.classes, class) }

// Prop looks up a property.
func (e *Element) Prop(name string) (any, bool) {
	value, ok := e.props[name]
	return value, ok
}

// PropNames returns the property names in sorted order.
func (e *Element) PropNames() []string {
	names := make([]string, 0, len(e.props))
	for name := range e.props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BoolProp returns a boolean property, false when absent.
func (e *Element) BoolProp(name string) bool {
	b, _ := e.props[name].(bool)
	return b
}

// StringProp returns a string property, "" when absent.
func (e *Element) StringProp(name string) string {
	s, _ := e.props[name].(string)
	return s
}

// Disabled reports whether the element has disabled=true.
func (e *Element) Disabled() bool { return e.BoolProp("disabled") }

// Binding returns the action bound to an event.
func (e *Element) Binding(event vtree.EventType) (vtree.Action, bool) {
	action, ok := e.on[event]
	return action, ok
}

// TextContent concatenates the text of all descendant text elements.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.text
	}
	var builder strings.Builder
	for _, child := range e.children {
		builder.WriteString(child.TextContent())
	}
	return builder.String()
}
