// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package vtree

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// TextTag is the tag of text nodes.
const TextTag = "#text"

// EventType names a UI event.
type EventType string

const (
	Click  EventType = "click"
	Change EventType = "change"
)

// Action is an event binding: what to do, and to which target.
type Action struct {
	Name   string
	Target int
}

// Prop is one element property. Values are string, bool, int, or
// float64.
type Prop struct {
	Name  string
	Value any
}

// Node is an immutable UI tree node.
type Node struct {
	tag      string
	classes  []string
	key      string
	text     string
	props    []Prop
	on       map[EventType]Action
	children []*Node
}

// Part is an argument to [H].
type Part interface {
	apply(*Node)
}

// Props sets element properties.
type Props map[string]any

// On sets event bindings.
type On map[EventType]Action

// Key identifies a node among its siblings across renders.
type Key string

// Text adds a text child.
type Text string

// Children adds several children at once.
type Children []*Node

func (p Props) apply(n *Node) {
	for name, value := range p {
		switch value.(type) {
		case string, bool, int, float64:
		default:
			panic(fmt.Sprintf("vtree: property %q has unsupported type %T", name, value))
		}
		index := slices.IndexFunc(n.props, func(prop Prop) bool { return prop.Name == name })
		if index >= 0 {
			n.props[index].Value = value
			continue
		}
		n.props = append(n.props, Prop{Name: name, Value: value})
	}
}

func (o On) apply(n *Node) {
	if n.on == nil {
		n.on = make(map[EventType]Action, len(o))
	}
	maps.Copy(n.on, o)
}

func (k Key) apply(n *Node) { n.key = string(k) }

func (t Text) apply(n *Node) { n.children = append(n.children, NewText(string(t))) }

func (c Children) apply(n *Node) {
	for _, child := range c {
		if child != nil {
			n.children = append(n.children, child)
		}
	}
}

func (child *Node) apply(n *Node) {
	if child != nil {
		n.children = append(n.children, child)
	}
}

// H builds an element from a selector of the form "tag.class1.class2"
// and any number of parts.
//
//	H("td.col-revive", H("input", Props{"type": "checkbox"}))
func H(selector string, parts ...Part) *Node {
	segments := strings.Split(selector, ".")
	node := &Node{tag: segments[0]}
	for _, class := range segments[1:] {
		if class != "" {
			node.classes = append(node.classes, class)
		}
	}
	for _, part := range parts {
		if part != nil {
			part.apply(node)
		}
	}
	sort.Slice(node.props, func(i, j int) bool { return node.props[i].Name < node.props[j].Name })
	return node
}

// NewText builds a text node.
func NewText(text string) *Node {
	return &Node{tag: TextTag, text: text}
}

func (n *Node) Tag() string       { return n.tag }
func (n *Node) Key() string       { return n.key }
func (n *Node) IsText() bool      { return n.tag == TextTag }
func (n *Node) Text() string      { return n.text }
func (n *Node) Len() int          { return len(n.children) }
func (n *Node) Child(i int) *Node { return n.children[i] }

// Classes returns a copy of the class list.
func (n *Node) Classes() []string { return slices.Clone(n.classes) }

// HasClass reports whether the class list contains class.
func (n *Node) HasClass(class string) bool { return slices.Contains(n.classes, class) }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Props returns the properties sorted by name.
func (n *Node) Props() []Prop { return slices.Clone(n.props) }

// Prop looks up one property.
func (n *Node) Prop(name string) (any, bool) {
	for _, prop := range n.props {
		if prop.Name == name {
			return prop.Value, true
		}
	}
	return nil, false
}

// BoolProp returns a boolean property, false when absent or not a
// bool.
func (n *Node) BoolProp(name string) bool {
	value, _ := n.Prop(name)
	b, _ := value.(bool)
	return b
}

// StringProp returns a string property, "" when absent or not a
// string.
func (n *Node) StringProp(name string) string {
	value, _ := n.Prop(name)
	s, _ := value.(string)
	return s
}

// Binding returns the action bound to an event.
func (n *Node) Binding(event EventType) (Action, bool) {
	action, ok := n.on[event]
	return action, ok
}

// Bindings returns a copy of all bindings.
func (n *Node) Bindings() map[EventType]Action { return maps.Clone(n.on) }

// TextContent concatenates the text of all descendant text nodes.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.text
	}
	var builder strings.Builder
	for _, child := range n.children {
		builder.WriteString(child.TextContent())
	}
	return builder.String()
}

// Equal reports whether two trees are structurally equal, bindings
// included.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.tag != b.tag || a.key != b.key || a.text != b.text ||
		!slices.Equal(a.classes, b.classes) ||
		!slices.Equal(a.props, b.props) ||
		!maps.Equal(a.on, b.on) ||
		len(a.children) != len(b.children) {
		return false
	}
	for i := range a.children {
		if !Equal(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}

// Format renders a tree as compact markup, for logs and tests:
//
//	<td class="col-status">RUNNING</td>
func Format(n *Node) string {
	if n == nil {
		return ""
	}
	var builder strings.Builder
	format(&builder, n)
	return builder.String()
}

func format(builder *strings.Builder, n *Node) {
	if n.IsText() {
		builder.WriteString(n.text)
		return
	}
	builder.WriteString("<" + n.tag)
	if len(n.classes) > 0 {
		fmt.Fprintf(builder, " class=%q", strings.Join(n.classes, " "))
	}
	if n.key != "" {
		fmt.Fprintf(builder, " key=%q", n.key)
	}
	for _, prop := range n.props {
		fmt.Fprintf(builder, " %s=%q", prop.Name, fmt.Sprint(prop.Value))
	}
	events := slices.Sorted(maps.Keys(n.on))
	for _, event := range events {
		action := n.on[event]
		fmt.Fprintf(builder, " on%s=\"%s(%d)\"", event, action.Name, action.Target)
	}
	builder.WriteString(">")
	for _, child := range n.children {
		format(builder, child)
	}
	builder.WriteString("</" + n.tag + ">")
}
