// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package vtree

import (
	"fmt"
	"maps"
	"slices"
)

// OpKind identifies a tree mutation.
type OpKind int

const (
	// OpReplace swaps the node at Path for Node. An empty Path
	// replaces the root.
	OpReplace OpKind = iota
	// OpInsert inserts Node as child Index of the node at Path.
	OpInsert
	// OpRemove removes child Index of the node at Path.
	OpRemove
	// OpMove moves child From of the node at Path to position Index.
	// Index is counted after the child has been taken out.
	OpMove
	OpSetProp
	OpRemoveProp
	OpSetClasses
	OpSetText
	OpBind
	OpUnbind
)

var opNames = [...]string{
	OpReplace:    "replace",
	OpInsert:     "insert",
	OpRemove:     "remove",
	OpMove:       "move",
	OpSetProp:    "set-prop",
	OpRemoveProp: "remove-prop",
	OpSetClasses: "set-classes",
	OpSetText:    "set-text",
	OpBind:       "bind",
	OpUnbind:     "unbind",
}

func (k OpKind) String() string {
	if k >= 0 && int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// Op is one mutation of a live tree. Path is a list of child indexes
// from the root and addresses the tree as it stands after every
// preceding op in the same list has been applied.
type Op struct {
	Kind    OpKind
	Path    []int
	Index   int
	From    int
	Node    *Node
	Name    string
	Value   any
	Classes []string
	Text    string
	Event   EventType
	Action  Action
}

func (op Op) String() string {
	switch op.Kind {
	case OpReplace:
		return fmt.Sprintf("replace %v %s", op.Path, Format(op.Node))
	case OpInsert:
		return fmt.Sprintf("insert %v[%d] %s", op.Path, op.Index, Format(op.Node))
	case OpRemove:
		return fmt.Sprintf("remove %v[%d]", op.Path, op.Index)
	case OpMove:
		return fmt.Sprintf("move %v[%d->%d]", op.Path, op.From, op.Index)
	case OpSetProp:
		return fmt.Sprintf("set-prop %v %s=%v", op.Path, op.Name, op.Value)
	case OpRemoveProp:
		return fmt.Sprintf("remove-prop %v %s", op.Path, op.Name)
	case OpSetClasses:
		return fmt.Sprintf("set-classes %v %v", op.Path, op.Classes)
	case OpSetText:
		return fmt.Sprintf("set-text %v %q", op.Path, op.Text)
	case OpBind:
		return fmt.Sprintf("bind %v %s=%s(%d)", op.Path, op.Event, op.Action.Name, op.Action.Target)
	case OpUnbind:
		return fmt.Sprintf("unbind %v %s", op.Path, op.Event)
	}
	return op.Kind.String()
}

// Diff returns the ops that turn a tree shaped like prev into one
// shaped like next. Equal trees yield no ops.
func Diff(prev, next *Node) []Op {
	var ops []Op
	switch {
	case prev == nil && next == nil:
	case prev == nil || next == nil:
		ops = append(ops, Op{Kind: OpReplace, Node: next})
	default:
		diffNode(&ops, nil, prev, next)
	}
	return ops
}

func diffNode(ops *[]Op, path []int, prev, next *Node) {
	if prev == next {
		return
	}
	if prev.tag != next.tag || prev.key != next.key {
		*ops = append(*ops, Op{Kind: OpReplace, Path: path, Node: next})
		return
	}
	if prev.IsText() {
		if prev.text != next.text {
			*ops = append(*ops, Op{Kind: OpSetText, Path: path, Text: next.text})
		}
		return
	}
	if !slices.Equal(prev.classes, next.classes) {
		*ops = append(*ops, Op{Kind: OpSetClasses, Path: path, Classes: slices.Clone(next.classes)})
	}
	diffProps(ops, path, prev, next)
	diffBindings(ops, path, prev, next)
	if keyed(prev.children) && keyed(next.children) {
		diffKeyedChildren(ops, path, prev.children, next.children)
	} else {
		diffIndexedChildren(ops, path, prev.children, next.children)
	}
}

func diffProps(ops *[]Op, path []int, prev, next *Node) {
	for _, prop := range next.props {
		old, ok := prev.Prop(prop.Name)
		if !ok || old != prop.Value {
			*ops = append(*ops, Op{Kind: OpSetProp, Path: path, Name: prop.Name, Value: prop.Value})
		}
	}
	for _, prop := range prev.props {
		if _, ok := next.Prop(prop.Name); !ok {
			*ops = append(*ops, Op{Kind: OpRemoveProp, Path: path, Name: prop.Name})
		}
	}
}

func diffBindings(ops *[]Op, path []int, prev, next *Node) {
	for _, event := range slices.Sorted(maps.Keys(next.on)) {
		action := next.on[event]
		if old, ok := prev.on[event]; !ok || old != action {
			*ops = append(*ops, Op{Kind: OpBind, Path: path, Event: event, Action: action})
		}
	}
	for _, event := range slices.Sorted(maps.Keys(prev.on)) {
		if _, ok := next.on[event]; !ok {
			*ops = append(*ops, Op{Kind: OpUnbind, Path: path, Event: event})
		}
	}
}

func diffIndexedChildren(ops *[]Op, path []int, prev, next []*Node) {
	common := min(len(prev), len(next))
	for i := range common {
		diffNode(ops, childPath(path, i), prev[i], next[i])
	}
	for i := common; i < len(next); i++ {
		*ops = append(*ops, Op{Kind: OpInsert, Path: path, Index: i, Node: next[i]})
	}
	for i := len(prev) - 1; i >= common; i-- {
		*ops = append(*ops, Op{Kind: OpRemove, Path: path, Index: i})
	}
}

// diffKeyedChildren matches children by key. Stale keys are removed
// first, then next is walked left to right: a key already in place is
// diffed, a key further right is moved into place, a new key is
// inserted. Surviving children keep their identity.
func diffKeyedChildren(ops *[]Op, path []int, prev, next []*Node) {
	wanted := make(map[string]bool, len(next))
	for _, node := range next {
		wanted[node.key] = true
	}
	byKey := make(map[string]*Node, len(prev))
	var current []string
	for _, node := range prev {
		byKey[node.key] = node
		current = append(current, node.key)
	}

	for i := len(current) - 1; i >= 0; i-- {
		if !wanted[current[i]] {
			*ops = append(*ops, Op{Kind: OpRemove, Path: path, Index: i})
			current = slices.Delete(current, i, i+1)
		}
	}

	for i, node := range next {
		if i < len(current) && current[i] == node.key {
			diffNode(ops, childPath(path, i), byKey[node.key], node)
			continue
		}
		if old, ok := byKey[node.key]; ok {
			from := slices.Index(current, node.key)
			*ops = append(*ops, Op{Kind: OpMove, Path: path, From: from, Index: i})
			current = slices.Delete(current, from, from+1)
			current = slices.Insert(current, i, node.key)
			diffNode(ops, childPath(path, i), old, node)
			continue
		}
		*ops = append(*ops, Op{Kind: OpInsert, Path: path, Index: i, Node: node})
		current = slices.Insert(current, i, node.key)
	}
}

// keyed reports whether every child carries a key and no key repeats.
func keyed(children []*Node) bool {
	seen := make(map[string]bool, len(children))
	for _, child := range children {
		if child.key == "" || seen[child.key] {
			return false
		}
		seen[child.key] = true
	}
	return true
}

func childPath(path []int, index int) []int {
	result := make([]int, len(path)+1)
	copy(result, path)
	result[len(path)] = index
	return result
}
