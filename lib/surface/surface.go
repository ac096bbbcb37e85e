// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package surface

import (
	"fmt"
	"slices"

	"github.com/orchdash/orchdash/lib/vtree"
)

// Event is a user input event.
type Event struct {
	Type vtree.EventType

	// Checked is the value a checkbox would take after a change
	// event.
	Checked bool
}

// Gesture is a dispatched event together with the action it was
// bound to.
type Gesture struct {
	Action vtree.Action
	Event  Event
}

// Sink receives gestures.
type Sink func(Gesture)

// Surface is a live element tree.
type Surface struct {
	root      *Element
	committed *vtree.Node
	mutations int
	sink      Sink
}

// New creates an empty surface. A nil sink discards gestures.
func New(sink Sink) *Surface {
	if sink == nil {
		sink = func(Gesture) {}
	}
	return &Surface{sink: sink}
}

// Root returns the live root element, nil before the first Patch.
func (s *Surface) Root() *Element { return s.root }

// Committed returns the last render applied by Patch.
func (s *Surface) Committed() *vtree.Node { return s.committed }

// Mutations returns the number of ops applied since creation.
func (s *Surface) Mutations() int { return s.mutations }

// Snapshot rebuilds an immutable tree from the live elements.
func (s *Surface) Snapshot() *vtree.Node {
	if s.root == nil {
		return nil
	}
	return s.root.snapshot()
}

// Patch brings the live tree in line with next and commits it. It
// returns the number of ops applied. If an op cannot be applied the
// live tree is rebuilt from next and the error is returned.
func (s *Surface) Patch(next *vtree.Node) (int, error) {
	ops := vtree.Diff(s.committed, next)
	err := s.Apply(ops)
	if err != nil {
		s.root = build(next)
		s.mutations++
	}
	s.committed = next
	return len(ops), err
}

// Apply applies ops in order.
func (s *Surface) Apply(ops []vtree.Op) error {
	for i, op := range ops {
		if err := s.apply(op); err != nil {
			return fmt.Errorf("applying op %d (%s): %w", i, op, err)
		}
		s.mutations++
	}
	return nil
}

func (s *Surface) apply(op vtree.Op) error {
	switch op.Kind {
	case vtree.OpReplace:
		if len(op.Path) == 0 {
			s.root = build(op.Node)
			return nil
		}
		parent, err := s.Lookup(op.Path[:len(op.Path)-1])
		if err != nil {
			return err
		}
		index := op.Path[len(op.Path)-1]
		if index < 0 || index >= len(parent.children) {
			return fmt.Errorf("child %d out of range (%d children)", index, len(parent.children))
		}
		if op.Node == nil {
			return fmt.Errorf("replace with nil below the root")
		}
		parent.children[index] = build(op.Node)
		return nil

	case vtree.OpInsert:
		parent, err := s.Lookup(op.Path)
		if err != nil {
			return err
		}
		if op.Index < 0 || op.Index > len(parent.children) {
			return fmt.Errorf("insert position %d out of range (%d children)", op.Index, len(parent.children))
		}
		parent.children = slices.Insert(parent.children, op.Index, build(op.Node))
		return nil

	case vtree.OpRemove:
		parent, err := s.Lookup(op.Path)
		if err != nil {
			return err
		}
		if op.Index < 0 || op.Index >= len(parent.children) {
			return fmt.Errorf("child %d out of range (%d children)", op.Index, len(parent.children))
		}
		parent.children = slices.Delete(parent.children, op.Index, op.Index+1)
		return nil

	case vtree.OpMove:
		parent, err := s.Lookup(op.Path)
		if err != nil {
			return err
		}
		if op.From < 0 || op.From >= len(parent.children) {
			return fmt.Errorf("move source %d out of range (%d children)", op.From, len(parent.children))
		}
		moved := parent.children[op.From]
		parent.children = slices.Delete(parent.children, op.From, op.From+1)
		if op.Index < 0 || op.Index > len(parent.children) {
			return fmt.Errorf("move target %d out of range", op.Index)
		}
		parent.children = slices.Insert(parent.children, op.Index, moved)
		return nil
	}

	target, err := s.Lookup(op.Path)
	if err != nil {
		return err
	}
	switch op.Kind {
	case vtree.OpSetProp:
		target.props[op.Name] = op.Value
	case vtree.OpRemoveProp:
		delete(target.props, op.Name)
	case vtree.OpSetClasses:
		target.classes = slices.Clone(op.Classes)
	case vtree.OpSetText:
		if !target.IsText() {
			return fmt.Errorf("set-text on <%s>", target.tag)
		}
		target.text = op.Text
	case vtree.OpBind:
		target.on[op.Event] = op.Action
	case vtree.OpUnbind:
		delete(target.on, op.Event)
	default:
		return fmt.Errorf("unknown op kind %s", op.Kind)
	}
	return nil
}

// Lookup resolves a child-index path from the root.
func (s *Surface) Lookup(path []int) (*Element, error) {
	if s.root == nil {
		return nil, fmt.Errorf("surface is empty")
	}
	element := s.root
	for depth, index := range path {
		if index < 0 || index >= len(element.children) {
			return nil, fmt.Errorf("path %v: child %d out of range at depth %d", path, index, depth)
		}
		element = element.children[index]
	}
	return element, nil
}

// Walk visits every element depth-first in document order. Returning
// false from visit skips the element's children.
func (s *Surface) Walk(visit func(path []int, element *Element) bool) {
	if s.root == nil {
		return
	}
	walk(nil, s.root, visit)
}

func walk(path []int, element *Element, visit func([]int, *Element) bool) {
	if !visit(path, element) {
		return
	}
	for i, child := range element.children {
		childPath := make([]int, len(path)+1)
		copy(childPath, path)
		childPath[len(path)] = i
		walk(childPath, child, visit)
	}
}

// Interactive returns the paths of all elements with at least one
// binding, in document order.
func (s *Surface) Interactive() [][]int {
	var paths [][]int
	s.Walk(func(path []int, element *Element) bool {
		if len(element.on) > 0 {
			paths = append(paths, path)
		}
		return true
	})
	return paths
}

// Dispatch delivers an event to the element at path. It reports
// whether a gesture reached the sink: an unbound event or a click on
// a disabled element is dropped without error.
func (s *Surface) Dispatch(path []int, event Event) (bool, error) {
	element, err := s.Lookup(path)
	if err != nil {
		return false, err
	}
	action, ok := element.on[event.Type]
	if !ok {
		return false, nil
	}
	if element.Disabled() {
		return false, nil
	}
	s.sink(Gesture{Action: action, Event: event})
	return true, nil
}
