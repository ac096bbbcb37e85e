// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package surface holds the live, mutable element tree that a UI
// actually displays, and keeps it in step with successive
// [vtree.Node] renders.
//
// [Surface.Patch] diffs the new render against the last committed one
// and applies only the resulting ops, so elements that did not change
// keep their identity (a focused button stays the same *Element across
// unrelated updates). [Surface.Mutations] counts the ops applied since
// creation; a render identical to the committed one adds nothing.
//
// User input enters through [Surface.Dispatch], which resolves the
// element's bound [vtree.Action] and hands a [Gesture] to the sink.
// Events on disabled elements are dropped. A change on a checkbox does
// not touch its checked property: the element keeps showing the
// rendered value until a later render changes it.
//
// A Surface is not safe for concurrent use; it belongs to the UI loop.
package surface
