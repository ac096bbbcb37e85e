// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package vtree is a declarative UI tree and its reconciliation.
//
// A [Node] describes one element: tag, classes, properties, event
// bindings, an optional key, and ordered children. Text is a child
// node of its own. Nodes are built with [H] and never modified
// afterwards; a render pass builds a whole new tree.
//
// Event bindings are data, not closures: an [Action] names the command
// and the target it applies to. Two builds of the same state therefore
// produce equal trees, and [Diff] between them is empty.
//
// [Diff] compares two trees and returns the [Op] list that turns a
// live tree shaped like the first into one shaped like the second.
// Children that all carry unique keys are matched by key (so a row
// keeps its identity when rows around it come and go); other children
// are matched by position.
package vtree
