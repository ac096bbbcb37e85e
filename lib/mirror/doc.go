// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package mirror defines the client-side replica of the orchestrator's
// component state.
//
// A [Document] is an ordered mapping from component ID to [Component].
// Order is the order in which IDs first appeared on the wire; the
// authority controls presentation order through it. Documents are
// values: once built they are never modified, and [Document.Apply]
// returns a new Document. A nil *Document means no snapshot has
// arrived yet, which is distinct from an empty Document (zero
// components).
//
// The status field is observed, never driven: the package validates
// that a status is one of the five known names but does not check
// transitions between them.
package mirror
