// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"sync"

	"github.com/orchdash/orchdash/lib/mirror"
)

// Mailbox is a one-slot, latest-wins handoff of documents. A Put that
// finds an undelivered document replaces it: every document is a full
// state, so only the newest matters.
type Mailbox struct {
	mu      sync.Mutex
	pending *mirror.Document
	full    bool
	ready   chan struct{}
}

// NewMailbox creates an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Put stores document, replacing any undelivered one. It never blocks.
func (m *Mailbox) Put(document *mirror.Document) {
	m.mu.Lock()
	m.pending = document
	m.full = true
	m.mu.Unlock()
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Ready is signalled after a Put. One signal may cover several Puts.
func (m *Mailbox) Ready() <-chan struct{} { return m.ready }

// Take removes and returns the pending document.
func (m *Mailbox) Take() (*mirror.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	document, ok := m.pending, m.full
	m.pending, m.full = nil, false
	return document, ok
}
