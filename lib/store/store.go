// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package store wraps the mirror document in a reactive container.
//
// Subscribers read the document only through a [View], which records
// every path they touch: whether a document is present, the ordered
// component list, or a single component by ID. When [Store.Replace]
// installs a new document, a subscriber is re-run exactly once if and
// only if one of its recorded paths changed value. Its dependencies are
// re-recorded on every run, so a subscriber that stops reading a path
// stops being woken by it.
//
// Notification is single-flight. A Replace or Subscribe that arrives
// while a cycle is running, whether from a subscriber or another
// goroutine, is queued and handled by the goroutine already draining
// the queue, after the current cycle ends. Subscribers therefore never
// run concurrently with each other or overlap two cycles.
package store

import (
	"sync"
	"sync/atomic"

	"github.com/orchdash/orchdash/lib/mirror"
)

type pathKind int

const (
	pathPresence pathKind = iota
	pathComponents
	pathComponent
)

// path identifies one readable location in the document.
type path struct {
	kind pathKind
	id   int
}

func (p path) changed(previous, next *mirror.Document) bool {
	switch p.kind {
	case pathPresence:
		return (previous == nil) != (next == nil)
	case pathComponents:
		return !previous.Equal(next)
	default:
		before, hadBefore := previous.Component(p.id)
		after, hasAfter := next.Component(p.id)
		return hadBefore != hasAfter || before != after
	}
}

// View is the read accessor handed to subscribers. It is only valid
// for the duration of the callback it was passed to.
type View struct {
	document *mirror.Document
	deps     map[path]struct{}
}

func (v *View) read(p path) {
	if v.deps != nil {
		v.deps[p] = struct{}{}
	}
}

// Present reports whether a snapshot has been received.
func (v *View) Present() bool {
	v.read(path{kind: pathPresence})
	return v.document != nil
}

// Components returns the components in mirror order, or nil if no
// snapshot has been received.
func (v *View) Components() []mirror.Component {
	v.read(path{kind: pathPresence})
	v.read(path{kind: pathComponents})
	return v.document.Components()
}

// Component returns one component by ID.
func (v *View) Component(id int) (mirror.Component, bool) {
	v.read(path{kind: pathComponent, id: id})
	return v.document.Component(id)
}

// Subscription is a registered subscriber.
type Subscription struct {
	fn        func(*View)
	deps      map[path]struct{}
	cancelled atomic.Bool
}

// Cancel stops further notifications. A run already in progress
// completes.
func (s *Subscription) Cancel() {
	s.cancelled.Store(true)
}

func (s *Subscription) dependsOnChange(previous, next *mirror.Document) bool {
	for p := range s.deps {
		if p.changed(previous, next) {
			return true
		}
	}
	return false
}

// Store holds the current mirror document and its subscribers.
type Store struct {
	mu            sync.Mutex
	document      *mirror.Document
	subscriptions []*Subscription
	queue         []*mirror.Document
	fresh         []*Subscription
	draining      bool
}

// New creates a store. Pass nil for "no snapshot yet".
func New(initial *mirror.Document) *Store {
	return &Store{document: initial}
}

// Document returns the current document. Nil until the first
// snapshot.
func (s *Store) Document() *mirror.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// Subscribe registers fn and runs it once against the current
// document to record its dependencies. When no cycle is running the
// first run happens before Subscribe returns; otherwise it is queued
// behind the cycle in progress.
func (s *Store) Subscribe(fn func(*View)) *Subscription {
	subscription := &Subscription{fn: fn}

	s.mu.Lock()
	s.subscriptions = append(s.subscriptions, subscription)
	s.fresh = append(s.fresh, subscription)
	s.drainLocked()
	return subscription
}

// Replace installs document as the new ground truth and notifies
// affected subscribers. The previous document is discarded, never
// merged.
func (s *Store) Replace(document *mirror.Document) {
	s.mu.Lock()
	s.queue = append(s.queue, document)
	s.drainLocked()
}

// drainLocked is called with s.mu held and releases it. The first
// caller to find no drain running handles queued first runs and
// documents until both queues are empty.
func (s *Store) drainLocked() {
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for len(s.fresh) > 0 || len(s.queue) > 0 {
		if len(s.fresh) > 0 {
			subscription := s.fresh[0]
			s.fresh = s.fresh[1:]
			document := s.document
			s.mu.Unlock()

			if !subscription.cancelled.Load() {
				s.run(subscription, document)
			}

			s.mu.Lock()
			continue
		}

		next := s.queue[0]
		s.queue = s.queue[1:]
		previous := s.document
		s.document = next

		var due []*Subscription
		live := s.subscriptions[:0]
		for _, subscription := range s.subscriptions {
			if subscription.cancelled.Load() {
				continue
			}
			live = append(live, subscription)
			if subscription.dependsOnChange(previous, next) {
				due = append(due, subscription)
			}
		}
		s.subscriptions = live
		s.mu.Unlock()

		for _, subscription := range due {
			if !subscription.cancelled.Load() {
				s.run(subscription, next)
			}
		}

		s.mu.Lock()
	}

	s.draining = false
	s.mu.Unlock()
}

func (s *Store) run(subscription *Subscription, document *mirror.Document) {
	view := &View{document: document, deps: make(map[path]struct{})}
	subscription.fn(view)

	s.mu.Lock()
	subscription.deps = view.deps
	s.mu.Unlock()
}
