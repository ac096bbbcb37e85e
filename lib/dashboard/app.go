// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"log/slog"

	"github.com/orchdash/orchdash/lib/mirror"
	"github.com/orchdash/orchdash/lib/store"
	"github.com/orchdash/orchdash/lib/surface"
)

// App is the dashboard's application context. It is not safe for
// concurrent use: one goroutine (the UI loop) owns it.
type App struct {
	store      *store.Store
	surface    *surface.Surface
	dispatcher *Dispatcher
	logger     *slog.Logger

	render  *store.Subscription
	renders int
}

// NewApp builds the store, surface, and dispatcher, and renders the
// initial empty view.
func NewApp(sender Sender, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	app := &App{
		store:      store.New(nil),
		dispatcher: NewDispatcher(sender, logger),
		logger:     logger,
	}
	app.surface = surface.New(app.handleGesture)
	app.render = app.store.Subscribe(app.rerender)
	return app
}

func (a *App) rerender(view *store.View) {
	a.renders++
	if _, err := a.surface.Patch(BuildTree(view)); err != nil {
		a.logger.Error("patch failed, surface rebuilt", "error", err)
	}
}

func (a *App) handleGesture(gesture surface.Gesture) {
	if err := a.dispatcher.HandleGesture(gesture); err != nil {
		a.logger.Warn("rejected gesture", "error", err)
	}
}

// ApplyState makes document the new mirror. Rendering happens before
// ApplyState returns.
func (a *App) ApplyState(document *mirror.Document) {
	a.store.Replace(document)
}

// Activate delivers a user event to the element at path. It reports
// whether the event reached the dispatcher.
func (a *App) Activate(path []int, event surface.Event) (bool, error) {
	return a.surface.Dispatch(path, event)
}

// Document returns the current mirror, nil before the first snapshot.
func (a *App) Document() *mirror.Document { return a.store.Document() }

// Surface returns the live element tree.
func (a *App) Surface() *surface.Surface { return a.surface }

// Dispatcher returns the command dispatcher.
func (a *App) Dispatcher() *Dispatcher { return a.dispatcher }

// Renders returns how many times the tree has been built.
func (a *App) Renders() int { return a.renders }

// Close stops rendering.
func (a *App) Close() { a.render.Cancel() }

// Run applies documents from mailbox until ctx is done. It is the
// headless counterpart of the terminal UI loop.
func (a *App) Run(ctx context.Context, mailbox *Mailbox) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-mailbox.Ready():
			if document, ok := mailbox.Take(); ok {
				a.ApplyState(document)
			}
		}
	}
}
