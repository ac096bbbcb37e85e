// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package dashboard ties the component mirror to its UI.
//
// [BuildTree] is a pure function from a store view to the component
// table. [App] owns the store, the live surface, and the
// [Dispatcher]: each new document goes into the store, the render
// subscription rebuilds the tree, and the surface applies the
// difference. User gestures come back from the surface as typed
// actions, and the dispatcher turns them into outbound commands.
//
// The dashboard never predicts the effect of a command. Clicking Stop
// sends a stop request and changes nothing locally; the row changes
// when the authority's next snapshot says it did.
//
// [Mailbox] carries documents from the channel's goroutine to the
// goroutine that owns the App.
package dashboard
