// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the pieces shared by the orchdash binaries: the
// command logger and categorized command errors.
package cli
