// Copyright 2026 The Orchdash Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command failures.
type ErrorCategory string

const (
	// CategoryValidation: bad flags, arguments, or configuration.
	// Fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryTransient: network or timing failures that may succeed
	// on retry.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: unexpected failures.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by command entry points.
// It wraps the underlying error so errors.Is and errors.As still see
// the full chain.
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is an optional remediation message printed after the
	// error, separated by a blank line.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// ExitCode maps the category to a process exit status: 2 for
// validation errors (usage), 1 otherwise.
func (e *ToolError) ExitCode() int {
	if e.Category == CategoryValidation {
		return 2
	}
	return 1
}

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
