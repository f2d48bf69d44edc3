// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so that callers can tell bad
// input from a flaky network without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation indicates invalid input: unknown flags, missing
	// arguments, a configuration file that does not validate.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound indicates a referenced file does not exist, most
	// often the saved session before the first login.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryTransient indicates the service could not be reached or
	// did not answer: connection refused, timeout, truncated response.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal indicates an unexpected failure such as local I/O
	// or a response that did not decode.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by commands. It wraps an
// inner error, preserving the chain for errors.Is and errors.As.
//
// Use the category constructors rather than constructing ToolError
// directly.
type ToolError struct {
	// Category classifies the error for programmatic handling.
	Category ErrorCategory

	// Err is the underlying error with the human-readable message.
	Err error

	// Hint is an optional next step printed after the message.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint attaches a remediation hint and returns the receiver.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error: the caller provided bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error: a failure that may succeed on retry.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error: an unexpected failure or I/O error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
