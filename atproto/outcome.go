// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

// Outcome is the result of a request the service answered: either a
// decoded success payload or the service's error payload, never both.
// The zero value is a Success holding the zero T; construct with
// [Succeeded] or [Failed].
type Outcome[T any] struct {
	value   T
	failure *ErrorPayload
}

// Succeeded wraps a successful payload.
func Succeeded[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Failed wraps a service-level failure.
func Failed[T any](payload ErrorPayload) Outcome[T] {
	return Outcome[T]{failure: &payload}
}

// IsSuccess reports whether the outcome holds a payload.
func (o Outcome[T]) IsSuccess() bool {
	return o.failure == nil
}

// Value returns the success payload. ok is false for a Failure, in which
// case the returned value is the zero T.
func (o Outcome[T]) Value() (value T, ok bool) {
	if o.failure != nil {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Failure returns the error payload. ok is false for a Success.
func (o Outcome[T]) Failure() (payload ErrorPayload, ok bool) {
	if o.failure == nil {
		return ErrorPayload{}, false
	}
	return *o.failure, true
}

// Unwrap converts the outcome into Go's usual (value, error) pair. A
// Failure comes back as a *ErrorPayload, so callers can use errors.As to
// recover the service's code and message.
func (o Outcome[T]) Unwrap() (T, error) {
	if o.failure != nil {
		var zero T
		payload := *o.failure
		return zero, &payload
	}
	return o.value, nil
}
