// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atproto

import (
	"errors"
	"fmt"
)

// FailureKind says where an ErrorPayload came from.
type FailureKind int

const (
	// FailureRejected is a documented error status for the endpoint.
	// Code and Message hold whatever the service put in the body, and are
	// empty if the body was not the usual {"error","message"} object.
	FailureRejected FailureKind = iota

	// FailureUnrecognizedStatus is any status the endpoint does not
	// document. Code and Message are always empty.
	FailureUnrecognizedStatus
)

func (k FailureKind) String() string {
	switch k {
	case FailureRejected:
		return "rejected"
	case FailureUnrecognizedStatus:
		return "unrecognized_status"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// ErrorPayload is the service's error body. Only Code and Message are on
// the wire; StatusCode and Kind are filled in by the client.
//
// Callers can use errors.As to extract it from Outcome.Unwrap:
//
//	var payload *ErrorPayload
//	if errors.As(err, &payload) && payload.Code == ErrCodeAuthRequired { ... }
type ErrorPayload struct {
	// Code is the XRPC error name (e.g. "AuthenticationRequired").
	Code string `json:"error"`
	// Message is the human-readable description.
	Message string `json:"message"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
	// Kind separates documented rejections from unknown statuses.
	Kind FailureKind `json:"-"`
}

func (e *ErrorPayload) Error() string {
	if e.Kind == FailureUnrecognizedStatus {
		return fmt.Sprintf("atproto: unrecognized status %d", e.StatusCode)
	}
	return fmt.Sprintf("atproto: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// IsUnrecognized reports whether the payload stands in for a status the
// endpoint does not document.
func (e ErrorPayload) IsUnrecognized() bool {
	return e.Kind == FailureUnrecognizedStatus
}

// XRPC error names returned by the session endpoints.
const (
	ErrCodeInvalidRequest          = "InvalidRequest"
	ErrCodeAuthRequired            = "AuthenticationRequired"
	ErrCodeAuthFactorTokenRequired = "AuthFactorTokenRequired"
	ErrCodeAccountTakedown         = "AccountTakedown"
	ErrCodeAccountDeactivated      = "AccountDeactivated"
	ErrCodeExpiredToken            = "ExpiredToken"
	ErrCodeInvalidToken            = "InvalidToken"
	ErrCodeAuthMissing             = "AuthMissing"
	ErrCodeRateLimitExceeded       = "RateLimitExceeded"
)

// IsServiceError reports whether err carries an ErrorPayload with the
// given code.
func IsServiceError(err error, code string) bool {
	var payload *ErrorPayload
	if errors.As(err, &payload) {
		return payload.Code == code
	}
	return false
}

// TransportError reports that no usable response came back: the request
// could not be built or sent, the body could not be read, or a success
// body could not be decoded. It is never returned inside an Outcome.
type TransportError struct {
	// Op is the step that failed: "encode", "build", "send", "read" or
	// "decode".
	Op     string
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("atproto: %s %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
