// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atproto is a client for the AT protocol session endpoints
// (com.atproto.server.createSession, refreshSession, getSession and
// deleteSession).
//
// [Client] holds the service URL, the endpoint URLs derived from it, and
// the HTTP transport. It carries no session state and is safe for
// concurrent use. Every operation returns two things:
//
//   - an [Outcome], which is either Success with the decoded payload or
//     Failure with the service's [ErrorPayload], for any response the
//     service actually sent;
//   - an error, which is non-nil only when no usable response arrived
//     (connection failure, timeout, unreadable or malformed body). These
//     are always [*TransportError] and are never folded into an Outcome.
//
// [Session] is a plain record of the service's session JSON, including the
// DID document used for service discovery. Session.Get, Session.Refresh
// and Session.Delete are conveniences over the Client operations using the
// session's own tokens. Session.Refresh returns a new Session built with
// [Session.MergeRefreshed], which deliberately copies only part of the
// refreshed payload; see that method for details.
//
// Status codes the endpoints do not document produce a Failure whose Code
// and Message are empty. The raw status is still available through
// ErrorPayload.StatusCode and [ErrorPayload.IsUnrecognized].
package atproto
