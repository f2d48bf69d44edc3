// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Oxysky is a command line client for AT Protocol sessions. It logs in
// with an identifier and password (login), then inspects, refreshes and
// revokes the saved session (session show, get, refresh, delete). The
// session file can be sealed to an age identity created with keygen.
package main
