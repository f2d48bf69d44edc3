// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds how much of an HTTP response body oxysky will
// hold in memory. Session endpoints return small JSON documents; the limit
// only exists so a misbehaving server cannot exhaust memory.
package netutil

import (
	"fmt"
	"io"
)

// MaxResponseSize is the most ReadResponse will read from a body: 16 MB.
const MaxResponseSize int64 = 16 << 20

// ReadResponse reads body up to MaxResponseSize bytes. A body that is
// larger is an error rather than a silent truncation, because a cut-off
// JSON document would otherwise fail later with a confusing parse error.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
	}
	return data, nil
}
