// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds passwords and similar credentials in memory that
// the Go runtime never sees.
//
// A [Buffer] is an anonymous mmap region, locked with mlock so it is never
// written to swap and marked MADV_DONTDUMP so it stays out of core dumps.
// Close zeroes the region before unmapping it. Callers convert to a string
// only at the last moment, usually while encoding a request body.
package secret

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer is a fixed-size region of protected memory. The zero value is
// not usable; construct with [New], [NewFromBytes], or [NewFromString].
// A Buffer must not be copied. Reads after Close panic.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	closed bool
}

// New maps size zero-filled bytes of protected memory.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap failed: %w", err)
	}
	if err := unix.Mlock(region); err != nil {
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock failed: %w", err)
	}
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		unix.Munlock(region)
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: madvise(MADV_DONTDUMP) failed: %w", err)
	}

	return &Buffer{region: region}, nil
}

// NewFromBytes copies source into a new Buffer and zeroes source, so the
// heap slice no longer carries the secret once this returns successfully.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.region, source)
	Zero(source)
	return buffer, nil
}

// NewFromString copies value into a new Buffer. The string itself stays on
// the heap until collected; prefer NewFromBytes when the caller owns a
// mutable slice.
func NewFromString(value string) (*Buffer, error) {
	return NewFromBytes([]byte(value))
}

// Bytes returns a slice aliasing the protected region. Do not retain it
// past Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.region
}

// String returns a heap copy of the contents for APIs that only accept
// strings, such as JSON request encoding.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.region)
}

// Len returns the number of bytes held, or 0 after Close.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.region)
}

// Close zeroes, unlocks, and unmaps the region. Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.region)

	var firstError error
	if err := unix.Munlock(b.region); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(b.region); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	b.region = nil
	return firstError
}

// Zero overwrites data with zero bytes.
func Zero(data []byte) {
	clear(data)
}
