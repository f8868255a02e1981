// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"crypto/subtle"
	"fmt"
	"io"
	"sync"
)

// Buffer holds sensitive data in memory obtained from an [Allocator].
// The backing region is zeroed and unmapped on Close.
//
// A Buffer must not be copied after creation. After Close, any access
// to the buffer's contents panics. A zero-length Buffer owns no region
// and is how an empty secret (an unsaved vault, say) is represented.
type Buffer struct {
	mu        sync.Mutex
	allocator Allocator
	region    *Region
	length    int
	closed    bool
}

// New allocates a zero-filled buffer of size bytes from the default
// allocator. The caller must call Close.
func New(size int) (*Buffer, error) {
	return Default().New(size)
}

// NewFromBytes copies source into a buffer from the default allocator
// and zeros source.
func NewFromBytes(source []byte) (*Buffer, error) {
	return Default().NewFromBytes(source)
}

// New allocates a zero-filled buffer of size bytes. Size 0 yields an
// empty buffer with no mapping.
func (a Allocator) New(size int) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("secret: buffer size must not be negative, got %d", size)
	}
	buffer := &Buffer{allocator: a, length: size}
	if size == 0 {
		return buffer, nil
	}
	region, err := a.acquire(size)
	if err != nil {
		return nil, err
	}
	buffer.region = region
	return buffer, nil
}

// NewFromBytes creates a buffer holding a copy of source. The source
// bytes are zeroed in place, so the caller's slice no longer holds the
// secret. Source is zeroed even when allocation fails.
func (a Allocator) NewFromBytes(source []byte) (*Buffer, error) {
	buffer, err := a.New(len(source))
	if err != nil {
		Zero(source)
		return nil, err
	}
	if buffer.region != nil {
		copy(buffer.region.Bytes(), source)
	}
	Zero(source)
	return buffer, nil
}

// Bytes returns the secret data. The returned slice points directly
// into the mapped region and has no spare capacity; do not hold it
// beyond the lifetime of the Buffer. Panics if the buffer has been
// closed.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.bytesLocked()
}

func (b *Buffer) bytesLocked() []byte {
	if b.region == nil {
		return []byte{}
	}
	return b.region.Bytes()[:b.length:b.length]
}

// String returns the secret data as a string. The string is a heap copy
// the garbage collector owns, so use it only at API boundaries that
// insist on strings. Prefer Bytes.
//
// Panics if the buffer has been closed.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.bytesLocked())
}

// Len returns the size of the secret data.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.length
}

// Equal reports whether the buffer holds exactly other, in constant
// time with respect to the contents.
func (b *Buffer) Equal(other []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return subtle.ConstantTimeCompare(b.bytesLocked(), other) == 1
}

// WriteTo writes the secret data to w without an intermediate heap
// copy. Implements io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	written, err := w.Write(b.bytesLocked())
	return int64(written), err
}

// Append grows the buffer by data. Regions are never resized in place:
// a new region of the combined size is acquired, the old contents and
// data are copied into it, and the old region is zeroed and released.
// Data is zeroed after the copy.
func (b *Buffer) Append(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: write to closed buffer")
	}
	if len(data) == 0 {
		return nil
	}

	newLength := b.length + len(data)
	grown, err := b.allocator.acquire(newLength)
	if err != nil {
		Zero(data)
		return err
	}
	destination := grown.Bytes()
	copy(destination, b.bytesLocked())
	copy(destination[b.length:], data)
	Zero(data)

	if b.region != nil {
		b.allocator.releaseRegion(b.region)
	}
	b.region = grown
	b.length = newLength
	return nil
}

// Truncate shortens the buffer to length bytes, zeroing the dropped
// tail in place. The mapping keeps its size until Close.
func (b *Buffer) Truncate(length int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: write to closed buffer")
	}
	if length < 0 || length >= b.length {
		return
	}
	Zero(b.region.Bytes()[length:b.length])
	b.length = length
}

// Close zeros the buffer contents and unmaps the memory. After Close,
// any access to the buffer's contents panics. Close is idempotent.
//
// An unmap failure is returned, but the memory has already been zeroed
// by then, so callers typically log it and continue.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.length = 0

	if b.region == nil {
		return nil
	}
	region := b.region
	b.region = nil
	return region.Release()
}

// Zero overwrites a caller-owned slice with zeros. Use it on heap
// copies that briefly held secret material.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
