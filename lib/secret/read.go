// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrTooLarge is returned by NewFromReader when the source holds more
// than the allowed number of bytes.
var ErrTooLarge = errors.New("secret: source exceeds size limit")

// NewFromReader reads all of r into a buffer from the default
// allocator. See [Allocator.NewFromReader].
func NewFromReader(r io.Reader, limit int) (*Buffer, error) {
	return Default().NewFromReader(r, limit)
}

// ReadFromPath reads a secret from a file path, or from stdin if path
// is "-", using the default allocator. See [Allocator.ReadFromPath].
func ReadFromPath(path string) (*Buffer, error) {
	return Default().ReadFromPath(path)
}

// NewFromReader reads r to EOF into secure memory. At most limit bytes
// are accepted; a longer source fails with ErrTooLarge. The data is read
// straight into a mapped staging region of limit bytes, then copied into
// a buffer of the exact size, so it never passes through the Go heap.
func (a Allocator) NewFromReader(r io.Reader, limit int) (*Buffer, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("secret: read limit must be positive, got %d", limit)
	}

	// One spare byte detects sources longer than limit.
	staging, err := a.acquire(limit + 1)
	if err != nil {
		return nil, err
	}
	defer a.releaseRegion(staging)

	data := staging.Bytes()
	total := 0
	for total < len(data) {
		count, readErr := r.Read(data[total:])
		total += count
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("secret: reading source: %w", readErr)
		}
	}
	if total > limit {
		return nil, ErrTooLarge
	}

	return a.NewFromBytes(data[:total])
}

// ReadFromPath reads a secret from a file path, or from stdin if path
// is "-". See [Allocator.ReadTrimmed] for how the content is handled.
func (a Allocator) ReadFromPath(path string) (*Buffer, error) {
	if path == "-" {
		return a.ReadTrimmed(os.Stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return a.ReadTrimmed(file)
}

// ReadTrimmed reads source to EOF and trims leading and trailing
// whitespace. Returns an error if the source is empty after trimming.
// Sources are capped at 64 KiB.
func (a Allocator) ReadTrimmed(source io.Reader) (*Buffer, error) {
	const limit = 64 << 10

	raw, err := a.NewFromReader(source, limit)
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	trimmed := bytes.TrimSpace(raw.Bytes())
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret is empty")
	}
	return a.NewFromBytes(trimmed)
}
