// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import "errors"

// ErrUnsupportedPlatform is returned by the native backend on operating
// systems without an anonymous-mapping implementation.
var ErrUnsupportedPlatform = errors.New("secret: page mapping is not supported on this platform")

// Platform is the operating system memory capability. Implementations
// must hand out private, anonymous, non-executable read-write memory
// that is never backed by a file and never shared with another
// process.
//
// Map receives lengths that are already a whole number of pages. Unmap
// receives exactly a slice previously returned by Map. Zero filling is
// not the backend's job: [Region.Release] and [Allocator.Deallocate]
// scrub the mapping before calling Unmap, so every backend gets the
// same zero-before-release behavior.
type Platform interface {
	// Map requests length bytes of fresh memory from the OS.
	Map(length int) ([]byte, error)

	// Unmap returns a mapping to the OS.
	Unmap(mapping []byte) error

	// Lock pins a mapping in physical memory (mlock, VirtualLock).
	Lock(mapping []byte) error

	// Unlock reverses Lock.
	Unlock(mapping []byte) error

	// PageSize reports the granularity of Map.
	PageSize() int
}

// Native returns the Platform for the operating system the binary was
// built for.
func Native() Platform {
	return nativePlatform{}
}

// roundToPages rounds length up to a multiple of pageSize. Returns 0 if
// the result would overflow int.
func roundToPages(length, pageSize int) int {
	if pageSize <= 0 {
		return length
	}
	remainder := length % pageSize
	if remainder == 0 {
		return length
	}
	rounded := length + (pageSize - remainder)
	if rounded < length {
		return 0
	}
	return rounded
}
