// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
)

// FillByte is the value written over every byte of a mapping before it
// is returned to the OS.
const FillByte byte = 0x00

// AllocationError reports that the OS refused a mapping request.
type AllocationError struct {
	Length int
	Err    error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("secret: allocating %d bytes: %v", e.Length, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// ReleaseError reports that the OS refused to unmap a mapping. The
// mapping was already zero-filled when this error is produced.
type ReleaseError struct {
	Length int
	Err    error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("secret: releasing %d bytes (already zeroed): %v", e.Length, e.Err)
}

func (e *ReleaseError) Unwrap() error { return e.Err }

// Region is an owned, page-mapped memory region. It is created by
// exactly one [Acquire] and destroyed by exactly one [Region.Release];
// after Release every accessor panics, and further Release calls do
// nothing. A Region is never resized: growing means acquiring a new
// region, copying, and releasing the old one.
//
// A Region is not safe for concurrent use. [Buffer] adds locking on
// top of it.
type Region struct {
	platform Platform
	mapping  []byte
	length   int
	locked   bool
}

// Acquire maps a fresh region of at least length bytes from platform.
// The mapping is rounded up to whole pages; [Region.Bytes] exposes
// exactly length bytes of it. The memory is zero-initialized by the OS.
func Acquire(platform Platform, length int) (*Region, error) {
	if length <= 0 {
		return nil, &AllocationError{Length: length, Err: fmt.Errorf("length must be positive")}
	}
	mapped := roundToPages(length, platform.PageSize())
	if mapped == 0 {
		return nil, &AllocationError{Length: length, Err: fmt.Errorf("length overflows page rounding")}
	}
	mapping, err := platform.Map(mapped)
	if err != nil {
		return nil, &AllocationError{Length: length, Err: err}
	}
	return &Region{
		platform: platform,
		mapping:  mapping,
		length:   length,
	}, nil
}

// Bytes returns the usable part of the region. The slice points
// directly into the mapping and has no spare capacity. Panics after
// Release.
func (r *Region) Bytes() []byte {
	if r.mapping == nil {
		panic("secret: use of released region")
	}
	return r.mapping[:r.length:r.length]
}

// Len returns the usable length requested at Acquire time.
func (r *Region) Len() int {
	return r.length
}

// Lock pins the region in physical memory. Best effort: callers treat
// a failure as a missing hardening, not as an allocation failure.
func (r *Region) Lock() error {
	if r.mapping == nil {
		panic("secret: use of released region")
	}
	if err := r.platform.Lock(r.mapping); err != nil {
		return err
	}
	r.locked = true
	return nil
}

// Released reports whether Release has been called.
func (r *Region) Released() bool {
	return r.mapping == nil
}

// Release overwrites the whole mapping, including page-rounding slack,
// with [FillByte] and then unmaps it. A returned *ReleaseError means the
// unmap failed after the fill; the caller may log it and move on.
func (r *Region) Release() error {
	if r.mapping == nil {
		return nil
	}
	mapping := r.mapping
	r.mapping = nil
	return release(r.platform, mapping, r.locked)
}

// release is the one zero-then-unmap path shared by Region and
// Allocator.Deallocate.
func release(platform Platform, mapping []byte, locked bool) error {
	fill(mapping)
	if locked {
		// munmap and VirtualFree drop locks anyway; an unlock failure
		// changes nothing about the outcome.
		_ = platform.Unlock(mapping)
	}
	if err := platform.Unmap(mapping); err != nil {
		return &ReleaseError{Length: len(mapping), Err: err}
	}
	return nil
}

func fill(mapping []byte) {
	for index := range mapping {
		mapping[index] = FillByte
	}
}
