// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"unsafe"
)

// ErrAlreadyInstalled is returned by Install when a process-wide
// allocator has already been installed.
var ErrAlreadyInstalled = errors.New("secret: allocator already installed")

// AllocatorOptions configures an Allocator.
type AllocatorOptions struct {
	// Platform is the memory backend. Nil means Native().
	Platform Platform

	// LockMemory pins every allocation in physical RAM. Failures to
	// lock are logged at debug level and otherwise ignored.
	LockMemory bool

	// Logger receives release-failure warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Allocator satisfies memory requests by mapping fresh pages from its
// Platform and zero-fills them before every release. It keeps no free
// list, no size classes, and no mutable state, so one value may be
// used from any number of goroutines. The zero value is ready to use
// and maps from Native().
type Allocator struct {
	platform   Platform
	lockMemory bool
	logger     *slog.Logger
}

// NewAllocator returns an Allocator configured by options.
func NewAllocator(options AllocatorOptions) Allocator {
	return Allocator{
		platform:   options.Platform,
		lockMemory: options.LockMemory,
		logger:     options.Logger,
	}
}

var installed atomic.Pointer[Allocator]

// Install makes allocator the process-wide allocator returned by
// Default. It succeeds once per process; there is no uninstall.
func Install(allocator Allocator) error {
	if !installed.CompareAndSwap(nil, &allocator) {
		return ErrAlreadyInstalled
	}
	return nil
}

// Default returns the installed allocator, or the zero Allocator
// (native platform, no locking) when nothing was installed.
func Default() Allocator {
	if allocator := installed.Load(); allocator != nil {
		return *allocator
	}
	return Allocator{}
}

// Platform returns the backend this allocator maps from.
func (a Allocator) Platform() Platform {
	if a.platform == nil {
		return Native()
	}
	return a.platform
}

func (a Allocator) log() *slog.Logger {
	if a.logger == nil {
		return slog.Default()
	}
	return a.logger
}

// Allocate returns exactly size bytes on a fresh mapping, or nil if the
// request cannot be satisfied: non-positive size, an alignment that is
// not a power of two or exceeds the page size, or an OS refusal.
// Allocate never retries and never panics; what to do about a nil
// result is the caller's decision.
//
// Mappings are page aligned, so any alignment up to the page size is
// honored for free.
func (a Allocator) Allocate(size, alignment int) []byte {
	platform := a.Platform()
	if alignment <= 0 || alignment&(alignment-1) != 0 || alignment > platform.PageSize() {
		return nil
	}
	region, err := a.acquire(size)
	if err != nil {
		return nil
	}
	return region.Bytes()
}

// Deallocate zero-fills and unmaps the mapping behind block, which must
// be a slice returned by Allocate on an allocator with the same
// platform, unmodified in length. The page-rounded mapping is rebuilt
// from the block's base address and size, so the whole mapping is
// scrubbed, not just the visible bytes. An unmap failure is logged and
// otherwise ignored.
func (a Allocator) Deallocate(block []byte, alignment int) {
	if len(block) == 0 {
		return
	}
	platform := a.Platform()
	mapped := roundToPages(len(block), platform.PageSize())
	mapping := unsafe.Slice(unsafe.SliceData(block), mapped)
	if err := release(platform, mapping, a.lockMemory); err != nil {
		a.log().Warn("secure memory release failed",
			"bytes", mapped,
			"alignment", alignment,
			"error", err,
		)
	}
}

// acquire maps a region and applies the configured hardening.
func (a Allocator) acquire(size int) (*Region, error) {
	region, err := Acquire(a.Platform(), size)
	if err != nil {
		return nil, err
	}
	if a.lockMemory {
		if err := region.Lock(); err != nil {
			a.log().Debug("secure memory lock unavailable", "bytes", size, "error", err)
		}
	}
	return region, nil
}

// releaseRegion releases region and logs an unmap failure instead of
// returning it.
func (a Allocator) releaseRegion(region *Region) {
	if err := region.Release(); err != nil {
		a.log().Warn("secure memory release failed", "bytes", region.Len(), "error", err)
	}
}
