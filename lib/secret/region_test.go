// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"testing"
)

func TestAcquire_ValidLength(t *testing.T) {
	region, err := Acquire(Native(), 100)
	if err != nil {
		t.Fatalf("Acquire(100) error: %v", err)
	}
	defer region.Release()

	if region.Len() != 100 {
		t.Errorf("Len() = %d, want 100", region.Len())
	}
	data := region.Bytes()
	if len(data) != 100 || cap(data) != 100 {
		t.Errorf("Bytes() len/cap = %d/%d, want 100/100", len(data), cap(data))
	}
	requireFilled(t, data)
}

func TestAcquire_InvalidLength(t *testing.T) {
	for _, length := range []int{0, -1} {
		_, err := Acquire(Native(), length)
		var allocationError *AllocationError
		if !errors.As(err, &allocationError) {
			t.Errorf("Acquire(%d) error = %v, want *AllocationError", length, err)
		}
	}
}

func TestAcquire_PlatformRefusal(t *testing.T) {
	platform := newHeapPlatform()
	refusal := errors.New("cannot allocate memory")
	platform.mapErr = refusal

	region, err := Acquire(platform, 64)
	if region != nil {
		t.Error("Acquire() returned a region on refusal")
	}
	if !errors.Is(err, refusal) {
		t.Errorf("Acquire() error = %v, want wrapped %v", err, refusal)
	}
}

func TestAcquire_RoundsToPages(t *testing.T) {
	platform := newHeapPlatform()
	region, err := Acquire(platform, 10)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	defer region.Release()

	if got := len(platform.mapped[0]); got != 4096 {
		t.Errorf("mapped %d bytes, want one page (4096)", got)
	}
}

func TestRegion_Release_FillsWholeMapping(t *testing.T) {
	platform := newHeapPlatform()
	region, err := Acquire(platform, 100)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	// Dirty the slack past the usable length as well.
	for index := range region.mapping {
		region.mapping[index] = 0xA5
	}

	if err := region.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	unmapped := platform.lastUnmapped(t)
	if len(unmapped) != 4096 {
		t.Fatalf("unmapped %d bytes, want 4096", len(unmapped))
	}
	requireFilled(t, unmapped)
}

func TestRegion_Release_NativeProbe(t *testing.T) {
	probe := &probePlatform{Platform: Native()}
	region, err := Acquire(probe, 64)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	copy(region.Bytes(), "user: bob\npass: xyz123")

	if err := region.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if len(probe.snapshots) != 1 {
		t.Fatalf("observed %d unmaps, want 1", len(probe.snapshots))
	}
	requireFilled(t, probe.snapshots[0])
}

func TestRegion_Release_UnmapFailureIsNonFatal(t *testing.T) {
	platform := newHeapPlatform()
	platform.unmapErr = errors.New("invalid argument")

	region, err := Acquire(platform, 32)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	copy(region.Bytes(), "hunter2")

	err = region.Release()
	var releaseError *ReleaseError
	if !errors.As(err, &releaseError) {
		t.Fatalf("Release() error = %v, want *ReleaseError", err)
	}
	// The fill happened before the failed unmap.
	requireFilled(t, platform.lastUnmapped(t))
	if !region.Released() {
		t.Error("region not marked released after failed unmap")
	}
}

func TestRegion_Release_Idempotent(t *testing.T) {
	platform := newHeapPlatform()
	region, err := Acquire(platform, 16)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	if err := region.Release(); err != nil {
		t.Fatalf("first Release() error: %v", err)
	}
	if err := region.Release(); err != nil {
		t.Fatalf("second Release() error: %v", err)
	}
	if len(platform.unmapped) != 1 {
		t.Errorf("unmapped %d times, want 1", len(platform.unmapped))
	}
}

func TestRegion_Bytes_PanicsAfterRelease(t *testing.T) {
	region, err := Acquire(Native(), 16)
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	region.Release()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on Bytes() after Release")
		}
	}()
	region.Bytes()
}
