// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"sync"
	"testing"
)

func TestAllocator_Allocate(t *testing.T) {
	allocator := Allocator{}

	block := allocator.Allocate(100, 8)
	if block == nil {
		t.Fatal("Allocate(100, 8) = nil")
	}
	defer allocator.Deallocate(block, 8)

	if len(block) != 100 {
		t.Errorf("len(block) = %d, want 100", len(block))
	}
	requireFilled(t, block)
}

func TestAllocator_Allocate_Rejects(t *testing.T) {
	allocator := NewAllocator(AllocatorOptions{Platform: newHeapPlatform()})

	tests := []struct {
		name      string
		size      int
		alignment int
	}{
		{name: "zero size", size: 0, alignment: 1},
		{name: "negative size", size: -5, alignment: 1},
		{name: "zero alignment", size: 16, alignment: 0},
		{name: "alignment not power of two", size: 16, alignment: 12},
		{name: "alignment above page size", size: 16, alignment: 8192},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if block := allocator.Allocate(test.size, test.alignment); block != nil {
				t.Errorf("Allocate(%d, %d) = %d bytes, want nil", test.size, test.alignment, len(block))
			}
		})
	}
}

func TestAllocator_Allocate_OSRefusal(t *testing.T) {
	platform := newHeapPlatform()
	platform.mapErr = errors.New("cannot allocate memory")
	allocator := NewAllocator(AllocatorOptions{Platform: platform})

	if block := allocator.Allocate(64, 8); block != nil {
		t.Fatalf("Allocate() = %d bytes, want nil on refusal", len(block))
	}
}

func TestAllocator_Deallocate_FillsWholeMapping(t *testing.T) {
	platform := newHeapPlatform()
	allocator := NewAllocator(AllocatorOptions{Platform: platform})

	block := allocator.Allocate(22, 1)
	if block == nil {
		t.Fatal("Allocate() = nil")
	}
	copy(block, "user: bob\npass: xyz123")
	// Slack beyond the visible block, reachable only through the mapping.
	mapping := platform.mapped[0]
	for index := len(block); index < len(mapping); index++ {
		mapping[index] = 0x5A
	}

	allocator.Deallocate(block, 1)

	unmapped := platform.lastUnmapped(t)
	if len(unmapped) != len(mapping) {
		t.Fatalf("unmapped %d bytes, want the full %d-byte mapping", len(unmapped), len(mapping))
	}
	if &unmapped[0] != &mapping[0] {
		t.Fatal("Deallocate unmapped a different address than Allocate returned")
	}
	requireFilled(t, unmapped)
}

func TestAllocator_Deallocate_NativeProbe(t *testing.T) {
	probe := &probePlatform{Platform: Native()}
	allocator := NewAllocator(AllocatorOptions{Platform: probe})

	size := probe.PageSize() + 1
	block := allocator.Allocate(size, 16)
	if block == nil {
		t.Fatal("Allocate() = nil")
	}
	for index := range block {
		block[index] = 'x'
	}

	allocator.Deallocate(block, 16)

	if len(probe.snapshots) != 1 {
		t.Fatalf("observed %d unmaps, want 1", len(probe.snapshots))
	}
	if len(probe.snapshots[0]) != 2*probe.PageSize() {
		t.Errorf("unmapped %d bytes, want %d", len(probe.snapshots[0]), 2*probe.PageSize())
	}
	requireFilled(t, probe.snapshots[0])
}

func TestAllocator_Deallocate_UnmapFailureIgnored(t *testing.T) {
	platform := newHeapPlatform()
	platform.unmapErr = errors.New("invalid argument")
	allocator := NewAllocator(AllocatorOptions{Platform: platform})

	block := allocator.Allocate(8, 8)
	copy(block, "secret!!")

	// Must not panic; the failure is only logged.
	allocator.Deallocate(block, 8)
	requireFilled(t, platform.lastUnmapped(t))
}

func TestAllocator_Deallocate_Empty(t *testing.T) {
	platform := newHeapPlatform()
	allocator := NewAllocator(AllocatorOptions{Platform: platform})

	allocator.Deallocate(nil, 1)
	if len(platform.unmapped) != 0 {
		t.Errorf("Deallocate(nil) unmapped %d mappings, want 0", len(platform.unmapped))
	}
}

func TestAllocator_NoReuse(t *testing.T) {
	platform := newHeapPlatform()
	allocator := NewAllocator(AllocatorOptions{Platform: platform})

	for range 3 {
		block := allocator.Allocate(32, 8)
		allocator.Deallocate(block, 8)
	}
	if len(platform.mapped) != 3 || len(platform.unmapped) != 3 {
		t.Errorf("mapped %d / unmapped %d, want 3 / 3 (one OS mapping per allocation)",
			len(platform.mapped), len(platform.unmapped))
	}
}

func TestAllocator_ConcurrentUse(t *testing.T) {
	allocator := Allocator{}

	var waitGroup sync.WaitGroup
	for worker := range 16 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for iteration := range 50 {
				size := 1 + (worker*50+iteration)%9000
				block := allocator.Allocate(size, 8)
				if block == nil {
					t.Errorf("Allocate(%d) = nil", size)
					return
				}
				block[0] = byte(worker)
				block[size-1] = byte(iteration)
				allocator.Deallocate(block, 8)
			}
		}()
	}
	waitGroup.Wait()
}

func TestAllocator_LockMemory(t *testing.T) {
	allocator := NewAllocator(AllocatorOptions{LockMemory: true})

	// Locking is best effort; allocation must succeed either way.
	block := allocator.Allocate(128, 8)
	if block == nil {
		t.Fatal("Allocate() with LockMemory = nil")
	}
	allocator.Deallocate(block, 8)
}

func TestInstall_Once(t *testing.T) {
	t.Cleanup(func() { installed.Store(nil) })

	platform := newHeapPlatform()
	if err := Install(NewAllocator(AllocatorOptions{Platform: platform})); err != nil {
		t.Fatalf("first Install() error: %v", err)
	}
	if err := Install(Allocator{}); !errors.Is(err, ErrAlreadyInstalled) {
		t.Fatalf("second Install() error = %v, want ErrAlreadyInstalled", err)
	}
	if Default().Platform() != Platform(platform) {
		t.Error("Default() does not return the installed allocator")
	}
}
