// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package secret

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

type nativePlatform struct{}

func (nativePlatform) Map(length int) ([]byte, error) {
	// Reserve and commit in one call. Unlike mmap, VirtualAlloc needs
	// both before the pages are usable.
	address, err := windows.VirtualAlloc(0, uintptr(length), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("VirtualAlloc %d bytes: %w", length, err)
	}
	if address == 0 {
		return nil, fmt.Errorf("VirtualAlloc %d bytes: returned null address", length)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(address)), length), nil
}

func (nativePlatform) Unmap(mapping []byte) error {
	// MEM_RELEASE requires size 0 and decommits the whole reservation.
	if err := windows.VirtualFree(baseAddress(mapping), 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("VirtualFree %d bytes: %w", len(mapping), err)
	}
	return nil
}

func (nativePlatform) Lock(mapping []byte) error {
	if err := windows.VirtualLock(baseAddress(mapping), uintptr(len(mapping))); err != nil {
		return fmt.Errorf("VirtualLock %d bytes: %w", len(mapping), err)
	}
	return nil
}

func (nativePlatform) Unlock(mapping []byte) error {
	if err := windows.VirtualUnlock(baseAddress(mapping), uintptr(len(mapping))); err != nil {
		return fmt.Errorf("VirtualUnlock %d bytes: %w", len(mapping), err)
	}
	return nil
}

func (nativePlatform) PageSize() int {
	return os.Getpagesize()
}

func baseAddress(mapping []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(mapping)))
}
