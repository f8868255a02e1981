// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type nativePlatform struct{}

func (nativePlatform) Map(length int) ([]byte, error) {
	// See mmap(2). Read-write only, private to this process, no file.
	mapping, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", length, err)
	}
	return mapping, nil
}

func (nativePlatform) Unmap(mapping []byte) error {
	if err := unix.Munmap(mapping); err != nil {
		return fmt.Errorf("munmap %d bytes: %w", len(mapping), err)
	}
	return nil
}

func (nativePlatform) Lock(mapping []byte) error {
	if err := unix.Mlock(mapping); err != nil {
		return fmt.Errorf("mlock %d bytes: %w", len(mapping), err)
	}
	return nil
}

func (nativePlatform) Unlock(mapping []byte) error {
	if err := unix.Munlock(mapping); err != nil {
		return fmt.Errorf("munlock %d bytes: %w", len(mapping), err)
	}
	return nil
}

func (nativePlatform) PageSize() int {
	return unix.Getpagesize()
}
