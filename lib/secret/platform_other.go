// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package secret

import "os"

type nativePlatform struct{}

func (nativePlatform) Map(int) ([]byte, error) { return nil, ErrUnsupportedPlatform }

func (nativePlatform) Unmap([]byte) error { return ErrUnsupportedPlatform }

func (nativePlatform) Lock([]byte) error { return ErrUnsupportedPlatform }

func (nativePlatform) Unlock([]byte) error { return ErrUnsupportedPlatform }

func (nativePlatform) PageSize() int { return os.Getpagesize() }
