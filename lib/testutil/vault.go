// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
)

var uniqueCounter atomic.Uint64

// UniqueName returns "prefix-N" where N increases monotonically across
// the test binary.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}

// VaultPath returns a path ending in .pdpw inside a temporary directory
// owned by t. The file does not exist yet.
func VaultPath(t testing.TB, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), UniqueName(name)+".pdpw")
}
