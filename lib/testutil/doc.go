// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for pdpw packages.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so that tests waiting on goroutines (a detached key
// derivation, a collector closing an abandoned buffer) never hang the
// suite. They are the only place tests use wall-clock timeouts.
//
// [VaultPath] returns a fresh .pdpw path inside the test's temporary
// directory. [UniqueName] disambiguates files created by parallel
// subtests that share a directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no pdpw-internal dependencies.
package testutil
