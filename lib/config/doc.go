// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for pdpw.
//
// Configuration comes from at most one file, named either by the
// PDPW_CONFIG environment variable (via [Load]) or by a --config flag
// (via [LoadFile]). There is no ~/.config discovery and no automatic
// file search. When no file is named, [Default] applies unchanged.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Vault, Memory, Log
//   - [Default] -- returns a Config with built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other pdpw packages.
package config
