// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for the pdpw binary.
//
// A [Command] tree dispatches on the first positional argument. Leaf
// commands declare their flags as a tagged params struct (see
// [BindFlags]); the framework parses flags with pflag, suggests close
// matches for mistyped commands and flags, and calls Run with a
// context and a logger from [NewCommandLogger].
//
// Commands report failures as [ToolError] values built with
// [Validation], [NotFound], or [Internal], optionally with a hint line.
// [ExitError] carries a handled non-zero exit code.
//
// [ReadPassphrase] prompts on a terminal with echo disabled and stores
// each keystroke directly in a secret buffer, so the passphrase never
// sits in an ordinary heap slice.
package cli
