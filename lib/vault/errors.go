// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Extension is the file extension every vault path must carry.
const Extension = ".pdpw"

var (
	// ErrInvalidTarget is returned for vault paths without the .pdpw
	// extension. No I/O happens for such paths.
	ErrInvalidTarget = errors.New("vault: not a *" + Extension + " file")

	// ErrLoad matches every *LoadError.
	ErrLoad = errors.New("vault: load failed")

	// ErrSave matches every *SaveError.
	ErrSave = errors.New("vault: save failed")
)

// Load failure causes. A wrong passphrase and tampered ciphertext both
// report causeDecrypt; the AEAD cannot tell them apart.
const (
	causeRead      = "cannot read file"
	causeMalformed = "malformed envelope"
	causeDerive    = "key derivation failed"
	causeDecrypt   = "wrong passphrase or corrupted vault"
	causeMemory    = "secure memory unavailable"
	causeCanceled  = "canceled"
)

// Save failure causes.
const (
	causeRandom  = "cannot generate random parameters"
	causeEncrypt = "encryption failed"
	causeEncode  = "cannot encode envelope"
	causeWrite   = "cannot write file"
)

// LoadError reports a failed Load. Cause is a short human-readable
// reason; it never contains secret material.
type LoadError struct {
	Path  string
	Cause string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading vault %s: %s", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrLoad) true for every LoadError.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// SaveError reports a failed Save. The caller still holds the
// plaintext and may retry.
type SaveError struct {
	Path  string
	Cause string
	Err   error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("saving vault %s: %s", e.Path, e.Cause)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrSave) true for every SaveError.
func (e *SaveError) Is(target error) bool { return target == ErrSave }

// ValidatePath rejects paths that do not end in the vault extension.
func ValidatePath(path string) error {
	if filepath.Ext(path) != Extension {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, path)
	}
	return nil
}
