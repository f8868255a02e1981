// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"

	"github.com/pdpw/pdpw/lib/codec"
)

// Format identifies the container a vault file uses.
type Format string

const (
	FormatNative Format = "pdpw"
	FormatAge    Format = "age"
)

// Info describes a vault file without decrypting it. Everything here is
// public: it is either stored in cleartext in the file or derived from
// the ciphertext.
type Info struct {
	Path   string `json:"path"`
	Format Format `json:"format"`
	Size   int    `json:"size"`

	// Fingerprint identifies this exact file content. It changes on
	// every save, even when the notes do not.
	Fingerprint string `json:"fingerprint"`

	// Native envelope fields; zero for age files.
	Version        uint16 `json:"version,omitempty"`
	WorkFactor     int    `json:"work_factor,omitempty"`
	SaltSize       int    `json:"salt_size,omitempty"`
	NonceSize      int    `json:"nonce_size,omitempty"`
	CiphertextSize int    `json:"ciphertext_size,omitempty"`
}

// Inspect reads the vault at path and reports its public metadata.
func Inspect(path string) (*Info, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vault: %w", err)
	}

	info := &Info{
		Path:        path,
		Size:        len(data),
		Fingerprint: Fingerprint(data),
	}
	if isLegacy(data) {
		info.Format = FormatAge
		return info, nil
	}

	envelope, err := DecodeEnvelope(data, maxSupportedWorkFactor)
	if err != nil {
		return nil, fmt.Errorf("vault %s: %w", path, err)
	}
	info.Format = FormatNative
	info.Version = envelope.Version
	info.WorkFactor = int(envelope.KDF.WorkFactor)
	info.SaltSize = len(envelope.KDF.Salt)
	info.NonceSize = len(envelope.Nonce)
	info.CiphertextSize = len(envelope.Ciphertext)
	return info, nil
}

// Fingerprint returns the first 16 bytes of the BLAKE3 hash of data,
// hex encoded.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// Diagnose returns the CBOR diagnostic notation of a native envelope.
func Diagnose(path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading vault: %w", err)
	}
	if !isNative(data) {
		return "", fmt.Errorf("vault %s: not a native envelope", path)
	}
	return codec.Diagnose(data[len(magic):])
}
