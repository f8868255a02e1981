// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/pdpw/pdpw/lib/codec"
)

// FormatVersion is the envelope version written by Save. Increment it
// for any change that breaks compatibility with the existing layout.
const FormatVersion uint16 = 1

const (
	saltSize  = 16
	nonceSize = chacha20poly1305.NonceSizeX
	tagSize   = chacha20poly1305.Overhead
)

// magic prefixes every native envelope.
var magic = []byte("PDPW")

// KDFParams are the key-derivation inputs stored in the envelope.
// WorkFactor is log2 of the scrypt cost parameter N.
type KDFParams struct {
	_          struct{} `cbor:",toarray"`
	Salt       []byte
	WorkFactor uint8
}

// Envelope is the on-disk vault container. Field order is the wire
// order.
type Envelope struct {
	_          struct{} `cbor:",toarray"`
	Version    uint16
	KDF        KDFParams
	Nonce      []byte
	Ciphertext []byte
	Tag        []byte
}

// envelopeHeader is the authenticated prefix of an Envelope.
type envelopeHeader struct {
	_       struct{} `cbor:",toarray"`
	Version uint16
	KDF     KDFParams
	Nonce   []byte
}

// Encode returns the file bytes for the envelope: magic, then CBOR.
func (e *Envelope) Encode() ([]byte, error) {
	body, err := codec.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}
	data := make([]byte, 0, len(magic)+len(body))
	data = append(data, magic...)
	return append(data, body...), nil
}

// associatedData is the AEAD associated data: the deterministic CBOR
// encoding of version, KDF parameters, and nonce.
func (e *Envelope) associatedData() ([]byte, error) {
	return codec.Marshal(envelopeHeader{
		Version: e.Version,
		KDF:     e.KDF,
		Nonce:   e.Nonce,
	})
}

// sealed returns ciphertext||tag, the layout the AEAD expects.
func (e *Envelope) sealed() []byte {
	combined := make([]byte, 0, len(e.Ciphertext)+len(e.Tag))
	combined = append(combined, e.Ciphertext...)
	return append(combined, e.Tag...)
}

// isNative reports whether data starts with the envelope magic.
func isNative(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// DecodeEnvelope parses and validates file bytes. Work factors outside
// [1, maxWorkFactor] are rejected here, before any key derivation.
func DecodeEnvelope(data []byte, maxWorkFactor int) (*Envelope, error) {
	if !isNative(data) {
		return nil, fmt.Errorf("missing %q magic", magic)
	}
	var envelope Envelope
	if err := codec.Unmarshal(data[len(magic):], &envelope); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}
	if err := envelope.validate(maxWorkFactor); err != nil {
		return nil, err
	}
	return &envelope, nil
}

func (e *Envelope) validate(maxWorkFactor int) error {
	if e.Version != FormatVersion {
		return fmt.Errorf("unsupported format version %d", e.Version)
	}
	if len(e.KDF.Salt) != saltSize {
		return fmt.Errorf("salt is %d bytes, want %d", len(e.KDF.Salt), saltSize)
	}
	if e.KDF.WorkFactor < 1 || int(e.KDF.WorkFactor) > maxWorkFactor {
		return fmt.Errorf("work factor %d outside [1, %d]", e.KDF.WorkFactor, maxWorkFactor)
	}
	if len(e.Nonce) != nonceSize {
		return fmt.Errorf("nonce is %d bytes, want %d", len(e.Nonce), nonceSize)
	}
	if len(e.Tag) != tagSize {
		return fmt.Errorf("tag is %d bytes, want %d", len(e.Tag), tagSize)
	}
	return nil
}
