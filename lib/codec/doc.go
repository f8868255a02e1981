// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration used for on-disk vault
// envelopes.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. Same
// logical data always produces identical bytes. The decoder is strict:
// no duplicate map keys, no indefinite lengths, and small nesting and
// element limits, since its input is an untrusted file.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Envelope types use `cbor:",toarray"` so that fields are encoded
// positionally in declaration order. Reordering fields in such a struct
// is a format change.
package codec
