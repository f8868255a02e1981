// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

// Package vault persists credential notes as passphrase-encrypted
// envelopes on disk.
//
// A [Codec] loads and saves vault files. Every secret it touches -- the
// passphrase copy handed to the KDF, the derived key, and the decrypted
// notes -- lives in a [secret.Buffer] from the configured allocator, so
// it is zeroed and unmapped on every exit path, including cancellation.
//
// # Envelope format
//
// A vault file is the four bytes "PDPW" followed by one CBOR array
// (Core Deterministic Encoding) with fields in this fixed order:
//
//	[ format_version, [ salt, work_factor ], nonce, ciphertext, tag ]
//
// The key is scrypt(passphrase, salt, N=2^work_factor, r=8, p=1), 32
// bytes. Encryption is XChaCha20-Poly1305 with a random 24-byte nonce.
// The associated data is the CBOR encoding of the first three fields,
// so a changed version, salt, work factor, or nonce fails
// authentication just like a changed ciphertext or tag. Every save
// draws a fresh salt and nonce.
//
// Files written by earlier releases in the age format
// (age-encryption.org/v1, scrypt recipient) are still readable. Saving
// always writes the native envelope.
//
// # Failure reporting
//
// Load failures are *LoadError values matching [ErrLoad]; save failures
// are *SaveError values matching [ErrSave]. A wrong passphrase and a
// corrupted ciphertext produce the same cause. Paths without the .pdpw
// extension fail with [ErrInvalidTarget] before any I/O.
//
// # Concurrency
//
// A Codec holds only configuration and may be shared. It does not lock
// files: concurrent saves to one path race, last write wins. Callers
// serialize saves per path.
package vault
