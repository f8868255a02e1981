// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"github.com/pdpw/pdpw/lib/secret"
)

const (
	// DefaultWorkFactor is the scrypt log2(N) used for new envelopes.
	// Matches age's passphrase default.
	DefaultWorkFactor = 18

	// DefaultMaxWorkFactor caps the work factor accepted from a file,
	// so a crafted vault cannot demand unbounded memory and time.
	DefaultMaxWorkFactor = 22

	// maxSupportedWorkFactor bounds configuration; scrypt at 2^30 needs
	// 128 GiB.
	maxSupportedWorkFactor = 30

	scryptR = 8
	scryptP = 1
	keySize = chacha20poly1305.KeySize
)

// keyDerivation has the signature of scrypt.Key.
type keyDerivation func(password, salt []byte, n, r, p, keyLen int) ([]byte, error)

// newKDFParams draws a fresh salt.
func newKDFParams(random io.Reader, workFactor int) (KDFParams, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(random, salt); err != nil {
		return KDFParams{}, fmt.Errorf("generating salt: %w", err)
	}
	return KDFParams{Salt: salt, WorkFactor: uint8(workFactor)}, nil
}

func newNonce(random io.Reader) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(random, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return nonce, nil
}

// deriveKey runs the KDF on its own goroutine so that ctx can abandon
// it. The goroutine works on a private copy of the passphrase, so the
// caller may close its passphrase as soon as deriveKey returns. An
// abandoned derivation still closes both its passphrase copy and the
// key it produces.
func deriveKey(ctx context.Context, allocator secret.Allocator, derive keyDerivation, passphrase *secret.Buffer, params KDFParams) (*secret.Buffer, error) {
	password, err := allocator.New(passphrase.Len())
	if err != nil {
		return nil, err
	}
	copy(password.Bytes(), passphrase.Bytes())

	return runDetached(ctx, func() (*secret.Buffer, error) {
		defer password.Close()

		derived, err := derive(password.Bytes(), params.Salt, 1<<params.WorkFactor, scryptR, scryptP, keySize)
		if err != nil {
			return nil, fmt.Errorf("scrypt: %w", err)
		}
		// NewFromBytes zeros the heap copy scrypt returned.
		return allocator.NewFromBytes(derived)
	})
}

// runDetached runs work on a new goroutine and waits for it or for ctx,
// whichever comes first. When ctx wins, a collector goroutine waits for
// work to finish and closes whatever buffer it produced.
func runDetached(ctx context.Context, work func() (*secret.Buffer, error)) (*secret.Buffer, error) {
	type result struct {
		buffer *secret.Buffer
		err    error
	}
	done := make(chan result, 1)
	go func() {
		buffer, err := work()
		done <- result{buffer: buffer, err: err}
	}()

	select {
	case outcome := <-done:
		return outcome.buffer, outcome.err
	case <-ctx.Done():
		go func() {
			outcome := <-done
			if outcome.buffer != nil {
				outcome.buffer.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

var defaultKeyDerivation keyDerivation = scrypt.Key

var defaultRandom io.Reader = rand.Reader
