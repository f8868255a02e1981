// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"filippo.io/age"

	"github.com/pdpw/pdpw/lib/secret"
)

// ageHeader is the first line of every age file.
var ageHeader = []byte("age-encryption.org/v1\n")

func isLegacy(data []byte) bool {
	return bytes.HasPrefix(data, ageHeader)
}

// openLegacy decrypts an age file encrypted to a passphrase. age takes
// the passphrase as a string, so one heap copy of it exists for the
// duration of the call.
func (c *Codec) openLegacy(ctx context.Context, path string, data []byte, passphrase *secret.Buffer) (*secret.Buffer, error) {
	identity, err := age.NewScryptIdentity(passphrase.String())
	if err != nil {
		return nil, &LoadError{Path: path, Cause: causeDerive, Err: err}
	}
	identity.SetMaxWorkFactor(c.maxWorkFactor)

	plaintext, err := runDetached(ctx, func() (*secret.Buffer, error) {
		reader, err := age.Decrypt(bytes.NewReader(data), identity)
		if err != nil {
			return nil, errLegacyHeader{err}
		}
		// The plaintext is never longer than the file that carries it.
		return c.allocator.NewFromReader(reader, len(data))
	})
	if err == nil {
		return plaintext, nil
	}

	var header errLegacyHeader
	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return nil, &LoadError{Path: path, Cause: causeCanceled, Err: err}
	case errors.As(err, &header):
		var noMatch *age.NoIdentityMatchError
		if errors.As(header.err, &noMatch) {
			return nil, &LoadError{Path: path, Cause: causeDecrypt, Err: header.err}
		}
		return nil, &LoadError{Path: path, Cause: causeMalformed, Err: header.err}
	default:
		// Payload authentication failures surface while reading.
		return nil, &LoadError{Path: path, Cause: causeDecrypt, Err: err}
	}
}

// errLegacyHeader marks a failure while age parsed the header and
// unwrapped the file key, before any payload was read.
type errLegacyHeader struct{ err error }

func (e errLegacyHeader) Error() string { return fmt.Sprintf("age header: %v", e.err) }

func (e errLegacyHeader) Unwrap() error { return e.err }
