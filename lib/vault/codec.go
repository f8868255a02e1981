// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/pdpw/pdpw/lib/secret"
)

// Options configures a Codec.
type Options struct {
	// Allocator supplies memory for every secret buffer. Nil means
	// secret.Default().
	Allocator *secret.Allocator

	// WorkFactor is the scrypt log2(N) for new envelopes. Zero means
	// DefaultWorkFactor.
	WorkFactor int

	// MaxWorkFactor is the largest work factor Load accepts. Zero means
	// DefaultMaxWorkFactor.
	MaxWorkFactor int

	// AtomicWrite makes Save write a temporary file and rename it into
	// place. When false, Save overwrites the vault directly and a crash
	// mid-write can leave a truncated file.
	AtomicWrite bool

	// Logger receives operational records. Nil means slog.Default().
	Logger *slog.Logger
}

// Codec loads and saves vault files. It holds only configuration and
// is safe for concurrent use, but it does not serialize access to a
// file; see the package documentation.
type Codec struct {
	allocator     secret.Allocator
	workFactor    int
	maxWorkFactor int
	atomicWrite   bool
	logger        *slog.Logger

	derive keyDerivation
	random io.Reader
}

// New returns a Codec configured by options.
func New(options Options) (*Codec, error) {
	codec := &Codec{
		workFactor:    options.WorkFactor,
		maxWorkFactor: options.MaxWorkFactor,
		atomicWrite:   options.AtomicWrite,
		logger:        options.Logger,
		derive:        defaultKeyDerivation,
		random:        defaultRandom,
	}
	if options.Allocator != nil {
		codec.allocator = *options.Allocator
	} else {
		codec.allocator = secret.Default()
	}
	if codec.workFactor == 0 {
		codec.workFactor = DefaultWorkFactor
	}
	if codec.maxWorkFactor == 0 {
		codec.maxWorkFactor = DefaultMaxWorkFactor
	}
	if codec.logger == nil {
		codec.logger = slog.Default()
	}

	if codec.maxWorkFactor < 1 || codec.maxWorkFactor > maxSupportedWorkFactor {
		return nil, fmt.Errorf("vault: max work factor %d outside [1, %d]", codec.maxWorkFactor, maxSupportedWorkFactor)
	}
	if codec.workFactor < 1 || codec.workFactor > codec.maxWorkFactor {
		return nil, fmt.Errorf("vault: work factor %d outside [1, %d]", codec.workFactor, codec.maxWorkFactor)
	}
	return codec, nil
}

// Load decrypts the vault at path with passphrase. A path that does not
// exist yields an empty buffer: a fresh vault that has never been
// saved. The caller must Close the returned buffer.
func (c *Codec) Load(ctx context.Context, path string, passphrase *secret.Buffer) (*secret.Buffer, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Cause: causeCanceled, Err: err}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Info("vault does not exist yet, starting empty", "path", path)
		empty, err := c.allocator.New(0)
		if err != nil {
			return nil, &LoadError{Path: path, Cause: causeMemory, Err: err}
		}
		return empty, nil
	}
	if err != nil {
		return nil, &LoadError{Path: path, Cause: causeRead, Err: err}
	}

	var plaintext *secret.Buffer
	var format Format
	if isLegacy(data) {
		format = FormatAge
		plaintext, err = c.openLegacy(ctx, path, data, passphrase)
	} else {
		format = FormatNative
		plaintext, err = c.open(ctx, path, data, passphrase)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Debug("vault loaded",
		"path", path,
		"format", format,
		"fingerprint", Fingerprint(data),
	)
	return plaintext, nil
}

// open decrypts a native envelope.
func (c *Codec) open(ctx context.Context, path string, data []byte, passphrase *secret.Buffer) (*secret.Buffer, error) {
	envelope, err := DecodeEnvelope(data, c.maxWorkFactor)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: causeMalformed + ": " + err.Error(), Err: err}
	}
	associatedData, err := envelope.associatedData()
	if err != nil {
		return nil, &LoadError{Path: path, Cause: causeMalformed, Err: err}
	}

	key, err := deriveKey(ctx, c.allocator, c.derive, passphrase, envelope.KDF)
	if err != nil {
		return nil, c.loadFailure(ctx, path, causeDerive, err)
	}
	defer key.Close()

	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, &LoadError{Path: path, Cause: causeDerive, Err: err}
	}

	plaintext, err := c.allocator.New(len(envelope.Ciphertext))
	if err != nil {
		return nil, &LoadError{Path: path, Cause: causeMemory, Err: err}
	}
	// Open decrypts in place into the mapped region: the destination has
	// exactly the capacity needed, so no heap buffer is involved. The tag
	// is verified before any plaintext is exposed.
	if _, err := aead.Open(plaintext.Bytes()[:0], envelope.Nonce, envelope.sealed(), associatedData); err != nil {
		plaintext.Close()
		return nil, &LoadError{Path: path, Cause: causeDecrypt, Err: err}
	}
	return plaintext, nil
}

// Save encrypts plaintext under passphrase and writes the envelope to
// path, replacing any existing file. Every call draws a new salt and
// nonce. On failure the plaintext is untouched and the caller may retry.
func (c *Codec) Save(ctx context.Context, path string, passphrase, plaintext *secret.Buffer) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &SaveError{Path: path, Cause: causeCanceled, Err: err}
	}

	params, err := newKDFParams(c.random, c.workFactor)
	if err != nil {
		return &SaveError{Path: path, Cause: causeRandom, Err: err}
	}
	nonce, err := newNonce(c.random)
	if err != nil {
		return &SaveError{Path: path, Cause: causeRandom, Err: err}
	}

	key, err := deriveKey(ctx, c.allocator, c.derive, passphrase, params)
	if err != nil {
		return c.saveFailure(ctx, path, causeDerive, err)
	}
	defer key.Close()

	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return &SaveError{Path: path, Cause: causeEncrypt, Err: err}
	}

	envelope := &Envelope{
		Version: FormatVersion,
		KDF:     params,
		Nonce:   nonce,
	}
	associatedData, err := envelope.associatedData()
	if err != nil {
		return &SaveError{Path: path, Cause: causeEncode, Err: err}
	}
	sealed := aead.Seal(nil, nonce, plaintext.Bytes(), associatedData)
	split := len(sealed) - tagSize
	envelope.Ciphertext = sealed[:split]
	envelope.Tag = sealed[split:]

	data, err := envelope.Encode()
	if err != nil {
		return &SaveError{Path: path, Cause: causeEncode, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return &SaveError{Path: path, Cause: causeCanceled, Err: err}
	}
	if err := writeFile(path, data, c.atomicWrite); err != nil {
		return &SaveError{Path: path, Cause: causeWrite, Err: err}
	}

	c.logger.Info("vault saved",
		"path", path,
		"bytes", len(data),
		"work_factor", params.WorkFactor,
		"atomic", c.atomicWrite,
		"fingerprint", Fingerprint(data),
	)
	return nil
}

func (c *Codec) loadFailure(ctx context.Context, path, cause string, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		cause = causeCanceled
	}
	return &LoadError{Path: path, Cause: cause, Err: err}
}

func (c *Codec) saveFailure(ctx context.Context, path, cause string, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		cause = causeCanceled
	}
	return &SaveError{Path: path, Cause: cause, Err: err}
}
