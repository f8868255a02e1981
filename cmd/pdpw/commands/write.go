// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pdpw/pdpw/cmd/pdpw/cli"
	"github.com/pdpw/pdpw/lib/secret"
)

// maxNotesSize bounds the notes read from standard input.
const maxNotesSize = 4 << 20

type writeParams struct {
	globalParams
	passphraseParams
	Append bool `json:"-" flag:"append,a" desc:"add the input to the end of the existing notes instead of replacing them"`
}

func writeCommand(streams Streams) *cli.Command {
	var params writeParams

	return &cli.Command{
		Name:    "write",
		Summary: "Encrypt standard input into a vault",
		Description: `Read notes from standard input and save them encrypted.

An existing vault is replaced unless --append is given. Either way the
passphrase must open the existing vault first; a new vault asks for
its passphrase twice. Every save uses a fresh salt and nonce.

Standard input is read directly into secure memory.`,
		Usage: "pdpw write [flags] [vault]",
		Examples: []cli.Example{
			{
				Description: "Replace the default vault with a file's contents",
				Command:     "pdpw write < notes.txt",
			},
			{
				Description: "Append a line",
				Command:     "echo 'door code: 4711' | pdpw write --append",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if params.PassphraseFile == "-" {
				return cli.Validation("--passphrase-file - conflicts with reading notes from standard input").
					WithHint("Pass the passphrase in a file, or omit the flag to be prompted.")
			}
			session, err := openSession(params.globalParams, args, streams, logger)
			if err != nil {
				return err
			}
			return session.write(ctx, params)
		},
	}
}

func (s *session) write(ctx context.Context, params writeParams) error {
	exists, err := s.exists()
	if err != nil {
		return err
	}

	var passphrase *secret.Buffer
	if exists {
		passphrase, err = s.passphrase(params.passphraseParams)
	} else {
		passphrase, err = s.newPassphrase(params.passphraseParams)
	}
	if err != nil {
		return err
	}
	defer passphrase.Close()

	// Opening the existing vault proves the passphrase before anything
	// is overwritten.
	existing, err := s.codec.Load(ctx, s.path(), passphrase)
	if err != nil {
		return vaultError(err)
	}
	defer existing.Close()

	input, err := s.allocator.NewFromReader(s.streams.Stdin, maxNotesSize)
	if errors.Is(err, secret.ErrTooLarge) {
		return cli.Validation("notes exceed %d bytes", maxNotesSize)
	}
	if err != nil {
		return cli.Internal("reading notes: %w", err)
	}
	defer input.Close()

	notes := input
	if params.Append {
		if err := existing.Append(input.Bytes()); err != nil {
			return cli.Internal("appending notes: %w", err)
		}
		notes = existing
	}

	if err := s.config.EnsureVaultDirectory(); err != nil {
		return cli.Internal("%w", err)
	}
	if err := s.codec.Save(ctx, s.path(), passphrase, notes); err != nil {
		return vaultError(err)
	}
	s.logger.Info("notes written", "path", s.path(), "bytes", notes.Len(), "append", params.Append)
	return nil
}
