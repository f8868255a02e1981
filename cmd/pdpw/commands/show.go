// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"

	"github.com/pdpw/pdpw/cmd/pdpw/cli"
)

type showParams struct {
	globalParams
	passphraseParams
}

func showCommand(streams Streams) *cli.Command {
	var params showParams

	return &cli.Command{
		Name:    "show",
		Summary: "Decrypt a vault and print its notes",
		Description: `Decrypt a vault and write its notes to standard output.

The vault defaults to vault.path from the configuration. The decrypted
text is written straight from secure memory to stdout and is wiped as
soon as the write completes.`,
		Usage: "pdpw show [flags] [vault]",
		Examples: []cli.Example{
			{
				Description: "Print the default vault",
				Command:     "pdpw show",
			},
			{
				Description: "Read the passphrase from a file",
				Command:     "pdpw show --passphrase-file ~/.config/pdpw/passphrase work.pdpw",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			session, err := openSession(params.globalParams, args, streams, logger)
			if err != nil {
				return err
			}
			return session.show(ctx, params.passphraseParams)
		},
	}
}

func (s *session) show(ctx context.Context, params passphraseParams) error {
	exists, err := s.exists()
	if err != nil {
		return err
	}
	if !exists {
		return cli.NotFound("vault %s does not exist", s.path()).
			WithHint("Create it with 'pdpw write'.")
	}

	passphrase, err := s.passphrase(params)
	if err != nil {
		return err
	}
	defer passphrase.Close()

	notes, err := s.codec.Load(ctx, s.path(), passphrase)
	if err != nil {
		return vaultError(err)
	}
	defer notes.Close()

	if _, err := notes.WriteTo(s.streams.Stdout); err != nil {
		return cli.Internal("writing notes: %w", err)
	}
	return nil
}
