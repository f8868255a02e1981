// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/pdpw/pdpw/cmd/pdpw/cli"
	"github.com/pdpw/pdpw/lib/vault"
)

type infoParams struct {
	globalParams
	cli.JSONOutput
	Diagnose bool `json:"-" flag:"diagnose" desc:"print the envelope in CBOR diagnostic notation"`
}

func infoCommand(streams Streams) *cli.Command {
	var params infoParams

	return &cli.Command{
		Name:    "info",
		Summary: "Describe a vault without decrypting it",
		Description: `Print a vault's format, size, fingerprint, and encryption parameters.

No passphrase is needed: everything shown is stored in cleartext in
the file. The fingerprint is a BLAKE3 hash of the whole file and
changes on every save.`,
		Usage: "pdpw info [flags] [vault]",
		Examples: []cli.Example{
			{
				Description: "Show the default vault's parameters",
				Command:     "pdpw info",
			},
			{
				Description: "Dump the raw envelope structure",
				Command:     "pdpw info --diagnose work.pdpw",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if params.Diagnose && params.OutputJSON {
				return cli.Validation("--diagnose and --json are mutually exclusive")
			}
			session, err := openSession(params.globalParams, args, streams, logger)
			if err != nil {
				return err
			}
			return session.info(params)
		},
	}
}

func (s *session) info(params infoParams) error {
	if params.Diagnose {
		diagnostic, err := vault.Diagnose(s.path())
		if err != nil {
			return vaultError(err)
		}
		fmt.Fprintln(s.streams.Stdout, diagnostic)
		return nil
	}

	info, err := vault.Inspect(s.path())
	if err != nil {
		return vaultError(err)
	}
	if done, err := params.EmitJSON(s.streams.Stdout, info); done {
		return err
	}

	writer := tabwriter.NewWriter(s.streams.Stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "Path:\t%s\n", info.Path)
	fmt.Fprintf(writer, "Format:\t%s\n", info.Format)
	fmt.Fprintf(writer, "Size:\t%d bytes\n", info.Size)
	fmt.Fprintf(writer, "Fingerprint:\t%s\n", info.Fingerprint)
	if info.Format == vault.FormatNative {
		fmt.Fprintf(writer, "Version:\t%d\n", info.Version)
		fmt.Fprintf(writer, "Work factor:\t%d (scrypt N=2^%d)\n", info.WorkFactor, info.WorkFactor)
		fmt.Fprintf(writer, "Salt:\t%d bytes\n", info.SaltSize)
		fmt.Fprintf(writer, "Nonce:\t%d bytes\n", info.NonceSize)
		fmt.Fprintf(writer, "Ciphertext:\t%d bytes\n", info.CiphertextSize)
	}
	return writer.Flush()
}
