// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the pdpw command tree. Every command reads
// and writes through a [Streams] value so tests can drive the tree
// without touching the process's standard streams.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/pdpw/pdpw/cmd/pdpw/cli"
	"github.com/pdpw/pdpw/lib/version"
)

// Streams are the files a command tree reads and writes.
type Streams struct {
	// Stdin supplies note content for write and "-" passphrase files.
	Stdin *os.File

	// Stdout receives decrypted notes and command results.
	Stdout io.Writer

	// Stderr receives prompts and help text.
	Stderr io.Writer

	// Terminal is where interactive passphrase prompts read keystrokes.
	// It may differ from Stdin when note content is piped in.
	Terminal *os.File
}

// StandardStreams returns the process streams. Prompts read from the
// controlling terminal when one can be opened, so "pdpw write" works
// with piped input.
func StandardStreams() Streams {
	return Streams{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Terminal: openTerminal(),
	}
}

func openTerminal() *os.File {
	if runtime.GOOS != "windows" {
		if tty, err := os.Open("/dev/tty"); err == nil {
			return tty
		}
	}
	return os.Stdin
}

// Root builds the pdpw command tree on the process streams.
func Root() *cli.Command {
	return NewRoot(StandardStreams())
}

// NewRoot builds the pdpw command tree on streams.
func NewRoot(streams Streams) *cli.Command {
	return &cli.Command{
		Name: "pdpw",
		Description: `pdpw: a passphrase-protected notes vault.

Notes are kept in a single encrypted .pdpw file. Decrypted text and
passphrases live only in dedicated memory mappings that are wiped
before they are returned to the operating system.`,
		Output: streams.Stderr,
		Subcommands: []*cli.Command{
			showCommand(streams),
			writeCommand(streams),
			infoCommand(streams),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					if len(args) > 0 {
						return cli.Validation("version takes no arguments, got %q", args[0])
					}
					fmt.Fprintf(streams.Stdout, "pdpw %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Store notes from a file in the default vault",
				Command:     "pdpw write < notes.txt",
			},
			{
				Description: "Print the notes",
				Command:     "pdpw show",
			},
			{
				Description: "Add a line to a specific vault",
				Command:     "echo 'wifi: hunter2' | pdpw write --append ~/work.pdpw",
			},
			{
				Description: "Inspect a vault without decrypting it",
				Command:     "pdpw info --json ~/work.pdpw",
			},
		},
	}
}
