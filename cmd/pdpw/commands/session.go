// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pdpw/pdpw/cmd/pdpw/cli"
	"github.com/pdpw/pdpw/lib/config"
	"github.com/pdpw/pdpw/lib/secret"
	"github.com/pdpw/pdpw/lib/vault"
)

// globalParams are the flags every vault command accepts.
type globalParams struct {
	ConfigFile string `json:"-" flag:"config" desc:"configuration file (default: $PDPW_CONFIG, else built-in defaults)"`
	LogLevel   string `json:"-" flag:"log-level" desc:"override log.level (debug, info, warn, error)"`
}

// passphraseParams select where the passphrase comes from.
type passphraseParams struct {
	PassphraseFile string `json:"-" flag:"passphrase-file,p" desc:"read the passphrase from a file instead of prompting (\"-\" for stdin)"`
}

// session is the state one command invocation works with.
type session struct {
	config    *config.Config
	allocator secret.Allocator
	codec     *vault.Codec
	logger    *slog.Logger
	streams   Streams
}

// openSession loads configuration, applies the log level, installs the
// secret allocator, and resolves the vault path from args. At most one
// positional argument, the vault path, is accepted.
func openSession(params globalParams, args []string, streams Streams, logger *slog.Logger) (*session, error) {
	if len(args) > 1 {
		return nil, cli.Validation("expected at most one vault path, got %d arguments", len(args))
	}

	var cfg *config.Config
	var err error
	if params.ConfigFile != "" {
		cfg, err = config.LoadFile(params.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cli.NotFound("%w", err)
		}
		return nil, cli.Validation("%w", err)
	}
	if params.LogLevel != "" {
		cfg.Log.Level = params.LogLevel
	}
	if len(args) == 1 {
		cfg.Vault.Path = args[0]
		if err := vault.ValidatePath(cfg.Vault.Path); err != nil {
			return nil, vaultError(err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration:\n%w", err)
	}

	level, _ := cfg.Log.SlogLevel()
	cli.SetLogLevel(level)

	allocator := secret.NewAllocator(secret.AllocatorOptions{
		LockMemory: cfg.Memory.Lock,
		Logger:     logger,
	})
	if err := secret.Install(allocator); err != nil {
		logger.Debug("secret allocator already installed", "error", err)
	}
	allocator = secret.Default()

	codec, err := vault.New(vault.Options{
		Allocator:     &allocator,
		WorkFactor:    cfg.Vault.WorkFactor,
		MaxWorkFactor: cfg.Vault.MaxWorkFactor,
		AtomicWrite:   cfg.Vault.AtomicWrite,
		Logger:        logger,
	})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}

	return &session{
		config:    cfg,
		allocator: allocator,
		codec:     codec,
		logger:    logger,
		streams:   streams,
	}, nil
}

// path returns the vault this invocation operates on.
func (s *session) path() string {
	return s.config.Vault.Path
}

// exists reports whether the vault file is present.
func (s *session) exists() (bool, error) {
	_, err := os.Stat(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, cli.Internal("checking vault %s: %w", s.path(), err)
	}
	return true, nil
}

// passphrase returns the passphrase for an existing vault.
func (s *session) passphrase(params passphraseParams) (*secret.Buffer, error) {
	if params.PassphraseFile != "" {
		return s.readPassphraseFile(params.PassphraseFile)
	}
	return interrupted(cli.ReadPassphrase(s.streams.Terminal, s.streams.Stderr, "Passphrase: ", s.allocator))
}

// newPassphrase returns the passphrase for a vault being created.
// Interactive entry is confirmed by typing it twice.
func (s *session) newPassphrase(params passphraseParams) (*secret.Buffer, error) {
	if params.PassphraseFile != "" {
		return s.readPassphraseFile(params.PassphraseFile)
	}
	return interrupted(cli.ReadNewPassphrase(s.streams.Terminal, s.streams.Stderr, s.allocator))
}

// interrupted turns Ctrl-C at a prompt into a silent exit with the
// conventional status for SIGINT.
func interrupted(passphrase *secret.Buffer, err error) (*secret.Buffer, error) {
	if errors.Is(err, cli.ErrInterrupted) {
		return nil, &cli.ExitError{Code: 130}
	}
	return passphrase, err
}

func (s *session) readPassphraseFile(path string) (*secret.Buffer, error) {
	var passphrase *secret.Buffer
	var err error
	if path == "-" {
		passphrase, err = s.allocator.ReadTrimmed(s.streams.Stdin)
	} else {
		passphrase, err = s.allocator.ReadFromPath(path)
	}
	switch {
	case err == nil:
		return passphrase, nil
	case errors.Is(err, fs.ErrNotExist):
		return nil, cli.NotFound("passphrase file: %w", err)
	default:
		return nil, cli.Validation("passphrase file: %w", err)
	}
}

// vaultError categorizes an error from the vault package.
func vaultError(err error) error {
	switch {
	case errors.Is(err, vault.ErrInvalidTarget):
		return cli.Validation("%w", err).WithHint("Vault files must end in " + vault.Extension + ".")
	case errors.Is(err, fs.ErrNotExist):
		return cli.NotFound("%w", err)
	default:
		return cli.Internal("%w", err)
	}
}
