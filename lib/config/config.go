// Copyright 2026 The pdpw Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file when no --config flag is
// given.
const EnvironmentVariable = "PDPW_CONFIG"

// DefaultVaultName is the vault file used when no path is configured,
// placed in the user's home directory.
const DefaultVaultName = "default.pdpw"

// Work factor bounds accepted by Validate. They mirror the limits the
// vault codec enforces.
const (
	minWorkFactor = 1
	maxWorkFactor = 30
)

// Config is the master configuration for pdpw.
type Config struct {
	// Vault configures the vault file and its encryption parameters.
	Vault VaultConfig `yaml:"vault"`

	// Memory configures the secure allocator.
	Memory MemoryConfig `yaml:"memory"`

	// Log configures operational logging.
	Log LogConfig `yaml:"log"`
}

// VaultConfig configures the vault file.
type VaultConfig struct {
	// Path is the vault used when a command names none. Must end in
	// .pdpw.
	// Default: ${HOME}/default.pdpw
	Path string `yaml:"path"`

	// WorkFactor is the scrypt log2(N) for newly saved vaults.
	// Default: 18
	WorkFactor int `yaml:"work_factor"`

	// MaxWorkFactor is the largest work factor accepted when loading.
	// Default: 22
	MaxWorkFactor int `yaml:"max_work_factor"`

	// AtomicWrite saves through a temporary file and rename instead of
	// overwriting in place.
	// Default: false
	AtomicWrite bool `yaml:"atomic_write"`
}

// MemoryConfig configures the secure allocator.
type MemoryConfig struct {
	// Lock pins secret memory in RAM (mlock / VirtualLock). Failures
	// are non-fatal.
	// Default: false
	Lock bool `yaml:"lock"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: warn
	Level string `yaml:"level"`
}

// Default returns the built-in configuration. A loaded file is merged
// on top of it, so fields the file omits keep these values.
func Default() *Config {
	return &Config{
		Vault: VaultConfig{
			Path:          filepath.Join("${HOME}", DefaultVaultName),
			WorkFactor:    18,
			MaxWorkFactor: 22,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from the file named by PDPW_CONFIG. When the
// variable is unset the defaults apply, with variables expanded.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Unlike Load,
// the file must exist.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.expandVariables()

	return cfg, nil
}

// loadFile merges a single configuration file into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	// Unknown keys are rejected. An empty file leaves the defaults.
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": homeDirectory(),
	}
	if c.Vault.Path != "" {
		c.Vault.Path = filepath.Clean(expandVars(c.Vault.Path, vars))
	}
}

func homeDirectory() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, _ := os.UserHomeDir()
	return home
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if c.Vault.Path == "" {
		errs = append(errs, fmt.Errorf("vault.path is required"))
	} else if filepath.Ext(c.Vault.Path) != ".pdpw" {
		errs = append(errs, fmt.Errorf("vault.path must end in .pdpw, got %q", c.Vault.Path))
	}

	if c.Vault.MaxWorkFactor < minWorkFactor || c.Vault.MaxWorkFactor > maxWorkFactor {
		errs = append(errs, fmt.Errorf("vault.max_work_factor must be in [%d, %d], got %d",
			minWorkFactor, maxWorkFactor, c.Vault.MaxWorkFactor))
	}
	if c.Vault.WorkFactor < minWorkFactor || c.Vault.WorkFactor > c.Vault.MaxWorkFactor {
		errs = append(errs, fmt.Errorf("vault.work_factor must be in [%d, vault.max_work_factor], got %d",
			minWorkFactor, c.Vault.WorkFactor))
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SlogLevel parses Level into a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", l.Level)
	}
	return level, nil
}

// EnsureVaultDirectory creates the directory holding the vault, owner
// access only, if it does not exist.
func (c *Config) EnsureVaultDirectory() error {
	directory := filepath.Dir(c.Vault.Path)
	if err := os.MkdirAll(directory, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", directory, err)
	}
	return nil
}
