// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the flpkg CLI.
//
// Configuration is loaded from a single YAML file specified by:
//   - the FLPKG_CONFIG environment variable, or
//   - the --config flag passed to the command.
//
// There are no fallbacks or automatic discovery: with neither set,
// the built-in defaults apply. This keeps configuration deterministic
// and auditable, with no hidden overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/seedworks/flpkg/lib/seed"
)

// EnvVar names the environment variable pointing at the config file.
const EnvVar = "FLPKG_CONFIG"

// Config is the flpkg configuration.
type Config struct {
	// SeedStoreDir is where memory seeds are persisted.
	// Default: ~/.flpkg/seeds
	SeedStoreDir string `yaml:"seed_store_dir"`

	// OutputDir is where simulation result documents are written.
	// Default: ~/.flpkg/results
	OutputDir string `yaml:"output_dir"`

	// Compression selects the default compact-seed algorithm:
	// "none", "lz4", or "zstd". Default: zstd
	Compression string `yaml:"compression"`

	// PreviewSuffixes extends the container text-preview allow-list
	// beyond the built-in extensions.
	PreviewSuffixes []string `yaml:"preview_suffixes,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		// No home directory (minimal containers): fall back to the
		// working directory.
		home = "."
	}
	return &Config{
		SeedStoreDir: filepath.Join(home, ".flpkg", "seeds"),
		OutputDir:    filepath.Join(home, ".flpkg", "results"),
		Compression:  seed.AlgorithmZstd.String(),
	}
}

// Load reads configuration from the explicit path, from FLPKG_CONFIG,
// or returns the defaults when neither is set. Values absent from the
// file keep their defaults.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvVar)
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values that have a closed domain.
func (c *Config) Validate() error {
	if c.SeedStoreDir == "" {
		return fmt.Errorf("seed_store_dir is empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is empty")
	}
	if _, err := seed.ParseAlgorithm(c.Compression); err != nil {
		return err
	}
	return nil
}

// Algorithm returns the configured compact-seed compression.
// Validate must have accepted the config first.
func (c *Config) Algorithm() seed.Algorithm {
	algorithm, err := seed.ParseAlgorithm(c.Compression)
	if err != nil {
		panic("config: Algorithm called on unvalidated config: " + err.Error())
	}
	return algorithm
}
