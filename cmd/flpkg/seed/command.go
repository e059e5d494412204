// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package seed implements the "flpkg seed" CLI subcommands for
// creating, listing, and compressing memory seeds.
//
// The store location defaults to the configured seed_store_dir
// (FLPKG_CONFIG or ~/.flpkg/seeds) and can be overridden per
// invocation with --store.
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/seedworks/flpkg/cmd/flpkg/cli"
	"github.com/seedworks/flpkg/lib/clock"
	"github.com/seedworks/flpkg/lib/config"
	"github.com/seedworks/flpkg/lib/seed"
)

// Command returns the top-level "seed" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "seed",
		Summary: "Manage checksummed memory seeds",
		Description: `Create, list, and compress memory seeds.

A seed is a named JSON document pairing particle data with metadata,
stamped with a creation time and a keyed BLAKE3 checksum over its
canonical encoding. Seeds are immutable once written: creating a seed
under an existing name fails and leaves the store unchanged.`,
		Subcommands: []*cli.Command{
			createCommand(),
			listCommand(),
			showCommand(),
			compressCommand(),
			decompressCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Archive a simulation result",
				Command:     `flpkg seed create run-42 --particle '{"value": 7}' --metadata '{"origin": "manual"}'`,
			},
			{
				Description: "List all stored seeds",
				Command:     "flpkg seed list",
			},
			{
				Description: "Produce a compact binary form",
				Command:     "flpkg seed compress run-42 --algorithm zstd --out run-42.flsd",
			},
		},
	}
}

// openStore resolves the store directory (flag override, then config)
// and opens it with the wall clock.
func openStore(storeDir string) (*seed.Store, error) {
	if storeDir == "" {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		storeDir = cfg.SeedStoreDir
	}
	return seed.NewStore(storeDir, clock.Real())
}

func createCommand() *cli.Command {
	var storeDir, particleJSON, metadataJSON string

	return &cli.Command{
		Name:    "create",
		Summary: "Create a new seed from JSON payloads",
		Usage:   "flpkg seed create <name> --particle <json> [--metadata <json>]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flags.StringVar(&storeDir, "store", "", "seed store directory (default: configured seed_store_dir)")
			flags.StringVar(&particleJSON, "particle", "", "particle data as a JSON document (required)")
			flags.StringVar(&metadataJSON, "metadata", "{}", "metadata as a JSON document")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one seed name, got %d args", len(args))
			}
			if particleJSON == "" {
				return fmt.Errorf("--particle is required")
			}

			var particle, metadata any
			if err := json.Unmarshal([]byte(particleJSON), &particle); err != nil {
				return fmt.Errorf("parsing --particle: %w", err)
			}
			if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
				return fmt.Errorf("parsing --metadata: %w", err)
			}

			store, err := openStore(storeDir)
			if err != nil {
				return err
			}
			result, err := store.Create(args[0], particle, metadata)
			if err != nil {
				return err
			}

			cli.NewCommandLogger().Info("seed created",
				"command", "seed/create",
				"seed", result.Name,
				"file", result.File,
				"checksum", result.Checksum)
			fmt.Printf("created %s (%s)\n", result.Name, result.Checksum[:12])
			return nil
		},
	}
}

func listCommand() *cli.Command {
	var storeDir string
	var asJSON bool

	return &cli.Command{
		Name:    "list",
		Summary: "List stored seeds",
		Usage:   "flpkg seed list [--json]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flags.StringVar(&storeDir, "store", "", "seed store directory (default: configured seed_store_dir)")
			flags.BoolVar(&asJSON, "json", false, "output as JSON")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("list takes no positional arguments")
			}
			store, err := openStore(storeDir)
			if err != nil {
				return err
			}
			descriptors, err := store.List()
			if err != nil {
				return err
			}

			if asJSON {
				return cli.WriteJSON(descriptors)
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "NAME\tCREATED\tSIZE\tCHECKSUM\n")
			for _, d := range descriptors {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					d.Name,
					d.CreatedAt.UTC().Format(time.RFC3339),
					humanize.Bytes(uint64(d.Size)),
					d.Checksum[:12])
			}
			return tw.Flush()
		},
	}
}

func showCommand() *cli.Command {
	var storeDir string

	return &cli.Command{
		Name:    "show",
		Summary: "Print a seed document",
		Usage:   "flpkg seed show <name>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("show", pflag.ContinueOnError)
			flags.StringVar(&storeDir, "store", "", "seed store directory (default: configured seed_store_dir)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one seed name, got %d args", len(args))
			}
			store, err := openStore(storeDir)
			if err != nil {
				return err
			}
			document, err := store.Load(args[0])
			if err != nil {
				return err
			}
			return cli.WriteJSON(document)
		},
	}
}

func compressCommand() *cli.Command {
	var storeDir, algorithmName, outPath string

	return &cli.Command{
		Name:    "compress",
		Summary: "Encode a seed into its compact binary form",
		Usage:   "flpkg seed compress <name> [--algorithm zstd|lz4|none] [--out <file>]",
		Description: `Encode a stored seed into the compact FLSD envelope: a fixed
header followed by the compressed canonical encoding of the document.
When the payload does not shrink under the requested algorithm the
envelope records it uncompressed.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("compress", pflag.ContinueOnError)
			flags.StringVar(&storeDir, "store", "", "seed store directory (default: configured seed_store_dir)")
			flags.StringVar(&algorithmName, "algorithm", "", "compression algorithm (default: configured compression)")
			flags.StringVar(&outPath, "out", "", "output file (default: <name>.flsd)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one seed name, got %d args", len(args))
			}
			name := args[0]

			if algorithmName == "" {
				cfg, err := config.Load("")
				if err != nil {
					return err
				}
				algorithmName = cfg.Compression
			}
			algorithm, err := seed.ParseAlgorithm(algorithmName)
			if err != nil {
				return err
			}

			store, err := openStore(storeDir)
			if err != nil {
				return err
			}
			form, err := store.Compress(name, algorithm)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = name + ".flsd"
			}
			if err := os.WriteFile(outPath, form.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			fmt.Printf("wrote %s: %s -> %s (%s)\n",
				outPath,
				humanize.Bytes(uint64(form.OriginalSize)),
				humanize.Bytes(uint64(len(form.Data))),
				form.Algorithm)
			return nil
		},
	}
}

func decompressCommand() *cli.Command {
	return &cli.Command{
		Name:    "decompress",
		Summary: "Decode and verify a compact seed file",
		Usage:   "flpkg seed decompress <file.flsd>",
		Description: `Decode a compact FLSD envelope back into the full seed document.
The embedded checksum is recomputed from the decoded payload; a
mismatch fails the command.`,
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one input file, got %d args", len(args))
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			document, err := seed.DecodeCompact(data)
			if err != nil {
				return fmt.Errorf("decoding %s: %w", args[0], err)
			}
			return cli.WriteJSON(document)
		},
	}
}
