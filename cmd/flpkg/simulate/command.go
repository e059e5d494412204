// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package simulate implements the "flpkg simulate" CLI command: run
// the full transformation pipeline over an input string and optionally
// persist the result document and an archival seed.
package simulate

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/seedworks/flpkg/cmd/flpkg/cli"
	"github.com/seedworks/flpkg/lib/clock"
	"github.com/seedworks/flpkg/lib/config"
	"github.com/seedworks/flpkg/lib/pipeline"
)

// Command returns the top-level "simulate" command.
func Command() *cli.Command {
	var persist, asJSON bool
	var storeDir, outputDir string

	return &cli.Command{
		Name:    "simulate",
		Summary: "Run the transformation pipeline over an input",
		Usage:   "flpkg simulate <input> [--store] [--json]",
		Description: `Apply the full step vocabulary to an input string, producing the
nested seed expression and its compact symbol form.

With --store, the result document is written to the output directory
and an archival seed is created; when the store or output directory
is not writable, the run degrades to in-memory simulation only.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("simulate", pflag.ContinueOnError)
			flags.BoolVar(&persist, "store", false, "persist the result document and an archival seed")
			flags.BoolVar(&asJSON, "json", false, "output as JSON")
			flags.StringVar(&storeDir, "store-dir", "", "seed store directory (default: configured seed_store_dir)")
			flags.StringVar(&outputDir, "output-dir", "", "result document directory (default: configured output_dir)")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Simulate without persisting anything",
				Command:     "flpkg simulate dream",
			},
			{
				Description: "Simulate and archive the result",
				Command:     "flpkg simulate dream --store",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one input string, got %d args", len(args))
			}
			input := args[0]

			var runner pipeline.Runner = &pipeline.MinimalRunner{}
			if persist {
				cfg, err := config.Load("")
				if err != nil {
					return err
				}
				if storeDir == "" {
					storeDir = cfg.SeedStoreDir
				}
				if outputDir == "" {
					outputDir = cfg.OutputDir
				}
				runner = pipeline.SelectRunner(storeDir, outputDir, clock.Real())
			}

			logger := cli.NewCommandLogger().With("command", "simulate", "runner", runner.Kind())
			result, err := runner.Run(input)
			if err != nil {
				return err
			}

			if persist && runner.Kind() == "minimal" {
				logger.Warn("store not writable, result not persisted",
					"store_dir", storeDir, "output_dir", outputDir)
			}
			if result.ResultFile != "" {
				logger.Info("simulation persisted",
					"result_file", result.ResultFile,
					"seed", result.SeedName,
					"checksum", result.SeedChecksum)
			}

			if asJSON {
				return cli.WriteJSON(result)
			}
			fmt.Println(result.Trace.Result)
			fmt.Println(result.Trace.Compressed)
			if result.ResultFile != "" {
				fmt.Printf("stored: %s (seed %s)\n", result.ResultFile, result.SeedName)
			}
			return nil
		},
	}
}
