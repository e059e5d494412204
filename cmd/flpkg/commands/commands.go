// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete flpkg CLI command tree.
package commands

import (
	"fmt"

	chaincmd "github.com/seedworks/flpkg/cmd/flpkg/chain"
	"github.com/seedworks/flpkg/cmd/flpkg/cli"
	"github.com/seedworks/flpkg/cmd/flpkg/pack"
	seedcmd "github.com/seedworks/flpkg/cmd/flpkg/seed"
	simulatecmd "github.com/seedworks/flpkg/cmd/flpkg/simulate"
	"github.com/seedworks/flpkg/lib/version"
)

// Root builds and returns the complete flpkg CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "flpkg",
		Description: `flpkg: symbolic archival toolkit.

Encode transformation chains, persist checksummed memory seeds, and
package results into verifiable .flpkg container archives.`,
		Subcommands: []*cli.Command{
			pack.BuildCommand(),
			pack.InspectCommand(),
			pack.ExtractCommand(),
			seedcmd.Command(),
			chaincmd.Command(),
			simulatecmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("flpkg %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Package a directory into an archive",
				Command:     "flpkg build ./results --out results.flpkg",
			},
			{
				Description: "Verify an archive's content digests",
				Command:     "flpkg inspect results.flpkg",
			},
			{
				Description: "Run the pipeline and archive the result",
				Command:     "flpkg simulate dream --store",
			},
			{
				Description: "List stored memory seeds",
				Command:     "flpkg seed list",
			},
		},
	}
}
