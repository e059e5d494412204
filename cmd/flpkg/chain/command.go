// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package chain implements the "flpkg chain" CLI subcommands for
// encoding, decoding, and analyzing transformation chains.
package chain

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/seedworks/flpkg/cmd/flpkg/cli"
	"github.com/seedworks/flpkg/lib/chain"
	"github.com/seedworks/flpkg/lib/step"
)

// Command returns the top-level "chain" command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "chain",
		Summary: "Encode, decode, and analyze transformation chains",
		Description: `Work with transformation chains over the step vocabulary
(structure, mark, flow, recurse, store).

Chains have two reversible text forms: the nested function form
("SEED(X) = STORE(STRUCTURE(X))", outermost step last) and the
compact symbol form ("#$", one symbol per step in order).`,
		Subcommands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			symbolsCommand(),
			mapCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Encode a chain into its nested form",
				Command:     "flpkg chain encode structure mark store",
			},
			{
				Description: "Decode either text form back into steps",
				Command:     `flpkg chain decode 'SEED(X) = STORE(MARK(STRUCTURE(X)))'`,
			},
			{
				Description: "Show the symbol table",
				Command:     "flpkg chain symbols",
			},
		},
	}
}

// parseSteps converts positional args into a chain, accepting step
// names in any case.
func parseSteps(args []string) (chain.Chain, error) {
	c := make(chain.Chain, 0, len(args))
	for _, arg := range args {
		s, err := step.Parse(strings.ToLower(arg))
		if err != nil {
			return nil, err
		}
		c = append(c, s)
	}
	return c, nil
}

func encodeCommand() *cli.Command {
	var useSymbols bool

	return &cli.Command{
		Name:    "encode",
		Summary: "Encode steps into a chain's text form",
		Usage:   "flpkg chain encode <step>... [--symbols]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("encode", pflag.ContinueOnError)
			flags.BoolVar(&useSymbols, "symbols", false, "emit the compact symbol form")
			return flags
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one step is required")
			}
			c, err := parseSteps(args)
			if err != nil {
				return err
			}

			var text string
			if useSymbols {
				text, err = chain.EncodeSymbols(c)
			} else {
				text, err = chain.EncodeNested(c)
			}
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}

func decodeCommand() *cli.Command {
	var useSymbols bool

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode a chain's text form back into steps",
		Usage:   "flpkg chain decode <text> [--symbols]",
		Description: `Decode a nested function form back into its step sequence. With
--symbols the input is read as the compact symbol form instead.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("decode", pflag.ContinueOnError)
			flags.BoolVar(&useSymbols, "symbols", false, "read the compact symbol form")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one chain text, got %d args", len(args))
			}

			var c chain.Chain
			var err error
			if useSymbols {
				c, err = chain.DecodeSymbols(args[0])
			} else {
				c, err = chain.DecodeNested(args[0])
			}
			if err != nil {
				return err
			}

			names := make([]string, len(c))
			for i, s := range c {
				names[i] = s.Name()
			}
			fmt.Println(strings.Join(names, " "))
			return nil
		},
	}
}

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:    "symbols",
		Summary: "Print the step vocabulary and its encodings",
		Usage:   "flpkg chain symbols",
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("symbols takes no positional arguments")
			}
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "STEP\tTOKEN\tSYMBOL\tPACK FORM\n")
			for _, s := range step.Vocabulary() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Name(), s.Token(), s.Symbol(), s.PackForm())
			}
			return tw.Flush()
		},
	}
}

func mapCommand() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:    "map",
		Summary: "Build the encoding map and complexity for a chain",
		Usage:   "flpkg chain map <step>... [--json]",
		Description: `Build the per-step encoding tables for a chain and compute its
complexity score (chain length plus twice the number of distinct
steps).`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("map", pflag.ContinueOnError)
			flags.BoolVar(&asJSON, "json", false, "output as JSON")
			return flags
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one step is required")
			}
			c, err := parseSteps(args)
			if err != nil {
				return err
			}
			m := chain.BuildMap(c)

			if asJSON {
				return cli.WriteJSON(m)
			}

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "STEP\tSYMBOL\tPACK FORM\n")
			for _, s := range step.Vocabulary() {
				symbol, ok := m.Symbols[s]
				if !ok {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name(), symbol, m.PackForms[s])
			}
			tw.Flush()
			fmt.Printf("complexity: %d\n", m.Complexity)
			return nil
		},
	}
}
