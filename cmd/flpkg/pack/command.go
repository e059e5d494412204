// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package pack implements the "flpkg build", "flpkg inspect", and
// "flpkg extract" commands for working with .flpkg container archives.
package pack

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/seedworks/flpkg/cmd/flpkg/cli"
	"github.com/seedworks/flpkg/lib/clock"
	"github.com/seedworks/flpkg/lib/container"
	"github.com/seedworks/flpkg/lib/timing"
)

// BuildCommand returns the top-level "build" command.
func BuildCommand() *cli.Command {
	var outPath string
	var previewSuffixes []string

	return &cli.Command{
		Name:    "build",
		Summary: "Build a .flpkg archive from a source directory",
		Usage:   "flpkg build <source-dir> --out <archive.flpkg>",
		Description: `Package a directory into a .flpkg container archive.

Every regular file under the source directory is stored with a SHA-1
content digest recorded in manifest.json, and a human-readable index.md
is generated alongside it. Entries are written in lexicographic path
order so identical trees produce structurally identical archives.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
			flags.StringVar(&outPath, "out", "", "output archive path (required)")
			flags.StringSliceVar(&previewSuffixes, "preview-suffix", nil,
				"additional file suffixes to include first-line previews for")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Package a results directory",
				Command:     "flpkg build ./results --out results.flpkg",
			},
			{
				Description: "Include previews for JSON files",
				Command:     "flpkg build ./results --out results.flpkg --preview-suffix .json",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one source directory, got %d args", len(args))
			}
			if outPath == "" {
				return fmt.Errorf("--out is required")
			}
			sourceDir := args[0]

			logger := cli.NewCommandLogger().With("command", "build", "source", sourceDir)
			registry := timing.NewRegistry(clock.Real())

			stop := registry.Time("container.build")
			manifest, err := container.Build(sourceDir, outPath, container.BuildOptions{
				Clock:                clock.Real(),
				ExtraPreviewSuffixes: previewSuffixes,
			})
			stop()
			if err != nil {
				return fmt.Errorf("building %s: %w", outPath, err)
			}

			info, err := os.Stat(outPath)
			if err != nil {
				return fmt.Errorf("stat %s: %w", outPath, err)
			}

			var elapsed string
			for _, stats := range registry.Snapshot() {
				if stats.Operation == "container.build" {
					elapsed = stats.Total.String()
				}
			}
			logger.Info("archive built",
				"archive", outPath,
				"entries", len(manifest.Files),
				"size", info.Size(),
				"elapsed", elapsed)

			fmt.Printf("built %s: %d files, %s\n",
				outPath, len(manifest.Files), humanize.Bytes(uint64(info.Size())))
			return nil
		},
	}
}

// InspectCommand returns the top-level "inspect" command.
func InspectCommand() *cli.Command {
	var asJSON, verifyIndex bool

	return &cli.Command{
		Name:    "inspect",
		Summary: "Verify and describe a .flpkg archive",
		Usage:   "flpkg inspect <archive.flpkg> [--json] [--verify-index]",
		Description: `Read a .flpkg archive, recompute every content digest, and compare
the results against manifest.json.

Exits non-zero when any stored file no longer matches its recorded
SHA-1 digest or when manifest entries are missing from the archive.
Structural problems in index.md are always reported; with
--verify-index they fail the command too.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flags.BoolVar(&asJSON, "json", false, "output the full report as JSON")
			flags.BoolVar(&verifyIndex, "verify-index", false,
				"treat index.md disagreements with the manifest as failures")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Verify an archive and list its contents",
				Command:     "flpkg inspect results.flpkg",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one archive path, got %d args", len(args))
			}
			archive := args[0]

			report, err := container.Inspect(archive)
			var integrity *container.ContentIntegrityError
			if err != nil && !errors.As(err, &integrity) {
				return fmt.Errorf("inspecting %s: %w", archive, err)
			}

			if asJSON {
				if writeErr := cli.WriteJSON(report); writeErr != nil {
					return writeErr
				}
			} else {
				printReport(report)
			}

			if integrity != nil {
				return &cli.ExitError{Code: 1, Message: integrity.Error()}
			}
			if len(report.MissingFiles) > 0 {
				return &cli.ExitError{Code: 1, Message: fmt.Sprintf(
					"%s: %d manifest entries missing from the archive",
					archive, len(report.MissingFiles))}
			}
			if verifyIndex && len(report.IndexIssues) > 0 {
				return &cli.ExitError{Code: 1, Message: fmt.Sprintf(
					"%s: %d index.md issues", archive, len(report.IndexIssues))}
			}
			return nil
		},
	}
}

func printReport(report *container.Report) {
	fmt.Printf("%s\n\n", report.Archive)

	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  PATH\tSIZE\tSHA1\tMIME\tSTATUS\n")
	for _, entry := range report.Entries {
		status := "ok"
		if entry.DigestMismatch {
			status = "DIGEST MISMATCH"
		} else if entry.Recorded == nil {
			status = "not in manifest"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			entry.Path, humanize.Bytes(uint64(entry.Size)),
			entry.SHA1[:8], entry.MIME, status)
	}
	tw.Flush()

	for _, path := range report.MissingFiles {
		fmt.Printf("  missing from archive: %s\n", path)
	}
	for _, issue := range report.IndexIssues {
		fmt.Printf("  index.md: %s\n", issue)
	}
}

// ExtractCommand returns the top-level "extract" command.
func ExtractCommand() *cli.Command {
	var destDir string

	return &cli.Command{
		Name:    "extract",
		Summary: "Extract a .flpkg archive into a directory",
		Usage:   "flpkg extract <archive.flpkg> --dst <dir>",
		Description: `Extract every entry of a .flpkg archive into the destination
directory, creating parent directories as needed. Entry paths that
would escape the destination are rejected.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flags.StringVar(&destDir, "dst", "", "destination directory (required)")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Unpack an archive",
				Command:     "flpkg extract results.flpkg --dst ./unpacked",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one archive path, got %d args", len(args))
			}
			if destDir == "" {
				return fmt.Errorf("--dst is required")
			}
			archive := args[0]

			logger := cli.NewCommandLogger().With("command", "extract", "archive", archive)
			extracted, err := container.Extract(archive, destDir)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", archive, err)
			}
			logger.Info("archive extracted", "destination", destDir, "entries", extracted)
			fmt.Printf("extracted %d entries to %s\n", extracted, destDir)
			return nil
		},
	}
}
