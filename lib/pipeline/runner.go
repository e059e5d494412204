// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"os"
	"time"

	"github.com/seedworks/flpkg/lib/clock"
	"github.com/seedworks/flpkg/lib/seed"
)

// Runner executes a simulation and, depending on the variant, persists
// its artifacts. The variant is chosen once at startup by an explicit
// capability probe ([SelectRunner]), never by a hidden fallback at
// call time.
type Runner interface {
	// Run simulates the vocabulary over input.
	Run(input string) (*RunResult, error)

	// Kind identifies the variant: "full" or "minimal".
	Kind() string
}

// RunResult is the outcome of one Runner invocation.
type RunResult struct {
	Trace Trace `json:"trace"`

	// ResultFile is the persisted result document, empty for the
	// minimal variant.
	ResultFile string `json:"result_file,omitempty"`

	// SeedName and SeedChecksum reference the archived trace, empty
	// for the minimal variant.
	SeedName     string `json:"seed_name,omitempty"`
	SeedChecksum string `json:"seed_checksum,omitempty"`
}

// FullRunner simulates and persists: the result document goes to the
// output directory and the trace is archived as a memory seed.
type FullRunner struct {
	Store     *seed.Store
	Clock     clock.Clock
	OutputDir string
}

// Run simulates input, stores the result document, and archives the
// trace as a seed named from the capture instant.
func (r *FullRunner) Run(input string) (*RunResult, error) {
	trace := Simulate(input)

	resultFile, err := StoreResult(r.Clock, trace.Input, trace.Result, r.OutputDir)
	if err != nil {
		return nil, err
	}

	seedName := "sim-" + r.Clock.Now().UTC().Truncate(time.Second).Format(fileStampLayout)
	created, err := r.Store.Create(seedName,
		map[string]any{
			"input":      trace.Input,
			"result":     trace.Result,
			"compressed": trace.Compressed,
		},
		map[string]any{
			"kind":       "simulation",
			"step_count": len(trace.Steps),
		},
	)
	if err != nil {
		return nil, err
	}

	return &RunResult{
		Trace:        trace,
		ResultFile:   resultFile,
		SeedName:     created.Name,
		SeedChecksum: created.Checksum,
	}, nil
}

// Kind returns "full".
func (r *FullRunner) Kind() string { return "full" }

// MinimalRunner simulates without persisting anything. Selected when
// the seed store root is not writable.
type MinimalRunner struct{}

// Run simulates input and returns the trace.
func (r *MinimalRunner) Run(input string) (*RunResult, error) {
	return &RunResult{Trace: Simulate(input)}, nil
}

// Kind returns "minimal".
func (r *MinimalRunner) Kind() string { return "minimal" }

// SelectRunner probes whether a seed store can be opened and written
// at storeRoot and returns the matching variant. The probe happens
// exactly once, at selection time: a store that becomes unwritable
// later surfaces as ordinary errors from the full runner, not as a
// silent downgrade.
func SelectRunner(storeRoot, outputDir string, clk clock.Clock) Runner {
	store, err := seed.NewStore(storeRoot, clk)
	if err != nil {
		return &MinimalRunner{}
	}

	// Creating the directory is not enough: verify writability.
	probe, err := os.CreateTemp(storeRoot, ".probe-*")
	if err != nil {
		return &MinimalRunner{}
	}
	probe.Close()
	os.Remove(probe.Name())

	return &FullRunner{Store: store, Clock: clk, OutputDir: outputDir}
}
