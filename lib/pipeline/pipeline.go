// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline is the façade over the step vocabulary: it applies
// the full fixed-order vocabulary to an input value, producing a
// traced, human-readable result, and delegates persistence to the
// result store and seed store.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/seedworks/flpkg/lib/chain"
	"github.com/seedworks/flpkg/lib/clock"
	"github.com/seedworks/flpkg/lib/step"
)

// Trace is the outcome of simulating the full vocabulary over an
// input value.
type Trace struct {
	// Input is the value the chain was applied to, verbatim.
	Input string `json:"input"`

	// Steps is the vocabulary in canonical order.
	Steps []step.Step `json:"steps"`

	// Result is the fully-nested textual trace: each step wraps the
	// prior value in its uppercase token.
	Result string `json:"result"`

	// Compressed is the symbol encoding of the applied chain.
	Compressed string `json:"compressed"`
}

// Simulate applies the full fixed-order vocabulary to input. Pure: no
// side effects, no failure modes for any input representable as text.
func Simulate(input string) Trace {
	vocabulary := step.Vocabulary()

	result := input
	for _, s := range vocabulary {
		result = s.Token() + "(" + result + ")"
	}

	// The vocabulary is non-empty and all of its members are valid,
	// so the symbol encoding cannot fail.
	compressed, err := chain.EncodeSymbols(chain.Chain(vocabulary))
	if err != nil {
		panic("pipeline: encoding the vocabulary failed: " + err.Error())
	}

	return Trace{
		Input:      input,
		Steps:      vocabulary,
		Result:     result,
		Compressed: compressed,
	}
}

// resultDocument is the persisted form of a simulation result.
type resultDocument struct {
	Input     string    `json:"input"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// fileStampLayout is the compact UTC form embedded in result file
// names.
const fileStampLayout = "20060102T150405Z"

// StoreResult serializes {input, result, timestamp} as a JSON document
// under outputDir, naming the file from the timestamp. One instant is
// captured from clk and formatted twice — once for the name, once for
// the document — so the two can never drift apart, whatever the
// host's timezone configuration.
func StoreResult(clk clock.Clock, input, result, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	instant := clk.Now().UTC().Truncate(time.Second)

	document := resultDocument{
		Input:     input,
		Result:    result,
		Timestamp: instant,
	}
	data, err := json.MarshalIndent(&document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result document: %w", err)
	}
	data = append(data, '\n')

	target := filepath.Join(outputDir, "result_"+instant.Format(fileStampLayout)+".json")

	// O_EXCL: a second result in the same instant is a caller error,
	// not something to silently overwrite.
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating result file: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		os.Remove(target)
		return "", fmt.Errorf("writing result file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("closing result file: %w", err)
	}

	return target, nil
}
