// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seedworks/flpkg/lib/clock"
)

func TestSimulate(t *testing.T) {
	trace := Simulate("x")

	if trace.Input != "x" {
		t.Errorf("Input = %q", trace.Input)
	}
	if want := "STORE(RECURSE(FLOW(MARK(STRUCTURE(x)))))"; trace.Result != want {
		t.Errorf("Result = %q, want %q", trace.Result, want)
	}
	if trace.Compressed != "#*~@$" {
		t.Errorf("Compressed = %q, want %q", trace.Compressed, "#*~@$")
	}
	if len(trace.Steps) != 5 {
		t.Errorf("Steps has %d elements, want 5", len(trace.Steps))
	}
}

func TestSimulateIsPure(t *testing.T) {
	inputs := []string{"", "x", "nested (parens)", "unicode: Δ", strings.Repeat("a", 10_000)}
	for _, input := range inputs {
		first := Simulate(input)
		second := Simulate(input)
		if first.Result != second.Result || first.Compressed != second.Compressed {
			t.Errorf("Simulate(%q) is not deterministic", input)
		}
	}
}

func TestStoreResultSingleInstant(t *testing.T) {
	// A clock pinned in a timezone far from UTC: prior designs that
	// drew the filename from local time and the document from UTC
	// drifted by the zone offset. One captured instant, formatted
	// twice, cannot.
	zone := time.FixedZone("UTC+13", 13*60*60)
	instant := time.Date(2026, 5, 20, 23, 45, 10, 0, zone)
	fake := clock.Fake(instant)

	dir := t.TempDir()
	path, err := StoreResult(fake, "x", "y", dir)
	if err != nil {
		t.Fatalf("StoreResult: %v", err)
	}

	base := filepath.Base(path)
	stampText := strings.TrimSuffix(strings.TrimPrefix(base, "result_"), ".json")
	nameStamp, err := time.Parse(fileStampLayout, stampText)
	if err != nil {
		t.Fatalf("parsing filename stamp %q: %v", stampText, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var document resultDocument
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatalf("decoding result document: %v", err)
	}

	if document.Input != "x" || document.Result != "y" {
		t.Errorf("document = %+v", document)
	}

	drift := document.Timestamp.Sub(nameStamp)
	if drift < 0 {
		drift = -drift
	}
	if drift >= 2*time.Second {
		t.Errorf("name stamp %v and document timestamp %v drift by %v", nameStamp, document.Timestamp, drift)
	}
}

func TestStoreResultRefusesOverwrite(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC))
	dir := t.TempDir()

	if _, err := StoreResult(fake, "a", "b", dir); err != nil {
		t.Fatalf("first StoreResult: %v", err)
	}
	if _, err := StoreResult(fake, "c", "d", dir); err == nil {
		t.Error("second StoreResult at the same instant overwrote the first")
	}
}

func TestFullRunnerPersists(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC))
	storeRoot := filepath.Join(t.TempDir(), "seeds")
	outputDir := filepath.Join(t.TempDir(), "results")

	runner := SelectRunner(storeRoot, outputDir, fake)
	if runner.Kind() != "full" {
		t.Fatalf("Kind = %q, want full", runner.Kind())
	}

	result, err := runner.Run("probe")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ResultFile == "" || result.SeedName == "" || result.SeedChecksum == "" {
		t.Errorf("full runner did not persist: %+v", result)
	}
	if _, err := os.Stat(result.ResultFile); err != nil {
		t.Errorf("result file missing: %v", err)
	}

	full, ok := runner.(*FullRunner)
	if !ok {
		t.Fatalf("runner type = %T", runner)
	}
	archived, err := full.Store.Load(result.SeedName)
	if err != nil {
		t.Fatalf("loading archived seed: %v", err)
	}
	particle, ok := archived.Particle.(map[string]any)
	if !ok {
		t.Fatalf("Particle type = %T", archived.Particle)
	}
	if particle["result"] != result.Trace.Result {
		t.Error("archived trace does not match the run result")
	}
}

func TestSelectRunnerFallsBackToMinimal(t *testing.T) {
	// A regular file where the store root should be makes the probe
	// fail regardless of process privileges.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("not a directory"), 0o644); err != nil {
		t.Fatal(err)
	}

	runner := SelectRunner(blocked, t.TempDir(), clock.Fake(time.Unix(0, 0)))
	if runner.Kind() != "minimal" {
		t.Fatalf("Kind = %q, want minimal", runner.Kind())
	}

	result, err := runner.Run("x")
	if err != nil {
		t.Fatalf("minimal Run: %v", err)
	}
	if result.ResultFile != "" || result.SeedName != "" {
		t.Errorf("minimal runner persisted: %+v", result)
	}
}
