// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seedworks/flpkg/lib/clock"
)

func newTestStore(t *testing.T) (*Store, *clock.FakeClock) {
	t.Helper()
	fake := clock.Fake(time.Date(2026, 5, 20, 11, 30, 0, 0, time.UTC))
	store, err := NewStore(filepath.Join(t.TempDir(), "seeds"), fake)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, fake
}

func samplePayload() (any, any) {
	particle := map[string]any{
		"observation": "recursive layering in the cache hierarchy",
		"depth":       3,
		"tags":        []any{"flow", "store"},
	}
	metadata := map[string]any{
		"source":   "survey",
		"reviewed": false,
	}
	return particle, metadata
}

func TestCreateAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	particle, metadata := samplePayload()

	result, err := store.Create("cache-notes", particle, metadata)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if result.Name != "cache-notes" {
		t.Errorf("Name = %q", result.Name)
	}
	if len(result.Checksum) != 64 {
		t.Errorf("Checksum = %q, want 64 hex chars", result.Checksum)
	}
	if _, err := os.Stat(result.File); err != nil {
		t.Errorf("seed file missing: %v", err)
	}

	loaded, err := store.Load("cache-notes")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Checksum != result.Checksum {
		t.Errorf("loaded checksum %q != create checksum %q", loaded.Checksum, result.Checksum)
	}
	if !loaded.CreatedAt.Equal(time.Date(2026, 5, 20, 11, 30, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", loaded.CreatedAt)
	}
	inner, ok := loaded.Particle.(map[string]any)
	if !ok {
		t.Fatalf("Particle type = %T", loaded.Particle)
	}
	if inner["observation"] != "recursive layering in the cache hierarchy" {
		t.Errorf("observation = %v", inner["observation"])
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	store, _ := newTestStore(t)
	particle, metadata := samplePayload()

	first, err := store.Create("origin", particle, metadata)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	before, err := os.ReadFile(first.File)
	if err != nil {
		t.Fatalf("reading seed file: %v", err)
	}

	_, err = store.Create("origin", map[string]any{"other": true}, nil)
	var duplicate *DuplicateSeedError
	if !errors.As(err, &duplicate) {
		t.Fatalf("second Create error = %v, want DuplicateSeedError", err)
	}
	if duplicate.Name != "origin" {
		t.Errorf("DuplicateSeedError.Name = %q", duplicate.Name)
	}

	// The store content is unchanged after the failed create.
	after, err := os.ReadFile(first.File)
	if err != nil {
		t.Fatalf("re-reading seed file: %v", err)
	}
	if string(before) != string(after) {
		t.Error("failed duplicate create modified the stored seed")
	}

	descriptors, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(descriptors) != 1 {
		t.Errorf("store has %d seeds after failed duplicate, want 1", len(descriptors))
	}
}

func TestCreateRejectsUnsupportedPayload(t *testing.T) {
	store, _ := newTestStore(t)

	cases := []struct {
		name    string
		payload any
	}{
		{"channel", make(chan int)},
		{"function", func() {}},
		{"nested channel", map[string]any{"inner": []any{make(chan int)}}},
		{"int-keyed map", map[int]any{1: "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Create("bad-"+tc.name, tc.payload, nil)
			var serialization *SerializationError
			if !errors.As(err, &serialization) {
				t.Fatalf("Create error = %v, want SerializationError", err)
			}
		})
	}
}

func TestSerializationErrorNamesPath(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Create("bad", map[string]any{"readings": []any{1, make(chan int)}}, nil)
	var serialization *SerializationError
	if !errors.As(err, &serialization) {
		t.Fatalf("error = %v, want SerializationError", err)
	}
	if serialization.Path != "particle_data.readings[1]" {
		t.Errorf("Path = %q, want %q", serialization.Path, "particle_data.readings[1]")
	}
}

func TestListStableAndComplete(t *testing.T) {
	store, fake := newTestStore(t)

	names := []string{"gamma", "alpha", "beta"}
	for _, name := range names {
		if _, err := store.Create(name, map[string]any{"n": name}, nil); err != nil {
			t.Fatalf("Create(%q): %v", name, err)
		}
		fake.Advance(time.Minute)
	}

	first, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first) != len(names) {
		t.Fatalf("List returned %d descriptors, want %d", len(first), len(names))
	}

	// Sorted by name, each created name exactly once.
	want := []string{"alpha", "beta", "gamma"}
	for i, descriptor := range first {
		if descriptor.Name != want[i] {
			t.Errorf("List[%d].Name = %q, want %q", i, descriptor.Name, want[i])
		}
	}

	// Stable across repeated calls against the unchanged store.
	second, err := store.List()
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("List not stable at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestLoadMissingSeed(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load("nonexistent")
	var notFound *SeedNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Load error = %v, want SeedNotFoundError", err)
	}
	if notFound.Name != "nonexistent" {
		t.Errorf("SeedNotFoundError.Name = %q", notFound.Name)
	}
}

func TestValidateNameRejectsTraversal(t *testing.T) {
	store, _ := newTestStore(t)

	for _, name := range []string{"", "a/b", "..", ".hidden", "a b", "x\x00y"} {
		if _, err := store.Create(name, nil, nil); err == nil {
			t.Errorf("Create(%q) succeeded, want error", name)
		}
	}
}

func TestChecksumStableAcrossLoad(t *testing.T) {
	store, _ := newTestStore(t)
	particle, metadata := samplePayload()

	result, err := store.Create("stable", particle, metadata)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Recompute from the loaded (JSON round-tripped) document; the
	// normalization in checksumPayload must make this identical.
	loaded, err := store.Load("stable")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sum, err := checksumPayload(loaded.Particle, loaded.Metadata, loaded.CreatedAt)
	if err != nil {
		t.Fatalf("checksumPayload: %v", err)
	}
	if FormatChecksum(sum) != result.Checksum {
		t.Errorf("recomputed checksum %s != stored %s", FormatChecksum(sum), result.Checksum)
	}
}

func TestChecksumIndependentOfInsertionOrder(t *testing.T) {
	created := time.Date(2026, 5, 20, 11, 30, 0, 0, time.UTC)

	a := map[string]any{}
	a["x"] = 1
	a["y"] = 2
	b := map[string]any{}
	b["y"] = 2
	b["x"] = 1

	sumA, err := checksumPayload(a, nil, created)
	if err != nil {
		t.Fatal(err)
	}
	sumB, err := checksumPayload(b, nil, created)
	if err != nil {
		t.Fatal(err)
	}
	if sumA != sumB {
		t.Error("checksum depends on map insertion order")
	}
}
