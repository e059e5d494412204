// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := map[string]any{
		"seed_name": "migration-notes",
		"depth":     int64(3),
		"tags":      []any{"flow", "store"},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded["seed_name"] != "migration-notes" {
		t.Errorf("seed_name = %v", decoded["seed_name"])
	}
	tags, ok := decoded["tags"].([]any)
	if !ok || len(tags) != 2 {
		t.Errorf("tags = %v", decoded["tags"])
	}
}

func TestMarshalDeterministicAcrossInsertionOrder(t *testing.T) {
	first := map[string]any{}
	first["alpha"] = 1
	first["beta"] = 2
	first["gamma"] = 3

	second := map[string]any{}
	second["gamma"] = 3
	second["alpha"] = 1
	second["beta"] = 2

	a, err := Marshal(first)
	if err != nil {
		t.Fatalf("Marshal first: %v", err)
	}
	b, err := Marshal(second)
	if err != nil {
		t.Fatalf("Marshal second: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Errorf("deterministic encoding differs: %x vs %x", a, b)
	}
}

func TestDefaultMapTypeIsStringKeyed(t *testing.T) {
	data, err := Marshal(map[string]any{"outer": map[string]any{"inner": true}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if _, ok := outer["outer"].(map[string]any); !ok {
		t.Fatalf("nested type = %T, want map[string]any", outer["outer"])
	}
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buffer bytes.Buffer

	encoder := NewEncoder(&buffer)
	for _, value := range []string{"structure", "mark", "flow"} {
		if err := encoder.Encode(value); err != nil {
			t.Fatalf("Encode(%q): %v", value, err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"structure", "mark", "flow"} {
		var got string
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if got != want {
			t.Errorf("Decode = %q, want %q", got, want)
		}
	}
}
