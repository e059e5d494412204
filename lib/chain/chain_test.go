// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import (
	"errors"
	"testing"

	"github.com/seedworks/flpkg/lib/step"
)

// subsequences returns every non-empty subsequence of the vocabulary,
// preserving relative order.
func subsequences(t *testing.T) []Chain {
	t.Helper()
	vocabulary := step.Vocabulary()

	var out []Chain
	for mask := 1; mask < 1<<len(vocabulary); mask++ {
		var c Chain
		for i, s := range vocabulary {
			if mask&(1<<i) != 0 {
				c = append(c, s)
			}
		}
		out = append(out, c)
	}
	return out
}

func TestEncodeNestedFullVocabulary(t *testing.T) {
	got, err := EncodeNested(Chain(step.Vocabulary()))
	if err != nil {
		t.Fatalf("EncodeNested: %v", err)
	}

	want := "SEED(X) = STORE(RECURSE(FLOW(MARK(STRUCTURE(X)))))"
	if got != want {
		t.Errorf("EncodeNested = %q, want %q", got, want)
	}
}

func TestNestedRoundTrip(t *testing.T) {
	cases := subsequences(t)
	// Duplicates and repeats are legal chains too.
	cases = append(cases,
		Chain{step.Mark, step.Mark},
		Chain{step.Flow, step.Flow, step.Flow, step.Recurse, step.Flow},
		Chain{step.Store},
	)

	for _, c := range cases {
		encoded, err := EncodeNested(c)
		if err != nil {
			t.Fatalf("EncodeNested(%v): %v", c, err)
		}
		decoded, err := DecodeNested(encoded)
		if err != nil {
			t.Fatalf("DecodeNested(%q): %v", encoded, err)
		}
		if !decoded.Equal(c) {
			t.Errorf("round trip of %v via %q gave %v", c, encoded, decoded)
		}

		// Text-side round trip must be byte-identical.
		reencoded, err := EncodeNested(decoded)
		if err != nil {
			t.Fatalf("EncodeNested(%v): %v", decoded, err)
		}
		if reencoded != encoded {
			t.Errorf("re-encode of %q gave %q", encoded, reencoded)
		}
	}
}

func TestEncodeNestedEmpty(t *testing.T) {
	_, err := EncodeNested(nil)
	var empty *EmptyChainError
	if !errors.As(err, &empty) {
		t.Fatalf("EncodeNested(nil) error = %v, want EmptyChainError", err)
	}
}

func TestEncodeNestedUnknownStep(t *testing.T) {
	_, err := EncodeNested(Chain{step.Mark, step.Step("spiral")})
	var unknown *step.UnknownStepError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want UnknownStepError", err)
	}
	if unknown.Name != "spiral" {
		t.Errorf("UnknownStepError.Name = %q, want %q", unknown.Name, "spiral")
	}
}

func TestDecodeNestedMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"missing prefix", "STORE(X)"},
		{"wrong spacing", "SEED(X) =STORE(X)"},
		{"no calls", "SEED(X) = X"},
		{"unknown token", "SEED(X) = SPIRAL(X)"},
		{"lowercase token", "SEED(X) = store(X)"},
		{"unbalanced open", "SEED(X) = STORE(MARK(X)"},
		{"unbalanced close", "SEED(X) = STORE(X))"},
		{"trailing bytes", "SEED(X) = STORE(X) "},
		{"empty body", "SEED(X) = "},
		{"wrong placeholder", "SEED(X) = STORE(Y)"},
		{"empty", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeNested(tc.text)
			var malformed *MalformedChainError
			if !errors.As(err, &malformed) {
				t.Fatalf("DecodeNested(%q) error = %v, want MalformedChainError", tc.text, err)
			}
			if malformed.Offending == "" {
				t.Errorf("MalformedChainError for %q names no offending substring", tc.text)
			}
		})
	}
}

func TestDecodeNestedNamesUnknownToken(t *testing.T) {
	_, err := DecodeNested("SEED(X) = STORE(SPIRAL(X))")
	var malformed *MalformedChainError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want MalformedChainError", err)
	}
	if malformed.Offending != "SPIRAL" {
		t.Errorf("Offending = %q, want %q", malformed.Offending, "SPIRAL")
	}
}

func TestSymbolRoundTrip(t *testing.T) {
	cases := subsequences(t)
	cases = append(cases,
		Chain{step.Structure},
		Chain{step.Recurse, step.Recurse},
		Chain{step.Store, step.Structure, step.Store, step.Structure},
	)

	for _, c := range cases {
		encoded, err := EncodeSymbols(c)
		if err != nil {
			t.Fatalf("EncodeSymbols(%v): %v", c, err)
		}
		decoded, err := DecodeSymbols(encoded)
		if err != nil {
			t.Fatalf("DecodeSymbols(%q): %v", encoded, err)
		}
		if !decoded.Equal(c) {
			t.Errorf("round trip of %v via %q gave %v", c, encoded, decoded)
		}
	}
}

func TestEncodeSymbolsFullVocabulary(t *testing.T) {
	got, err := EncodeSymbols(Chain(step.Vocabulary()))
	if err != nil {
		t.Fatalf("EncodeSymbols: %v", err)
	}
	if got != "#*~@$" {
		t.Errorf("EncodeSymbols = %q, want %q", got, "#*~@$")
	}
}

func TestDecodeSymbolsMalformed(t *testing.T) {
	for _, text := range []string{"", "#z$", "STRUCTURE"} {
		_, err := DecodeSymbols(text)
		var malformed *MalformedChainError
		if !errors.As(err, &malformed) {
			t.Errorf("DecodeSymbols(%q) error = %v, want MalformedChainError", text, err)
		}
	}
}

func TestComplexityEmptyIsMinimum(t *testing.T) {
	if got := BuildMap(nil).Complexity; got != 0 {
		t.Errorf("empty chain complexity = %d, want 0", got)
	}
}

func TestComplexityMonotonicity(t *testing.T) {
	base := Chain{step.Mark, step.Mark, step.Flow}
	baseScore := BuildMap(base).Complexity

	// Appending a new distinct step strictly increases the score.
	varied := append(append(Chain{}, base...), step.Store)
	if got := BuildMap(varied).Complexity; got <= baseScore {
		t.Errorf("appending distinct step: %d -> %d, want strict increase", baseScore, got)
	}

	// Appending a repeat also increases (length term).
	repeated := append(append(Chain{}, base...), step.Flow)
	if got := BuildMap(repeated).Complexity; got <= baseScore {
		t.Errorf("appending repeat: %d -> %d, want strict increase", baseScore, got)
	}

	// A more varied chain outscores a more repetitive one of the
	// same length.
	uniform := Chain{step.Mark, step.Mark, step.Mark}
	mixed := Chain{step.Mark, step.Flow, step.Store}
	if BuildMap(mixed).Complexity <= BuildMap(uniform).Complexity {
		t.Error("varied chain does not outscore repetitive chain of equal length")
	}
}

func TestComplexitySubChain(t *testing.T) {
	full := Chain(step.Vocabulary())
	fullScore := BuildMap(full).Complexity

	for _, sub := range subsequences(t) {
		if got := BuildMap(sub).Complexity; got > fullScore {
			t.Errorf("sub-chain %v complexity %d exceeds full chain %d", sub, got, fullScore)
		}
	}
}

func TestBuildMapTables(t *testing.T) {
	m := BuildMap(Chain{step.Mark, step.Store, step.Mark})

	if len(m.Symbols) != 2 || len(m.PackForms) != 2 {
		t.Fatalf("tables have %d/%d entries, want 2/2", len(m.Symbols), len(m.PackForms))
	}
	if m.Symbols[step.Mark] != "*" {
		t.Errorf("Symbols[mark] = %q, want %q", m.Symbols[step.Mark], "*")
	}
	if m.PackForms[step.Store] != "flpkg/store" {
		t.Errorf("PackForms[store] = %q, want %q", m.PackForms[step.Store], "flpkg/store")
	}
	if m.Complexity != 3+2*2 {
		t.Errorf("Complexity = %d, want %d", m.Complexity, 7)
	}
}
