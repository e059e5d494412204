// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package chain

import "github.com/seedworks/flpkg/lib/step"

// Map is a derived, read-only view over a chain: per-step encoding
// tables restricted to the steps the chain actually uses, plus a
// scalar complexity score.
type Map struct {
	// Symbols maps each distinct step in the chain to its compact
	// symbol.
	Symbols map[step.Step]string `json:"symbols"`

	// PackForms maps each distinct step in the chain to its FLPKG
	// form.
	PackForms map[step.Step]string `json:"pack_forms"`

	// Complexity scores the chain: length plus twice the number of
	// distinct steps. Monotone in both, zero for the empty chain, and
	// never smaller than the score of any sub-chain. Appending any
	// step strictly increases it.
	Complexity int `json:"complexity"`
}

// BuildMap derives the transformation map for c. Pure function: same
// chain always produces the same map, and c is not modified. Steps
// outside the vocabulary contribute to the length term but get no
// table entries.
func BuildMap(c Chain) Map {
	m := Map{
		Symbols:   make(map[step.Step]string),
		PackForms: make(map[step.Step]string),
	}

	distinct := 0
	for _, s := range c {
		if !s.Valid() {
			continue
		}
		if _, seen := m.Symbols[s]; !seen {
			distinct++
			m.Symbols[s] = s.Symbol()
			m.PackForms[s] = s.PackForm()
		}
	}

	m.Complexity = len(c) + 2*distinct
	return m
}
