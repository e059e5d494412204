// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package step defines the closed, ordered vocabulary of
// transformation steps and their encodings.
//
// The vocabulary is process-wide constant data: five steps in a fixed
// canonical order, each with a lowercase name, an uppercase token used
// in the nested chain encoding, a one-character symbol used in the
// compact symbol encoding, and a pack form used in FLPKG manifests.
// Both the token table and the symbol table are total bijections over
// the vocabulary. Nothing in this package mutates state after init.
package step

import (
	"fmt"
	"strings"
)

// Step is a named transformation step. The zero value is not a valid
// step; construct values via the exported constants or [Parse].
type Step string

// The vocabulary, in canonical order. Order is semantically meaningful
// for chains (function-composition order, outermost-last), so these
// constants must never be reordered.
const (
	Structure Step = "structure"
	Mark      Step = "mark"
	Flow      Step = "flow"
	Recurse   Step = "recurse"
	Store     Step = "store"
)

// vocabulary is the canonical ordering. Kept private so callers cannot
// mutate it; use [Vocabulary] for a fresh copy.
var vocabulary = [5]Step{Structure, Mark, Flow, Recurse, Store}

// symbols maps each step to its one-character symbol. The table is a
// bijection: every step has exactly one symbol and no two steps share
// one (verified by tests).
var symbols = map[Step]string{
	Structure: "#",
	Mark:      "*",
	Flow:      "~",
	Recurse:   "@",
	Store:     "$",
}

// bySymbol is the inverse of symbols, built once at init.
var bySymbol = func() map[string]Step {
	inverse := make(map[string]Step, len(symbols))
	for s, symbol := range symbols {
		inverse[symbol] = s
	}
	return inverse
}()

// UnknownStepError reports a name, token, or symbol outside the
// vocabulary.
type UnknownStepError struct {
	// Name is the offending input as given by the caller.
	Name string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step %q", e.Name)
}

// Vocabulary returns the full vocabulary in canonical order. The
// returned slice is a fresh copy; callers may reorder or truncate it
// freely.
func Vocabulary() []Step {
	v := make([]Step, len(vocabulary))
	copy(v, vocabulary[:])
	return v
}

// Count returns the vocabulary size.
func Count() int { return len(vocabulary) }

// Valid reports whether s is a member of the vocabulary.
func (s Step) Valid() bool {
	_, ok := symbols[s]
	return ok
}

// Name returns the canonical lowercase name.
func (s Step) Name() string { return string(s) }

// Token returns the canonical uppercase token used in the nested
// chain encoding.
func (s Step) Token() string { return strings.ToUpper(string(s)) }

// Symbol returns the one-character symbol used in the compact symbol
// encoding. Returns "" for values outside the vocabulary.
func (s Step) Symbol() string { return symbols[s] }

// PackForm returns the FLPKG form of the step, used in transformation
// maps and container manifests.
func (s Step) PackForm() string { return "flpkg/" + string(s) }

// Parse returns the step with the given canonical lowercase name.
func Parse(name string) (Step, error) {
	s := Step(name)
	if !s.Valid() {
		return "", &UnknownStepError{Name: name}
	}
	return s, nil
}

// FromToken returns the step with the given uppercase token.
func FromToken(token string) (Step, error) {
	s := Step(strings.ToLower(token))
	// Tokens are strictly uppercase; reject mixed case rather than
	// silently normalizing, since tokens appear in a wire grammar.
	if !s.Valid() || token != s.Token() {
		return "", &UnknownStepError{Name: token}
	}
	return s, nil
}

// FromSymbol returns the step with the given one-character symbol.
func FromSymbol(symbol string) (Step, error) {
	s, ok := bySymbol[symbol]
	if !ok {
		return "", &UnknownStepError{Name: symbol}
	}
	return s, nil
}
