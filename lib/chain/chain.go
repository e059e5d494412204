// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package chain implements the reversible textual encodings of step
// chains.
//
// A chain is an ordered sequence of vocabulary steps in
// function-composition order: chain[0] is applied first and is
// therefore the innermost call in the nested encoding. Two encodings
// are provided, both losslessly reversible:
//
//   - Nested form: "SEED(X) = STORE(RECURSE(STRUCTURE(X)))" — uppercase
//     tokens wrapping a literal X placeholder.
//   - Symbol form: a concatenation of one-character step symbols,
//     e.g. "#*~@$".
//
// Decoding then re-encoding reproduces the input byte for byte, and
// encoding then decoding reproduces the chain element for element.
package chain

import (
	"fmt"
	"strings"

	"github.com/seedworks/flpkg/lib/step"
)

// Chain is an ordered sequence of steps. Duplicates and arbitrary
// subsets of the vocabulary are allowed; order is composition order,
// outermost-last. A Chain is a value type with no identity beyond its
// ordered content.
type Chain []step.Step

// nestedPrefix introduces the nested form. The grammar mandates
// exactly one space on each side of the equals sign.
const nestedPrefix = "SEED(X) = "

// placeholder is the literal innermost value of the nested form.
const placeholder = "X"

// EmptyChainError reports a zero-length chain where the encoding
// grammar requires at least one step.
type EmptyChainError struct{}

func (e *EmptyChainError) Error() string {
	return "empty chain: the nested grammar requires at least one step"
}

// MalformedChainError reports text that does not match the nested or
// symbol grammar. Offending holds the substring that failed to parse.
type MalformedChainError struct {
	Input     string
	Offending string
	Reason    string
}

func (e *MalformedChainError) Error() string {
	return fmt.Sprintf("malformed chain text: %s at %q", e.Reason, e.Offending)
}

// Equal reports whether two chains have identical ordered content.
func (c Chain) Equal(other Chain) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}

// EncodeNested builds the nested-call string for c, composing tokens
// from the innermost step (c[0]) outward. Returns EmptyChainError for
// a zero-length chain and UnknownStepError for elements outside the
// vocabulary.
func EncodeNested(c Chain) (string, error) {
	if len(c) == 0 {
		return "", &EmptyChainError{}
	}

	var b strings.Builder
	b.WriteString(nestedPrefix)
	for i := len(c) - 1; i >= 0; i-- {
		if !c[i].Valid() {
			return "", &step.UnknownStepError{Name: c[i].Name()}
		}
		b.WriteString(c[i].Token())
		b.WriteByte('(')
	}
	b.WriteString(placeholder)
	for range c {
		b.WriteByte(')')
	}
	return b.String(), nil
}

// DecodeNested parses the nested-call grammar by peeling matched
// parentheses from the outermost token inward. The parser accepts
// exactly the output grammar of [EncodeNested]; any deviation —
// missing prefix, unknown token, unbalanced parentheses, trailing
// bytes — returns a MalformedChainError naming the offending
// substring.
func DecodeNested(text string) (Chain, error) {
	body, ok := strings.CutPrefix(text, nestedPrefix)
	if !ok {
		return nil, &MalformedChainError{
			Input:     text,
			Offending: text,
			Reason:    `missing "SEED(X) = " prefix`,
		}
	}

	// Tokens are collected outermost-first while peeling, then
	// reversed so that chain[0] is the innermost step.
	var outermost []step.Step
	for body != placeholder {
		open := strings.IndexByte(body, '(')
		if open <= 0 {
			return nil, &MalformedChainError{
				Input:     text,
				Offending: body,
				Reason:    "expected TOKEN( call",
			}
		}
		if body[len(body)-1] != ')' {
			return nil, &MalformedChainError{
				Input:     text,
				Offending: body,
				Reason:    "unbalanced parentheses",
			}
		}

		token := body[:open]
		s, err := step.FromToken(token)
		if err != nil {
			return nil, &MalformedChainError{
				Input:     text,
				Offending: token,
				Reason:    "unknown token",
			}
		}
		outermost = append(outermost, s)
		body = body[open+1 : len(body)-1]
	}

	if len(outermost) == 0 {
		// Bare "SEED(X) = X": the grammar has no representation for
		// zero steps, so this cannot have been produced by encode.
		return nil, &MalformedChainError{
			Input:     text,
			Offending: placeholder,
			Reason:    "no step calls",
		}
	}

	c := make(Chain, len(outermost))
	for i, s := range outermost {
		c[len(outermost)-1-i] = s
	}
	return c, nil
}

// EncodeSymbols returns the compact symbol string for c: the
// concatenation of each step's one-character symbol in chain order.
// Returns EmptyChainError for a zero-length chain and
// UnknownStepError for elements outside the vocabulary.
func EncodeSymbols(c Chain) (string, error) {
	if len(c) == 0 {
		return "", &EmptyChainError{}
	}

	var b strings.Builder
	for _, s := range c {
		if !s.Valid() {
			return "", &step.UnknownStepError{Name: s.Name()}
		}
		b.WriteString(s.Symbol())
	}
	return b.String(), nil
}

// DecodeSymbols parses a compact symbol string back into a chain.
// Every character must be a vocabulary symbol; anything else returns
// a MalformedChainError naming the offending character. The empty
// string is malformed (the symbol form of an empty chain does not
// exist).
func DecodeSymbols(text string) (Chain, error) {
	if text == "" {
		return nil, &MalformedChainError{
			Input:     text,
			Offending: text,
			Reason:    "empty symbol string",
		}
	}

	c := make(Chain, 0, len(text))
	for _, r := range text {
		s, err := step.FromSymbol(string(r))
		if err != nil {
			return nil, &MalformedChainError{
				Input:     text,
				Offending: string(r),
				Reason:    "unknown symbol",
			}
		}
		c = append(c, s)
	}
	return c, nil
}
