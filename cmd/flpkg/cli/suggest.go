// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestionDistance is the worst Levenshtein distance we still consider
// a plausible typo.
const maxSuggestionDistance = 3

// suggestCommand returns the subcommand name closest to input, or "" when
// nothing is close enough to be a likely typo.
func suggestCommand(input string, subcommands []*Command) string {
	best := ""
	bestDistance := maxSuggestionDistance + 1
	for _, sub := range subcommands {
		d := levenshtein(input, sub.Name)
		if d < bestDistance {
			best = sub.Name
			bestDistance = d
		}
	}
	if bestDistance > maxSuggestionDistance {
		return ""
	}
	return best
}

// suggestFlag scans args for the first unknown long flag and returns the
// closest registered flag (with leading dashes), or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	var known []string
	flagSet.VisitAll(func(f *pflag.Flag) {
		known = append(known, f.Name)
	})

	for _, arg := range args {
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		name := strings.TrimPrefix(arg, "--")
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		if name == "" || flagSet.Lookup(name) != nil {
			continue
		}

		best := ""
		bestDistance := maxSuggestionDistance + 1
		for _, candidate := range known {
			d := levenshtein(name, candidate)
			if d < bestDistance {
				best = candidate
				bestDistance = d
			}
		}
		if best != "" && bestDistance <= maxSuggestionDistance {
			return "--" + best
		}
	}
	return ""
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	current := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		current[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			current[j] = min(prev[j]+1, min(current[j-1]+1, prev[j-1]+cost))
		}
		prev, current = current, prev
	}
	return prev[len(rb)]
}
