// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package timing collects per-operation durations in an explicitly
// owned registry.
//
// The registry is plain injected state: whoever wants timings creates
// one, passes it to call sites, and reads the snapshot afterwards.
// There is no process-wide singleton, so tests and parallel CLI
// invocations each observe only their own operations.
package timing

import (
	"sort"
	"sync"
	"time"

	"github.com/seedworks/flpkg/lib/clock"
)

// Registry accumulates duration samples keyed by operation name.
// Safe for concurrent use.
type Registry struct {
	clock clock.Clock

	mu    sync.Mutex
	stats map[string]*OperationStats
}

// OperationStats aggregates the samples observed for one operation.
type OperationStats struct {
	Operation string        `json:"operation"`
	Count     int           `json:"count"`
	Total     time.Duration `json:"total"`
	Min       time.Duration `json:"min"`
	Max       time.Duration `json:"max"`
}

// Mean returns the average sample duration, zero when no samples
// were observed.
func (s *OperationStats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// NewRegistry creates an empty registry using clk to measure
// [Registry.Time] spans.
func NewRegistry(clk clock.Clock) *Registry {
	return &Registry{
		clock: clk,
		stats: make(map[string]*OperationStats),
	}
}

// Observe records one duration sample for the named operation.
func (r *Registry) Observe(operation string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.stats[operation]
	if !ok {
		entry = &OperationStats{Operation: operation, Min: d, Max: d}
		r.stats[operation] = entry
	}
	entry.Count++
	entry.Total += d
	if d < entry.Min {
		entry.Min = d
	}
	if d > entry.Max {
		entry.Max = d
	}
}

// Time starts measuring the named operation and returns the stop
// function that records the elapsed duration:
//
//	defer registry.Time("container/build")()
func (r *Registry) Time(operation string) func() {
	start := r.clock.Now()
	return func() {
		r.Observe(operation, r.clock.Now().Sub(start))
	}
}

// Snapshot returns the accumulated stats sorted by operation name.
// The returned values are copies; further observations do not mutate
// them.
func (r *Registry) Snapshot() []OperationStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make([]OperationStats, 0, len(r.stats))
	for _, entry := range r.stats {
		snapshot = append(snapshot, *entry)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Operation < snapshot[j].Operation
	})
	return snapshot
}
