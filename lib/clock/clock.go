// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Every production function that needs the current instant accepts a
// Clock (or is a method on a struct with a Clock field) instead of
// calling time.Now directly. Production code injects Real(); tests
// inject Fake() and control time deterministically.
//
// The seed store and the pipeline façade each capture exactly one
// instant per operation and format it as many times as needed. That
// single-source rule is what keeps a result file's name-embedded
// timestamp and its content-embedded timestamp referring to the same
// moment regardless of the host's timezone configuration.
package clock

import "time"

// Clock abstracts the current time for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake returns a FakeClock pinned to the given instant. Time stands
// still until Advance or Set is called.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for tests. Not safe for
// concurrent use; all operations in this system are synchronous, so
// tests drive it from a single goroutine.
type FakeClock struct {
	current time.Time
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time { return c.current }

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

// Set pins the fake time to t.
func (c *FakeClock) Set(t time.Time) { c.current = t }
