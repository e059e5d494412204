// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package timing

import (
	"testing"
	"time"

	"github.com/seedworks/flpkg/lib/clock"
)

func TestObserveAggregates(t *testing.T) {
	registry := NewRegistry(clock.Fake(time.Unix(0, 0)))

	registry.Observe("build", 10*time.Millisecond)
	registry.Observe("build", 30*time.Millisecond)
	registry.Observe("inspect", 5*time.Millisecond)

	snapshot := registry.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("snapshot has %d operations, want 2", len(snapshot))
	}

	// Sorted by name.
	build, inspect := snapshot[0], snapshot[1]
	if build.Operation != "build" || inspect.Operation != "inspect" {
		t.Fatalf("snapshot order = %s, %s", build.Operation, inspect.Operation)
	}

	if build.Count != 2 || build.Total != 40*time.Millisecond {
		t.Errorf("build stats = %+v", build)
	}
	if build.Min != 10*time.Millisecond || build.Max != 30*time.Millisecond {
		t.Errorf("build min/max = %v/%v", build.Min, build.Max)
	}
	if build.Mean() != 20*time.Millisecond {
		t.Errorf("build mean = %v", build.Mean())
	}
}

func TestTimeMeasuresWithClock(t *testing.T) {
	fake := clock.Fake(time.Unix(1000, 0))
	registry := NewRegistry(fake)

	stop := registry.Time("simulate")
	fake.Advance(250 * time.Millisecond)
	stop()

	snapshot := registry.Snapshot()
	if len(snapshot) != 1 || snapshot[0].Total != 250*time.Millisecond {
		t.Errorf("snapshot = %+v", snapshot)
	}
}

func TestRegistriesAreIsolated(t *testing.T) {
	first := NewRegistry(clock.Fake(time.Unix(0, 0)))
	second := NewRegistry(clock.Fake(time.Unix(0, 0)))

	first.Observe("op", time.Second)

	if len(second.Snapshot()) != 0 {
		t.Error("observation leaked into another registry")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	registry := NewRegistry(clock.Fake(time.Unix(0, 0)))
	registry.Observe("op", time.Second)

	snapshot := registry.Snapshot()
	registry.Observe("op", time.Second)

	if snapshot[0].Count != 1 {
		t.Error("snapshot mutated by later observation")
	}
}
