// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"bytes"
	"crypto/rand"
	"strings"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("flow recurse store ", 100))

	for _, algorithm := range []Algorithm{AlgorithmNone, AlgorithmLZ4, AlgorithmZstd} {
		t.Run(algorithm.String(), func(t *testing.T) {
			compressed, applied, err := compress(payload, algorithm)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			if algorithm != AlgorithmNone {
				if applied != algorithm {
					t.Fatalf("applied = %s, want %s", applied, algorithm)
				}
				if len(compressed) >= len(payload) {
					t.Errorf("repetitive payload did not shrink: %d -> %d", len(payload), len(compressed))
				}
			}

			restored, err := decompress(compressed, applied, len(payload))
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}
			if !bytes.Equal(restored, payload) {
				t.Error("round trip altered the payload")
			}
		})
	}
}

func TestCompressIncompressibleFallsBackToNone(t *testing.T) {
	// Random bytes cannot shrink under any general-purpose algorithm.
	payload := make([]byte, 4096)
	if _, err := rand.Read(payload); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	for _, algorithm := range []Algorithm{AlgorithmLZ4, AlgorithmZstd} {
		t.Run(algorithm.String(), func(t *testing.T) {
			compressed, applied, err := compress(payload, algorithm)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			if applied != AlgorithmNone {
				t.Fatalf("applied = %s, want none for random payload", applied)
			}
			if !bytes.Equal(compressed, payload) {
				t.Error("fallback to none altered the payload")
			}
		})
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	payload := []byte(strings.Repeat("mark ", 200))
	compressed, applied, err := compress(payload, AlgorithmZstd)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if _, err := decompress(compressed, applied, len(payload)-1); err == nil {
		t.Error("decompress accepted a wrong uncompressed size")
	}
}
