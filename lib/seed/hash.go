// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Checksum is a 32-byte BLAKE3 digest over a seed's canonical payload
// bytes (deterministic CBOR of particle data, metadata, and creation
// time).
type Checksum [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures seed checksums can never collide with digests
// computed elsewhere over the same bytes. The byte values are the
// ASCII encoding of the domain name, zero-padded to 32 bytes, so the
// key is inspectable in hex dumps. Changing it invalidates every
// stored checksum.
var seedDomainKey = [32]byte{
	'f', 'l', 'p', 'k', 'g', '.', 's', 'e', 'e', 'd', 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// ComputeChecksum computes the seed-domain BLAKE3 keyed hash of the
// canonical payload bytes.
func ComputeChecksum(canonical []byte) Checksum {
	// NewKeyed only fails for a wrong key length, which the fixed-size
	// array rules out.
	hasher, err := blake3.NewKeyed(seedDomainKey[:])
	if err != nil {
		panic("seed: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(canonical)

	var sum Checksum
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// FormatChecksum returns the lowercase hex representation of a
// checksum. This is the form stored in seed files and shown by the
// CLI.
func FormatChecksum(sum Checksum) string {
	return hex.EncodeToString(sum[:])
}

// ParseChecksum parses a 64-character hex string into a Checksum.
func ParseChecksum(hexString string) (Checksum, error) {
	var sum Checksum
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return sum, fmt.Errorf("parsing seed checksum: %w", err)
	}
	if len(decoded) != 32 {
		return sum, fmt.Errorf("seed checksum is %d bytes, want 32", len(decoded))
	}
	copy(sum[:], decoded)
	return sum, nil
}
