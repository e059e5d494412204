// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/seedworks/flpkg/lib/codec"
)

// Compact form (FLSD) layout:
//
//	offset 0: 4-byte magic "FLSD"
//	offset 4: 1-byte format version
//	offset 5: 1-byte compression algorithm
//	offset 6: 4-byte big-endian uncompressed payload size
//	offset 10: payload — deterministic CBOR of the seed document,
//	           compressed per the algorithm byte
const (
	compactVersion    = 1
	compactHeaderSize = 10
)

// compactMagic is the 4-byte FLSD file signature.
var compactMagic = [4]byte{'F', 'L', 'S', 'D'}

// CompactForm is an encoded compact seed plus the parameters needed
// to describe it.
type CompactForm struct {
	// Name is the seed name the form was encoded from.
	Name string `json:"seed_name"`

	// Algorithm is the compression actually applied (may be
	// AlgorithmNone when the payload was incompressible).
	Algorithm Algorithm `json:"-"`

	// Data is the complete envelope: header plus compressed payload.
	Data []byte `json:"-"`

	// OriginalSize is the uncompressed CBOR payload size in bytes.
	OriginalSize int `json:"original_size"`
}

// compactDocument is the CBOR payload of the compact form: the full
// seed document with a string timestamp, matching the checksum input
// format so the checksum can be re-verified after decoding.
type compactDocument struct {
	Name      string `json:"seed_name"`
	Particle  any    `json:"particle_data"`
	Metadata  any    `json:"metadata"`
	CreatedAt string `json:"created_at"`
	Checksum  string `json:"checksum"`
}

// Compress loads the named seed and re-encodes it into the compact
// FLSD form using the requested algorithm. Fails with
// SeedNotFoundError if the name is absent.
func (s *Store) Compress(name string, algorithm Algorithm) (*CompactForm, error) {
	loaded, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	return EncodeCompact(loaded, algorithm)
}

// EncodeCompact encodes a seed document into the FLSD envelope.
func EncodeCompact(doc *Seed, algorithm Algorithm) (*CompactForm, error) {
	payload, err := codec.Marshal(compactDocument{
		Name:      doc.Name,
		Particle:  doc.Particle,
		Metadata:  doc.Metadata,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
		Checksum:  doc.Checksum,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding compact payload for %q: %w", doc.Name, err)
	}
	if len(payload) > math.MaxUint32 {
		return nil, fmt.Errorf("compact payload for %q is %d bytes, exceeds format limit", doc.Name, len(payload))
	}

	compressed, applied, err := compress(payload, algorithm)
	if err != nil {
		return nil, fmt.Errorf("compressing compact payload for %q: %w", doc.Name, err)
	}

	envelope := make([]byte, compactHeaderSize, compactHeaderSize+len(compressed))
	copy(envelope[0:4], compactMagic[:])
	envelope[4] = compactVersion
	envelope[5] = byte(applied)
	binary.BigEndian.PutUint32(envelope[6:10], uint32(len(payload)))
	envelope = append(envelope, compressed...)

	return &CompactForm{
		Name:         doc.Name,
		Algorithm:    applied,
		Data:         envelope,
		OriginalSize: len(payload),
	}, nil
}

// DecodeCompact decodes an FLSD envelope back into the seed document
// it was encoded from and verifies the embedded checksum against the
// recovered payload. The recovered particle data and metadata are
// equal to the originals up to CBOR's canonical number
// representation (positive integers decode as uint64, and so on).
func DecodeCompact(data []byte) (*Seed, error) {
	if len(data) < compactHeaderSize {
		return nil, fmt.Errorf("compact seed: %d bytes is shorter than the %d-byte header", len(data), compactHeaderSize)
	}
	if !bytes.Equal(data[0:4], compactMagic[:]) {
		return nil, fmt.Errorf("compact seed: bad magic %q", data[0:4])
	}
	if data[4] != compactVersion {
		return nil, fmt.Errorf("compact seed: unsupported version %d", data[4])
	}

	algorithm := Algorithm(data[5])
	uncompressedSize := int(binary.BigEndian.Uint32(data[6:10]))

	payload, err := decompress(data[compactHeaderSize:], algorithm, uncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("compact seed: %w", err)
	}

	var doc compactDocument
	if err := codec.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("compact seed: decoding payload: %w", err)
	}

	created, err := time.Parse(time.RFC3339, doc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("compact seed: bad created_at %q: %w", doc.CreatedAt, err)
	}

	// Re-verify the checksum over the recovered payload. Deterministic
	// CBOR guarantees the canonical bytes reproduce exactly when the
	// payload survived intact.
	sum, err := checksumPayload(doc.Particle, doc.Metadata, created)
	if err != nil {
		return nil, fmt.Errorf("compact seed: %w", err)
	}
	if FormatChecksum(sum) != doc.Checksum {
		return nil, fmt.Errorf("compact seed %q: checksum mismatch: computed %s, recorded %s",
			doc.Name, FormatChecksum(sum), doc.Checksum)
	}

	return &Seed{
		Name:      doc.Name,
		Particle:  doc.Particle,
		Metadata:  doc.Metadata,
		CreatedAt: created,
		Checksum:  doc.Checksum,
	}, nil
}
