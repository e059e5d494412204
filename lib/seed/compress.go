// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package seed

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm identifies the compression applied to a compact seed's
// payload. Values are format constants stored in the FLSD envelope —
// changing them breaks compact-form compatibility.
type Algorithm uint8

const (
	// AlgorithmNone stores the payload uncompressed. Used as the
	// fallback when the payload is too small or too dense to shrink.
	AlgorithmNone Algorithm = 0

	// AlgorithmLZ4 is LZ4 block compression: fast, modest ratio.
	AlgorithmLZ4 Algorithm = 1

	// AlgorithmZstd is zstd at the default level. Better ratios for
	// the text-heavy payloads seeds usually carry. This is the
	// default for new compact forms.
	AlgorithmZstd Algorithm = 2
)

// String returns the human-readable name of an algorithm.
func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmLZ4:
		return "lz4"
	case AlgorithmZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// ParseAlgorithm parses an algorithm from its string representation.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "none":
		return AlgorithmNone, nil
	case "lz4":
		return AlgorithmLZ4, nil
	case "zstd":
		return AlgorithmZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression algorithm: %q", name)
	}
}

// errIncompressible signals that compression would not shrink the
// payload. Callers fall back to AlgorithmNone.
var errIncompressible = errors.New("payload is incompressible")

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("seed: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("seed: zstd decoder initialization failed: " + err.Error())
	}
}

// compress compresses payload with the requested algorithm. When the
// payload does not shrink (or the algorithm is AlgorithmNone), the
// input is returned unchanged with AlgorithmNone, so the envelope
// always records the algorithm actually applied.
func compress(payload []byte, requested Algorithm) ([]byte, Algorithm, error) {
	switch requested {
	case AlgorithmNone:
		return payload, AlgorithmNone, nil

	case AlgorithmLZ4:
		compressed, err := compressLZ4(payload)
		if errors.Is(err, errIncompressible) {
			return payload, AlgorithmNone, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return compressed, AlgorithmLZ4, nil

	case AlgorithmZstd:
		compressed, err := compressZstd(payload)
		if errors.Is(err, errIncompressible) {
			return payload, AlgorithmNone, nil
		}
		if err != nil {
			return nil, 0, err
		}
		return compressed, AlgorithmZstd, nil

	default:
		return nil, 0, fmt.Errorf("unsupported compression algorithm: %d", requested)
	}
}

// decompress reverses compress. The uncompressedSize must match the
// original payload length exactly; a mismatch is an error, never a
// truncated result.
func decompress(compressed []byte, algorithm Algorithm, uncompressedSize int) ([]byte, error) {
	switch algorithm {
	case AlgorithmNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("raw payload: size %d does not match expected %d",
				len(compressed), uncompressedSize)
		}
		return compressed, nil

	case AlgorithmLZ4:
		return decompressLZ4(compressed, uncompressedSize)

	case AlgorithmZstd:
		return decompressZstd(compressed, uncompressedSize)

	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %d", algorithm)
	}
}

func compressLZ4(payload []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(payload))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(payload, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible. Also reject output that is not actually
	// smaller than the input.
	if written == 0 || written >= len(payload) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}

func compressZstd(payload []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(payload, nil)
	if len(compressed) >= len(payload) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
	}
	return result, nil
}
