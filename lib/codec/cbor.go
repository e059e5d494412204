// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the project's standard CBOR configuration.
//
// Two serialization formats are used, with a clear boundary:
//
//   - JSON for external surfaces: seed files on disk, container
//     manifests, result documents, and CLI --json output.
//   - CBOR for canonical and compact bytes: the checksum input of a
//     memory seed and the payload of the compact seed form (FLSD).
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. The same logical payload always produces identical bytes,
// which is what makes seed checksums reproducible across runs and
// across map insertion orders.
package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding. Seed checksums are BLAKE3 over these bytes, so the
// configuration is part of the checksum contract and must not change.
var encMode cbor.EncMode

// decMode is the CBOR decoder. Unknown fields are ignored for forward
// compatibility with newer compact-form producers.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// Seed payloads are string-keyed throughout. When decoding
		// into any-typed targets (particle_data, metadata) the decoder
		// must pick a concrete map type; the CBOR default of
		// map[interface{}]interface{} is incompatible with
		// encoding/json and everything downstream that expects
		// map[string]any.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder. Type alias so consumers import
// only lib/codec, not fxamacker/cbor directly.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder. Type alias so consumers import
// only lib/codec, not fxamacker/cbor directly.
type Decoder = cbor.Decoder

// NewEncoder returns a CBOR encoder that writes to w using the
// standard deterministic configuration.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a CBOR decoder that reads from r using the
// standard decoding configuration.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}
