// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package seed implements the memory seed store: named, checksummed
// archival units holding arbitrary structured payloads.
//
// A seed is written once and never modified. Its checksum is a
// domain-keyed BLAKE3 digest over the deterministic CBOR encoding of
// {particle_data, metadata, created_at}, so logically equal payloads
// produce identical checksums regardless of map insertion order. The
// on-disk seed file is JSON (the external surface); the compact FLSD
// form re-encodes the same document as compressed CBOR for transport.
//
// The store is not safe against concurrent writers racing on the same
// seed name; callers serialize access per name.
package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/seedworks/flpkg/lib/clock"
	"github.com/seedworks/flpkg/lib/codec"
)

// fileSuffix is the on-disk suffix for seed files. Container preview
// logic and the CLI both rely on it.
const fileSuffix = ".seed.json"

// FileSuffix returns the on-disk suffix for seed files.
func FileSuffix() string { return fileSuffix }

// DuplicateSeedError reports an attempt to create a seed under a name
// that already exists. Seeds are immutable; re-creating is an error,
// never an overwrite.
type DuplicateSeedError struct {
	Name string
}

func (e *DuplicateSeedError) Error() string {
	return fmt.Sprintf("seed %q already exists", e.Name)
}

// SeedNotFoundError reports a lookup of an absent seed name.
type SeedNotFoundError struct {
	Name string
}

func (e *SeedNotFoundError) Error() string {
	return fmt.Sprintf("seed %q not found", e.Name)
}

// SerializationError reports a payload outside the supported
// structured-data model (numbers, strings, booleans, nil, slices,
// string-keyed maps, arbitrarily nested).
type SerializationError struct {
	// Path locates the offending value within the payload, e.g.
	// "particle_data.readings[2]".
	Path string
	// Kind describes the unsupported Go value.
	Kind string
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("payload cannot be serialized: unsupported %s at %s", e.Kind, e.Path)
}

// Seed is one archival unit as stored on disk.
type Seed struct {
	Name      string    `json:"seed_name"`
	Particle  any       `json:"particle_data"`
	Metadata  any       `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
}

// Descriptor summarizes a stored seed for listings.
type Descriptor struct {
	Name      string    `json:"seed_name"`
	File      string    `json:"seed_file"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
}

// CreateResult is returned by Create: the name, the storage location,
// and the content checksum the caller can hold as a reference.
type CreateResult struct {
	Name     string `json:"seed_name"`
	File     string `json:"seed_file"`
	Checksum string `json:"checksum"`
}

// Store persists seeds as one JSON file per seed under a root
// directory, keyed by seed name.
type Store struct {
	root  string
	clock clock.Clock
}

// NewStore creates a Store rooted at the given directory, creating it
// if absent.
func NewStore(root string, clk clock.Clock) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating seed store directory %s: %w", root, err)
	}
	return &Store{root: root, clock: clk}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Create serializes {particle, metadata, created_at} to a new seed
// file and returns its name, location, and checksum. The creation
// instant comes from the store's clock, captured once. Fails with
// DuplicateSeedError if the name is taken (leaving the store
// unchanged) and SerializationError if either payload is outside the
// supported data model.
func (s *Store) Create(name string, particle, metadata any) (*CreateResult, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validatePayload("particle_data", particle); err != nil {
		return nil, err
	}
	if err := validatePayload("metadata", metadata); err != nil {
		return nil, err
	}

	finalPath := s.path(name)
	if _, err := os.Stat(finalPath); err == nil {
		return nil, &DuplicateSeedError{Name: name}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking for existing seed %q: %w", name, err)
	}

	created := s.clock.Now().UTC().Truncate(time.Second)

	sum, err := checksumPayload(particle, metadata, created)
	if err != nil {
		return nil, err
	}

	doc := Seed{
		Name:      name,
		Particle:  particle,
		Metadata:  metadata,
		CreatedAt: created,
		Checksum:  FormatChecksum(sum),
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		// validatePayload admits only JSON-encodable values, so this
		// indicates a bug rather than bad input.
		return nil, fmt.Errorf("encoding seed %q: %w", name, err)
	}
	data = append(data, '\n')

	// Write to a temporary file in the same directory and rename, so
	// a failed create never leaves a partial seed behind.
	tmp, err := os.CreateTemp(s.root, ".seed-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary seed file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("writing seed %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("closing seed %q: %w", name, err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("persisting seed %q: %w", name, err)
	}

	return &CreateResult{
		Name:     name,
		File:     finalPath,
		Checksum: doc.Checksum,
	}, nil
}

// List enumerates all persisted seeds, sorted by name so repeated
// calls against an unchanged store return identical sequences.
func (s *Store) List() ([]Descriptor, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading seed store %s: %w", s.root, err)
	}

	var descriptors []Descriptor
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), fileSuffix)

		loaded, err := s.Load(name)
		if err != nil {
			return nil, fmt.Errorf("listing seed %q: %w", name, err)
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("listing seed %q: %w", name, err)
		}

		descriptors = append(descriptors, Descriptor{
			Name:      loaded.Name,
			File:      s.path(name),
			CreatedAt: loaded.CreatedAt,
			Checksum:  loaded.Checksum,
			Size:      info.Size(),
		})
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors, nil
}

// Load reads the named seed from disk. Fails with SeedNotFoundError
// if the name is absent.
func (s *Store) Load(name string) (*Seed, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &SeedNotFoundError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("reading seed %q: %w", name, err)
	}

	var doc Seed
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding seed %q: %w", name, err)
	}
	return &doc, nil
}

// path returns the on-disk location for a seed name.
func (s *Store) path(name string) string {
	return filepath.Join(s.root, name+fileSuffix)
}

// validateName rejects names that would escape the store directory or
// collide with temporary files.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("seed name is empty")
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("seed name %q starts with a dot", name)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("seed name %q contains invalid character %q", name, r)
		}
	}
	return nil
}

// checksumDocument is the canonical checksum input. The timestamp is
// a fixed-format string rather than a time.Time so the canonical
// bytes do not depend on CBOR time-encoding options.
type checksumDocument struct {
	Particle  any    `json:"particle_data"`
	Metadata  any    `json:"metadata"`
	CreatedAt string `json:"created_at"`
}

// checksumPayload computes the seed checksum: BLAKE3 (seed domain)
// over the deterministic CBOR encoding of the payload document. The
// document is first normalized through the JSON data model so that
// the checksum does not depend on the Go-side number types — a fresh
// int payload, the float64 that comes back from reading the JSON
// seed file, and the values recovered from a compact form all
// checksum identically.
func checksumPayload(particle, metadata any, created time.Time) (Checksum, error) {
	document := checksumDocument{
		Particle:  particle,
		Metadata:  metadata,
		CreatedAt: created.UTC().Format(time.RFC3339),
	}

	viaJSON, err := json.Marshal(&document)
	if err != nil {
		return Checksum{}, fmt.Errorf("normalizing payload for checksum: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(viaJSON, &normalized); err != nil {
		return Checksum{}, fmt.Errorf("normalizing payload for checksum: %w", err)
	}

	canonical, err := codec.Marshal(normalized)
	if err != nil {
		return Checksum{}, fmt.Errorf("canonical encoding for checksum: %w", err)
	}
	return ComputeChecksum(canonical), nil
}

// validatePayload walks value and rejects anything outside the
// supported structured-data model. path names the offending location
// in error messages.
func validatePayload(path string, value any) error {
	if value == nil {
		return nil
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil

	case reflect.Float32, reflect.Float64:
		// JSON has no encoding for these; rejecting here gives the
		// caller a SerializationError instead of a marshal failure.
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &SerializationError{Path: path, Kind: "non-finite float"}
		}
		return nil

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			element := v.Index(i)
			if err := validatePayload(fmt.Sprintf("%s[%d]", path, i), deref(element)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return &SerializationError{Path: path, Kind: "map with non-string keys"}
		}
		iterator := v.MapRange()
		for iterator.Next() {
			key := iterator.Key().String()
			if err := validatePayload(path+"."+key, deref(iterator.Value())); err != nil {
				return err
			}
		}
		return nil

	default:
		return &SerializationError{Path: path, Kind: v.Kind().String()}
	}
}

// deref unwraps interface and pointer values so validatePayload sees
// the underlying kind; nil pointers become untyped nil.
func deref(v reflect.Value) any {
	for v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if !v.CanInterface() {
		return nil
	}
	return v.Interface()
}
