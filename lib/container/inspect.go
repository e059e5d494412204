// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ContentIntegrityError reports entries whose recomputed digest
// disagrees with the digest recorded in the archive's manifest.
type ContentIntegrityError struct {
	Archive string
	// Paths lists the mismatching entries.
	Paths []string
}

func (e *ContentIntegrityError) Error() string {
	return fmt.Sprintf("content integrity violation in %s: digest mismatch for %s",
		e.Archive, strings.Join(e.Paths, ", "))
}

// EntryReport holds the recomputed values for one archive entry,
// plus the manifest-recorded values when the archive carries a
// manifest that mentions the entry.
type EntryReport struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	SHA1    string `json:"sha1"`
	MIME    string `json:"mime"`
	Preview string `json:"preview,omitempty"`

	// Recorded is the manifest entry for this path, nil when the
	// archive has no manifest or the manifest does not mention it.
	Recorded *ManifestEntry `json:"recorded,omitempty"`

	// DigestMismatch is true when Recorded is present and its SHA1
	// differs from the recomputed one.
	DigestMismatch bool `json:"digest_mismatch"`
}

// Report is the result of inspecting an archive without extracting
// it.
type Report struct {
	Archive string `json:"archive"`

	// Manifest is the decoded manifest.json, nil when absent.
	Manifest *Manifest `json:"manifest,omitempty"`

	// Entries covers every archive entry, generated ones included,
	// in archive order.
	Entries []EntryReport `json:"entries"`

	// Mismatches lists paths whose recomputed digest disagrees with
	// the manifest.
	Mismatches []string `json:"mismatches"`

	// MissingFiles lists manifest paths absent from the archive.
	MissingFiles []string `json:"missing_files"`

	// IndexIssues lists structural problems found when checking
	// index.md against the manifest.
	IndexIssues []string `json:"index_issues"`
}

// Inspect opens the archive, recomputes size, digest, and preview for
// every entry, and compares against the recorded manifest when one is
// present. The report is always returned when the archive is
// readable; if any recomputed digest disagrees with the manifest, the
// error is a ContentIntegrityError and the report still carries the
// full comparison so callers can show both values.
func Inspect(archivePath string) (*Report, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	report := &Report{
		Archive:      archivePath,
		Entries:      []EntryReport{},
		Mismatches:   []string{},
		MissingFiles: []string{},
		IndexIssues:  []string{},
	}

	contents := make(map[string][]byte)
	for _, file := range reader.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		content, err := readEntry(file)
		if err != nil {
			return nil, fmt.Errorf("reading archive entry %s: %w", file.Name, err)
		}
		contents[file.Name] = content
	}

	if manifestData, ok := contents[ManifestName]; ok {
		var manifest Manifest
		if err := json.Unmarshal(manifestData, &manifest); err != nil {
			return nil, fmt.Errorf("decoding %s in %s: %w", ManifestName, archivePath, err)
		}
		report.Manifest = &manifest
	}

	for _, file := range reader.File {
		content, ok := contents[file.Name]
		if !ok {
			continue
		}

		digest := sha1.Sum(content)
		entry := EntryReport{
			Path: file.Name,
			Size: int64(len(content)),
			SHA1: hex.EncodeToString(digest[:]),
			MIME: guessMIME(file.Name),
		}
		if previewAllowed(file.Name, nil) {
			entry.Preview = firstLinePreview(content)
		}

		if report.Manifest != nil {
			if recorded := report.Manifest.Entry(file.Name); recorded != nil {
				entry.Recorded = recorded
				if recorded.SHA1 != entry.SHA1 {
					entry.DigestMismatch = true
					report.Mismatches = append(report.Mismatches, file.Name)
				}
			}
		}
		report.Entries = append(report.Entries, entry)
	}

	if report.Manifest != nil {
		for _, recorded := range report.Manifest.Files {
			if _, ok := contents[recorded.Path]; !ok {
				report.MissingFiles = append(report.MissingFiles, recorded.Path)
			}
		}

		if indexData, ok := contents[IndexName]; ok {
			report.IndexIssues = verifyIndex(indexData, report.Manifest)
		} else {
			report.IndexIssues = append(report.IndexIssues, IndexName+" is missing")
		}
	}

	if len(report.Mismatches) > 0 {
		return report, &ContentIntegrityError{
			Archive: archivePath,
			Paths:   append([]string(nil), report.Mismatches...),
		}
	}
	return report, nil
}

// readEntry decompresses one archive entry into memory.
func readEntry(file *zip.File) ([]byte, error) {
	opened, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer opened.Close()
	return io.ReadAll(opened)
}
