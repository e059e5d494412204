// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extract writes every archive entry to its relative path beneath
// destDir, creating destDir and intermediate directories as needed.
// Returns the number of entries written. Entry names that would escape
// destDir (absolute paths, "..") are rejected rather than written.
func Extract(archivePath, destDir string) (int, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return 0, fmt.Errorf("opening archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating destination %s: %w", destDir, err)
	}

	extracted := 0
	for _, file := range reader.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(file.Name)) {
			return extracted, fmt.Errorf("archive entry %q escapes the destination directory", file.Name)
		}

		target := filepath.Join(destDir, filepath.FromSlash(file.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return extracted, fmt.Errorf("creating directory for %s: %w", file.Name, err)
		}

		if err := extractEntry(file, target); err != nil {
			return extracted, fmt.Errorf("extracting %s: %w", file.Name, err)
		}
		extracted++
	}
	return extracted, nil
}

func extractEntry(file *zip.File, target string) error {
	opened, err := file.Open()
	if err != nil {
		return err
	}
	defer opened.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, opened); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
