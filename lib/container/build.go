// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

// Package container implements the FLPKG container format: a
// ZIP-compatible archive (deflate) bundling a directory's files with
// a generated manifest.json and a human-readable index.md.
//
// Entries are written in lexicographic order of their slash-separated
// relative paths, so repeated builds of an unchanged tree differ only
// in embedded timestamps. Builds are atomic: the archive is assembled
// at a temporary path and renamed into place on success, so a failed
// build never leaves a partial container behind.
package container

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/klauspost/compress/zip"

	"github.com/seedworks/flpkg/lib/clock"
)

// SourceNotFoundError reports a build source that does not exist or
// is not a directory.
type SourceNotFoundError struct {
	Path string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source directory %q not found", e.Path)
}

// BuildOptions adjusts container construction. The zero value is
// ready to use.
type BuildOptions struct {
	// Clock supplies the build instant stamped on the generated
	// manifest.json and index.md entries. Defaults to the real clock.
	Clock clock.Clock

	// ExtraPreviewSuffixes extends the text-preview allow-list, e.g.
	// from configuration.
	ExtraPreviewSuffixes []string
}

// Build walks sourceDir, computes each regular file's manifest entry,
// and writes the FLPKG archive to outPath. Returns the generated
// manifest. Fails with SourceNotFoundError when sourceDir is missing;
// an existing but empty directory builds an archive holding only the
// two generated entries.
func Build(sourceDir, outPath string, options BuildOptions) (*Manifest, error) {
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}

	info, err := os.Stat(sourceDir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, &SourceNotFoundError{Path: sourceDir}
	}
	if err != nil {
		return nil, fmt.Errorf("checking source directory %s: %w", sourceDir, err)
	}

	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolving source directory %s: %w", sourceDir, err)
	}
	absOut, err := filepath.Abs(outPath)
	if err != nil {
		return nil, fmt.Errorf("resolving output path %s: %w", outPath, err)
	}

	relative, err := listFiles(root, absOut)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{Root: root, Files: []ManifestEntry{}}

	// Assemble at a temporary path in the destination directory and
	// rename on success.
	tmp, err := os.CreateTemp(filepath.Dir(absOut), ".flpkg-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary archive: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(cause error) (*Manifest, error) {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, cause
	}

	archive := zip.NewWriter(tmp)
	stamp := clk.Now().UTC()

	for _, relPath := range relative {
		filePath := filepath.Join(root, filepath.FromSlash(relPath))
		content, err := os.ReadFile(filePath)
		if err != nil {
			return fail(fmt.Errorf("reading %s: %w", filePath, err))
		}
		fileInfo, err := os.Stat(filePath)
		if err != nil {
			return fail(fmt.Errorf("stat %s: %w", filePath, err))
		}

		digest := sha1.Sum(content)
		entry := ManifestEntry{
			Path: relPath,
			Size: int64(len(content)),
			SHA1: hex.EncodeToString(digest[:]),
			MIME: guessMIME(relPath),
		}
		if previewAllowed(relPath, options.ExtraPreviewSuffixes) {
			entry.Preview = firstLinePreview(content)
		}
		manifest.Files = append(manifest.Files, entry)

		writer, err := archive.CreateHeader(&zip.FileHeader{
			Name:     relPath,
			Method:   zip.Deflate,
			Modified: fileInfo.ModTime().UTC(),
		})
		if err != nil {
			return fail(fmt.Errorf("adding %s to archive: %w", relPath, err))
		}
		if _, err := writer.Write(content); err != nil {
			return fail(fmt.Errorf("writing %s to archive: %w", relPath, err))
		}
	}

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fail(fmt.Errorf("encoding manifest: %w", err))
	}
	manifestData = append(manifestData, '\n')

	for _, generated := range []struct {
		name    string
		content []byte
	}{
		{ManifestName, manifestData},
		{IndexName, renderIndex(manifest)},
	} {
		writer, err := archive.CreateHeader(&zip.FileHeader{
			Name:     generated.name,
			Method:   zip.Deflate,
			Modified: stamp,
		})
		if err != nil {
			return fail(fmt.Errorf("adding %s to archive: %w", generated.name, err))
		}
		if _, err := writer.Write(generated.content); err != nil {
			return fail(fmt.Errorf("writing %s to archive: %w", generated.name, err))
		}
	}

	if err := archive.Close(); err != nil {
		return fail(fmt.Errorf("finalizing archive: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	if err := os.Rename(tmpPath, absOut); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("moving archive into place: %w", err)
	}

	return manifest, nil
}

// listFiles returns the slash-separated relative paths of all regular
// files under root in lexicographic order. The output archive itself
// is skipped if it happens to live inside the source tree.
func listFiles(root, skipAbs string) ([]string, error) {
	var relative []string
	err := filepath.WalkDir(root, func(walkPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !entry.Type().IsRegular() {
			return nil
		}
		if walkPath == skipAbs {
			return nil
		}
		rel, err := filepath.Rel(root, walkPath)
		if err != nil {
			return err
		}
		relative = append(relative, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking source directory %s: %w", root, err)
	}
	sort.Strings(relative)
	return relative, nil
}
