// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/seedworks/flpkg/lib/seed"
)

// Generated archive entries. Every FLPKG container carries exactly
// these two alongside the source files.
const (
	// ManifestName is the structured record of every entry.
	ManifestName = "manifest.json"

	// IndexName is the human-readable Markdown index.
	IndexName = "index.md"
)

// previewMaxRunes caps the decoded first-line preview length.
const previewMaxRunes = 120

// ManifestEntry records one file included in a container.
type ManifestEntry struct {
	// Path is the slash-separated path relative to the source root.
	Path string `json:"path"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// SHA1 is the lowercase hex SHA-1 of the file content. SHA-1 is
	// the container wire format's digest; it detects accidental
	// corruption and casual tampering, not adversarial collisions.
	SHA1 string `json:"sha1"`

	// MIME is the best-effort content type guessed from the filename
	// extension.
	MIME string `json:"mime"`

	// Preview is the decoded first line of text-like files, empty
	// for everything else.
	Preview string `json:"preview,omitempty"`
}

// Manifest is the content of a container's manifest.json: the
// resolved source root plus one entry per file in lexicographic path
// order.
type Manifest struct {
	Root  string          `json:"root"`
	Files []ManifestEntry `json:"files"`
}

// Entry returns the manifest entry for the given path, or nil.
func (m *Manifest) Entry(entryPath string) *ManifestEntry {
	for i := range m.Files {
		if m.Files[i].Path == entryPath {
			return &m.Files[i]
		}
	}
	return nil
}

// mimeByExtension maps the system's own extensions, which the host's
// MIME database does not know.
var mimeByExtension = map[string]string{
	".chain": "text/x-flpkg-chain",
	".flsd":  "application/x-flpkg-seed",
}

// guessMIME returns the best-effort content type for a filename. The
// project's own extensions take precedence; everything else goes
// through the platform MIME table with parameters stripped, falling
// back to application/octet-stream.
func guessMIME(name string) string {
	extension := path.Ext(name)
	if custom, ok := mimeByExtension[extension]; ok {
		return custom
	}
	if guessed := mime.TypeByExtension(extension); guessed != "" {
		if cut := strings.IndexByte(guessed, ';'); cut >= 0 {
			guessed = strings.TrimSpace(guessed[:cut])
		}
		return guessed
	}
	return "application/octet-stream"
}

// previewSuffixes is the fixed allow-list of text-like extensions
// whose first line is captured in the manifest.
var previewSuffixes = []string{".txt", ".md", ".chain", seed.FileSuffix()}

// previewAllowed reports whether a path's extension is in the preview
// allow-list, optionally extended by the caller.
func previewAllowed(name string, extra []string) bool {
	for _, suffix := range previewSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	for _, suffix := range extra {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// firstLinePreview decodes the first line of content, tolerating
// invalid bytes: anything that is not valid UTF-8 is replaced rather
// than failing. The result is trimmed and capped at previewMaxRunes.
func firstLinePreview(content []byte) string {
	decoded := strings.ToValidUTF8(string(content), "�")
	if cut := strings.IndexAny(decoded, "\r\n"); cut >= 0 {
		decoded = decoded[:cut]
	}
	decoded = strings.TrimSpace(decoded)

	runes := []rune(decoded)
	if len(runes) > previewMaxRunes {
		decoded = string(runes[:previewMaxRunes])
	}
	return decoded
}

// renderIndex produces index.md: one bullet line per manifest entry
// with the path, size, digest prefix, and preview. An empty manifest
// renders an empty index.
func renderIndex(m *Manifest) []byte {
	var b strings.Builder
	for _, entry := range m.Files {
		fmt.Fprintf(&b, "- %s  (%d bytes, sha1:%s…)", entry.Path, entry.Size, entry.SHA1[:8])
		if entry.Preview != "" {
			b.WriteString("  ")
			b.WriteString(entry.Preview)
		}
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
