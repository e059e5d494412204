// Copyright 2026 The Seedworks Authors
// SPDX-License-Identifier: Apache-2.0

package container

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// verifyIndex parses index.md as Markdown and cross-checks its list
// items against the manifest: one bullet per manifest entry, each
// naming its path. Returns human-readable issue strings; an empty
// slice means the index is structurally consistent.
func verifyIndex(indexData []byte, manifest *Manifest) []string {
	issues := []string{}

	document := goldmark.New().Parser().Parse(text.NewReader(indexData))

	var items []string
	ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := node.(*ast.ListItem); ok {
			items = append(items, nodeText(node, indexData))
		}
		return ast.WalkContinue, nil
	})

	if len(items) != len(manifest.Files) {
		issues = append(issues, fmt.Sprintf(
			"%s has %d list items, manifest records %d files",
			IndexName, len(items), len(manifest.Files)))
	}

	for _, entry := range manifest.Files {
		found := false
		for _, item := range items {
			if strings.Contains(item, entry.Path) {
				found = true
				break
			}
		}
		if !found {
			issues = append(issues, fmt.Sprintf(
				"%s has no entry for %s", IndexName, entry.Path))
		}
	}

	return issues
}

// nodeText gathers the raw text content beneath a node.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if textNode, ok := child.(*ast.Text); ok {
			b.Write(textNode.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
