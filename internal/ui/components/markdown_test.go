// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestRenderPassthroughWhenDisabled(t *testing.T) {
	m := NewMarkdown(80)
	m.SetOptions(false, false)

	content := "plain **bold** text"
	if got := m.Render(content); got != content {
		t.Errorf("Render() = %q, want verbatim passthrough", got)
	}
}

func TestRenderHighlightsCodeWhenMarkdownDisabled(t *testing.T) {
	m := NewMarkdown(80)
	m.SetOptions(false, true)

	content := "before\n```go\npackage main\n```\nafter"
	got := m.Render(content)
	if strings.Contains(got, "```") {
		t.Errorf("Render() left the fence markers in place:\n%s", got)
	}
	if !strings.Contains(got, "before") || !strings.Contains(got, "after") {
		t.Errorf("Render() dropped surrounding prose:\n%s", got)
	}
}

func TestParseCodeBlocksLeavesProseUntouched(t *testing.T) {
	text := "no fences here\njust prose"
	if got := ParseCodeBlocks(text, 80); got != text {
		t.Errorf("ParseCodeBlocks() = %q, want unchanged", got)
	}
}

func TestParseCodeBlocksRendersUnclosedFence(t *testing.T) {
	got := ParseCodeBlocks("```python\nprint(1)", 80)
	if strings.Contains(got, "```") {
		t.Errorf("unclosed fence marker survived:\n%s", got)
	}
	// Chroma may interleave ANSI sequences between tokens, so only the
	// token itself is checked.
	if !strings.Contains(got, "print") {
		t.Errorf("code body missing:\n%s", got)
	}
}
