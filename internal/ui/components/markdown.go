// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// Markdown renders assistant prose with glamour at a fixed wrap width.
// The renderer is rebuilt lazily when the width changes (a resize).
// With markdown disabled, prose passes through untouched and fenced
// code blocks are still highlighted unless that is disabled too.
type Markdown struct {
	mu        sync.Mutex
	renderer  *glamour.TermRenderer
	width     int
	enabled   bool
	highlight bool
}

// NewMarkdown creates a renderer wrapping at width columns.
func NewMarkdown(width int) *Markdown {
	m := &Markdown{enabled: true, highlight: true}
	m.SetWidth(width)
	return m
}

// SetOptions toggles glamour rendering and code block highlighting.
func (m *Markdown) SetOptions(markdown, highlight bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = markdown
	m.highlight = highlight
}

// SetWidth rebuilds the renderer for a new wrap width.
func (m *Markdown) SetWidth(width int) {
	if width < 20 {
		width = 20
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if width == m.width && m.renderer != nil {
		return
	}
	m.width = width

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		// Plain text fallback
		m.renderer = nil
		return
	}
	m.renderer = renderer
}

// Render renders markdown content for terminal display. Returns the
// content with only code blocks rendered when markdown is disabled or
// the renderer is unavailable, and verbatim as the last resort.
func (m *Markdown) Render(content string) string {
	m.mu.Lock()
	renderer := m.renderer
	enabled := m.enabled
	highlight := m.highlight
	width := m.width
	m.mu.Unlock()

	if enabled && renderer != nil {
		rendered, err := renderer.Render(content)
		if err == nil {
			return strings.TrimRight(rendered, "\n")
		}
	}
	if highlight {
		return ParseCodeBlocks(content, width)
	}
	return content
}
