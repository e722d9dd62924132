// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/ui/styles"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// ATTACHMENT STRIP
// =============================================================================

// AttachmentStrip renders the staged attachments and in-flight uploads
// shown above the composer input.
type AttachmentStrip struct {
	theme    *styles.Theme
	maxWidth int
}

// NewAttachmentStrip creates an attachment strip.
func NewAttachmentStrip(theme *styles.Theme, maxWidth int) *AttachmentStrip {
	return &AttachmentStrip{theme: theme, maxWidth: maxWidth}
}

// SetMaxWidth updates the wrap width.
func (s *AttachmentStrip) SetMaxWidth(width int) {
	s.maxWidth = width
}

// Render renders staged attachments as numbered chips and pending
// uploads as progress lines. Returns "" when there is nothing staged.
func (s *AttachmentStrip) Render(staged []model.Attachment, pending []model.PendingUpload) string {
	if len(staged) == 0 && len(pending) == 0 {
		return ""
	}

	var lines []string

	if len(staged) > 0 {
		var chips []string
		for i, att := range staged {
			icon := "📄"
			if att.IsImage() {
				icon = "🖼"
			}
			name := util.TruncateWidth(att.Name, 24)
			chips = append(chips, s.theme.AttachmentChip.Render(
				fmt.Sprintf("%d %s %s (%s)", i+1, icon, name, humanSize(att.Size))))
		}
		lines = append(lines, strings.Join(chips, " "))
	}

	for _, up := range pending {
		lines = append(lines, s.renderProgress(up))
	}

	return strings.Join(lines, "\n")
}

// renderProgress draws a ten-cell progress bar for one upload.
func (s *AttachmentStrip) renderProgress(up model.PendingUpload) string {
	filled := up.Progress / 10
	if filled > 10 {
		filled = 10
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	name := util.TruncateWidth(up.FileName, 24)
	return s.theme.UploadBar.Render(fmt.Sprintf("↑ %s [%s] %d%%", name, bar, up.Progress))
}

// humanSize formats a byte count for chip display.
func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
