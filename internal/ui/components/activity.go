// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/haven-tui/internal/activity"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/ui/styles"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// ACTIVITY VIEW
// =============================================================================

// ActivityView renders an assistant turn's reasoning and tool calls.
// While the turn streams it shows the full live list; once complete it
// collapses to a one-line summary unless expanded.
type ActivityView struct {
	theme    *styles.Theme
	maxWidth int
}

// NewActivityView creates an activity view.
func NewActivityView(theme *styles.Theme, maxWidth int) *ActivityView {
	return &ActivityView{theme: theme, maxWidth: maxWidth}
}

// SetMaxWidth updates the wrap width.
func (v *ActivityView) SetMaxWidth(width int) {
	v.maxWidth = width
}

// Render renders the activity block for a message. Returns "" when
// there is nothing to show. expanded only matters once the turn is
// complete.
func (v *ActivityView) Render(msg *model.Message, expanded bool) string {
	items := activity.BuildForMessage(msg)
	if len(items) == 0 {
		return ""
	}

	if msg.Phase == model.PhaseComplete {
		return v.renderCollapsed(items, expanded)
	}
	return v.renderLive(items, msg.IsStreaming)
}

// renderLive renders every item in order; the trailing reasoning item
// pulses while the turn is active.
func (v *ActivityView) renderLive(items []activity.Item, isActive bool) string {
	activeIdx := activity.ActiveIndex(items, isActive)

	var lines []string
	for i, item := range items {
		lines = append(lines, v.renderItem(item, i == activeIdx))
	}
	return v.theme.ActivityBox.Render(strings.Join(lines, "\n"))
}

// renderCollapsed renders the summary line, plus the full list when
// expanded. A bare turn (one reasoning item, nothing else) renders the
// reasoning text directly under the summary with no inner framing.
func (v *ActivityView) renderCollapsed(items []activity.Item, expanded bool) string {
	sum := activity.Summarize(items)
	line := v.theme.ActivitySummary.Render("▸ " + sum.Line())
	if !expanded {
		return line
	}

	line = v.theme.ActivitySummary.Render("▾ " + sum.Line())
	if activity.IsBare(items) {
		text := wrapText(items[0].Reasoning.Text, v.maxWidth-2)
		return line + "\n" + v.theme.ActivityBare.Render(text)
	}

	var lines []string
	for _, item := range items {
		lines = append(lines, v.renderItem(item, false))
	}
	return line + "\n" + v.theme.ActivityBox.Render(strings.Join(lines, "\n"))
}

func (v *ActivityView) renderItem(item activity.Item, active bool) string {
	switch item.Kind {
	case activity.KindReasoning:
		text := wrapText(item.Reasoning.Text, v.maxWidth-2)
		if active {
			return v.theme.ReasoningActive.Render("● " + text)
		}
		return v.theme.Reasoning.Render("○ " + text)

	case activity.KindTool:
		label := item.Tool.Name
		if label == "" {
			label = item.Tool.ID
		}
		label = util.TruncateWidth(label, v.maxWidth-8)
		switch item.Tool.Status {
		case model.ToolCompleted:
			return v.theme.ToolCompleted.Render("✓ " + label)
		case model.ToolError:
			line := "✗ " + label
			if item.Tool.Error != "" {
				line += ": " + item.Tool.Error
			}
			return v.theme.ToolFailed.Render(line)
		default:
			return v.theme.ToolRunning.Render("⚙ " + label + "…")
		}
	}
	return ""
}

// wrapText soft-wraps text at width, preserving existing newlines.
func wrapText(text string, width int) string {
	if width < 10 {
		width = 10
	}

	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if util.StringWidth(line)+1+util.StringWidth(word) > width {
				out = append(out, line)
				line = word
				continue
			}
			line += " " + word
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
