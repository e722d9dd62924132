// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity builds the chronologically ordered projection of an
// assistant turn's reasoning segments and tool calls.
package activity

import (
	"strings"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// COMPLETED-TURN SUMMARY
// =============================================================================

// Summary condenses a completed turn's activity into the collapsed line
// shown once the turn finishes.
type Summary struct {
	ReasoningCount int
	ToolCallCount  int

	// Thinking is the elapsed span from the first to the last reasoning
	// segment start. Zero when unknown (fewer than two timestamped
	// segments).
	Thinking time.Duration
}

// Summarize computes the collapsed summary for a projection.
func Summarize(items []Item) Summary {
	var sum Summary
	var first, last time.Time

	for _, it := range items {
		switch it.Kind {
		case KindReasoning:
			sum.ReasoningCount++
			ts := it.Reasoning.StartedAt
			if ts.IsZero() {
				continue
			}
			if first.IsZero() || ts.Before(first) {
				first = ts
			}
			if ts.After(last) {
				last = ts
			}
		case KindTool:
			sum.ToolCallCount++
		}
	}

	if !first.IsZero() && last.After(first) {
		sum.Thinking = last.Sub(first)
	}

	return sum
}

// IsEmpty reports whether there is nothing to summarize.
func (s Summary) IsEmpty() bool {
	return s.ReasoningCount == 0 && s.ToolCallCount == 0
}

// Line renders the one-line collapsed summary, e.g.
// "Thought for 3.2s · 2 steps · 1 tool call".
func (s Summary) Line() string {
	if s.IsEmpty() {
		return ""
	}

	var parts []string

	if s.Thinking > 0 {
		parts = append(parts, "Thought for "+formatSpan(s.Thinking))
	} else if s.ReasoningCount > 0 {
		parts = append(parts, "Thought")
	}

	if s.ReasoningCount > 0 {
		parts = append(parts, util.IntToString(s.ReasoningCount)+" "+plural(s.ReasoningCount, "step"))
	}
	if s.ToolCallCount > 0 {
		parts = append(parts, util.IntToString(s.ToolCallCount)+" "+plural(s.ToolCallCount, "tool call"))
	}

	return strings.Join(parts, " · ")
}

// =============================================================================
// TOOL CALL STATUS LABELS
// =============================================================================

// StatusLabel returns the display label for a tool call's lifecycle state.
func StatusLabel(call model.ToolCall) string {
	switch call.Status {
	case model.ToolRunning:
		return "running"
	case model.ToolCompleted:
		return "done"
	case model.ToolError:
		return "failed"
	default:
		return string(call.Status)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func formatSpan(d time.Duration) string {
	if d < time.Second {
		return util.Int64ToString(d.Milliseconds()) + "ms"
	}
	secs := d.Seconds()
	if secs < 60 {
		return util.FloatToStringPrec(secs, 1) + "s"
	}
	mins := int(secs) / 60
	rem := int(secs) % 60
	return util.IntToString(mins) + "m " + util.IntToString(rem) + "s"
}
