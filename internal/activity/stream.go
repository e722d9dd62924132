// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity builds the chronologically ordered projection of an
// assistant turn's reasoning segments and tool calls.
package activity

import (
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// ACTIVITY ITEMS
// =============================================================================

// ItemKind tags the activity item union.
type ItemKind int

const (
	KindReasoning ItemKind = iota
	KindTool
)

// Item is one entry in the merged activity projection: either a
// reasoning segment or a tool call, never both.
type Item struct {
	Kind ItemKind

	// Reasoning fields (Kind == KindReasoning)
	Reasoning model.ReasoningPart
	Index     int // position within the source reasoning parts

	// Tool fields (Kind == KindTool)
	Tool model.ToolCall
}

// StartedAt returns the timestamp the item is ordered by.
func (it Item) StartedAt() time.Time {
	if it.Kind == KindReasoning {
		return it.Reasoning.StartedAt
	}
	return it.Tool.StartedAt
}

// =============================================================================
// PROJECTION
// =============================================================================

// Build merges reasoning parts and tool calls into one list ordered
// ascending by StartedAt. The projection is ephemeral: it is recomputed
// from its inputs on every render, so the sort must be deterministic.
//
// Construction order inserts reasoning items before tool items, and the
// sort is stable, so a reasoning segment and a tool call with equal
// StartedAt always render reasoning first.
//
// Blank (whitespace-only) reasoning parts are dropped. When no
// structured parts exist, a non-blank legacy reasoning string stands in
// as a single part; if structured parts exist the legacy string is
// ignored even when also present.
func Build(parts []model.ReasoningPart, legacyReasoning string, calls []model.ToolCall) []Item {
	effective := parts
	if len(effective) == 0 {
		if text := strings.TrimSpace(legacyReasoning); text != "" {
			effective = []model.ReasoningPart{{Text: legacyReasoning}}
		}
	}

	items := make([]Item, 0, len(effective)+len(calls))

	for i, part := range effective {
		if strings.TrimSpace(part.Text) == "" {
			continue
		}
		items = append(items, Item{
			Kind:      KindReasoning,
			Reasoning: part,
			Index:     i,
		})
	}

	for _, call := range calls {
		items = append(items, Item{
			Kind: KindTool,
			Tool: call,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartedAt().Before(items[j].StartedAt())
	})

	return items
}

// BuildForMessage builds the projection from an assistant message.
func BuildForMessage(msg *model.Message) []Item {
	if msg == nil {
		return nil
	}
	return Build(msg.ReasoningParts, msg.LegacyReasoning, msg.ToolCalls)
}

// =============================================================================
// LIVE-VIEW HELPERS
// =============================================================================

// ActiveIndex returns the index of the item that should pulse in the
// live view, or -1. Only the most recent reasoning segment shows a live
// indicator, and only while it is also the last item overall.
func ActiveIndex(items []Item, isActive bool) int {
	if !isActive || len(items) == 0 {
		return -1
	}
	last := len(items) - 1
	if items[last].Kind != KindReasoning {
		return -1
	}
	return last
}

// IsBare reports whether the projection should render in simplified
// "bare" mode: a reasoning segment that is the only activity item omits
// its own toggle because the outer summary toggle already communicates
// the same state.
func IsBare(items []Item) bool {
	return len(items) == 1 && items[0].Kind == KindReasoning
}
