// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package activity

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
)

func at(sec int) time.Time {
	return time.Unix(int64(sec), 0)
}

func TestBuildSortsByStartedAt(t *testing.T) {
	parts := []model.ReasoningPart{
		{Text: "a", StartedAt: at(5)},
		{Text: "b", StartedAt: at(1)},
	}

	items := Build(parts, "", nil)

	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Reasoning.Text != "b" || items[1].Reasoning.Text != "a" {
		t.Errorf("order = [%s %s], want [b a]", items[0].Reasoning.Text, items[1].Reasoning.Text)
	}
}

func TestBuildTieBreakReasoningBeforeTool(t *testing.T) {
	parts := []model.ReasoningPart{{Text: "think", StartedAt: at(3)}}
	calls := []model.ToolCall{{ID: "t1", Name: "search", Status: model.ToolRunning, StartedAt: at(3)}}

	items := Build(parts, "", calls)

	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Kind != KindReasoning {
		t.Error("equal StartedAt: reasoning must render before the tool call")
	}
	if items[1].Kind != KindTool {
		t.Error("tool call should follow the reasoning item")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	parts := []model.ReasoningPart{
		{Text: "r1", StartedAt: at(2)},
		{Text: "r2", StartedAt: at(2)},
	}
	calls := []model.ToolCall{
		{ID: "t1", Status: model.ToolRunning, StartedAt: at(2)},
		{ID: "t2", Status: model.ToolRunning, StartedAt: at(1)},
	}

	first := Build(parts, "", calls)
	for i := 0; i < 10; i++ {
		again := Build(parts, "", calls)
		for j := range first {
			if first[j].Kind != again[j].Kind ||
				first[j].Reasoning.Text != again[j].Reasoning.Text ||
				first[j].Tool.ID != again[j].Tool.ID {
				t.Fatal("recomputing from the same inputs must yield the same order")
			}
		}
	}

	// Equal-timestamp reasoning parts keep source order
	if first[1].Reasoning.Text != "r1" || first[2].Reasoning.Text != "r2" {
		t.Errorf("equal-timestamp reasoning must keep construction order, got %v",
			[]string{first[1].Reasoning.Text, first[2].Reasoning.Text})
	}
}

func TestBuildDropsBlankParts(t *testing.T) {
	parts := []model.ReasoningPart{
		{Text: "   ", StartedAt: at(1)},
		{Text: "\n\t", StartedAt: at(2)},
	}

	if items := Build(parts, "", nil); len(items) != 0 {
		t.Errorf("all-blank input should produce no items, got %d", len(items))
	}
}

func TestBuildEmptyRendersNothing(t *testing.T) {
	if items := Build(nil, "", nil); len(items) != 0 {
		t.Errorf("empty input should produce no items, got %d", len(items))
	}
}

func TestLegacyReasoningFallback(t *testing.T) {
	// No structured parts: legacy string stands in
	items := Build(nil, "old style thinking", nil)
	if len(items) != 1 || items[0].Kind != KindReasoning {
		t.Fatalf("legacy fallback should yield one reasoning item, got %d", len(items))
	}
	if items[0].Reasoning.Text != "old style thinking" {
		t.Errorf("text = %q", items[0].Reasoning.Text)
	}

	// Structured parts present: legacy string is ignored even if set
	parts := []model.ReasoningPart{{Text: "structured", StartedAt: at(1)}}
	items = Build(parts, "legacy ignored", nil)
	if len(items) != 1 || items[0].Reasoning.Text != "structured" {
		t.Error("structured parts must win over the legacy string")
	}

	// Blank legacy string yields nothing
	if items := Build(nil, "   ", nil); len(items) != 0 {
		t.Error("blank legacy string should yield no items")
	}
}

func TestActiveIndex(t *testing.T) {
	parts := []model.ReasoningPart{{Text: "think", StartedAt: at(1)}}
	calls := []model.ToolCall{{ID: "t1", Status: model.ToolRunning, StartedAt: at(2)}}

	// Last item is a tool call: nothing pulses
	items := Build(parts, "", calls)
	if got := ActiveIndex(items, true); got != -1 {
		t.Errorf("ActiveIndex = %d, want -1 when last item is a tool call", got)
	}

	// Last item is reasoning and turn is active: it pulses
	items = Build([]model.ReasoningPart{
		{Text: "first", StartedAt: at(1)},
		{Text: "second", StartedAt: at(3)},
	}, "", calls)
	if got := ActiveIndex(items, true); got != len(items)-1 {
		t.Errorf("ActiveIndex = %d, want %d", got, len(items)-1)
	}

	// Inactive turn: nothing pulses
	if got := ActiveIndex(items, false); got != -1 {
		t.Errorf("ActiveIndex = %d, want -1 when inactive", got)
	}
}

func TestIsBare(t *testing.T) {
	solo := Build([]model.ReasoningPart{{Text: "only", StartedAt: at(1)}}, "", nil)
	if !IsBare(solo) {
		t.Error("single reasoning item should render bare")
	}

	withTool := Build([]model.ReasoningPart{{Text: "r", StartedAt: at(1)}}, "",
		[]model.ToolCall{{ID: "t", Status: model.ToolRunning, StartedAt: at(2)}})
	if IsBare(withTool) {
		t.Error("reasoning plus tool call is not bare")
	}

	onlyTool := Build(nil, "", []model.ToolCall{{ID: "t", Status: model.ToolRunning}})
	if IsBare(onlyTool) {
		t.Error("a lone tool call is not bare")
	}
}

// =============================================================================
// SUMMARY TESTS
// =============================================================================

func TestSummarize(t *testing.T) {
	parts := []model.ReasoningPart{
		{Text: "r1", StartedAt: at(10)},
		{Text: "r2", StartedAt: at(14)},
	}
	calls := []model.ToolCall{{ID: "t1", Status: model.ToolCompleted, StartedAt: at(12)}}

	sum := Summarize(Build(parts, "", calls))

	if sum.ReasoningCount != 2 {
		t.Errorf("ReasoningCount = %d, want 2", sum.ReasoningCount)
	}
	if sum.ToolCallCount != 1 {
		t.Errorf("ToolCallCount = %d, want 1", sum.ToolCallCount)
	}
	if sum.Thinking != 4*time.Second {
		t.Errorf("Thinking = %v, want 4s", sum.Thinking)
	}
}

func TestSummarizeUnknownDuration(t *testing.T) {
	// A single timestamped segment has no measurable span
	sum := Summarize(Build([]model.ReasoningPart{{Text: "r", StartedAt: at(1)}}, "", nil))
	if sum.Thinking != 0 {
		t.Errorf("Thinking = %v, want 0 (unknown)", sum.Thinking)
	}

	// Legacy fallback has a zero timestamp
	sum = Summarize(Build(nil, "legacy", nil))
	if sum.Thinking != 0 || sum.ReasoningCount != 1 {
		t.Errorf("sum = %+v", sum)
	}
}

func TestSummaryLine(t *testing.T) {
	sum := Summary{ReasoningCount: 2, ToolCallCount: 1, Thinking: 3200 * time.Millisecond}
	line := sum.Line()

	for _, want := range []string{"3.2s", "2 steps", "1 tool call"} {
		if !strings.Contains(line, want) {
			t.Errorf("Line() = %q, should contain %q", line, want)
		}
	}

	if (Summary{}).Line() != "" {
		t.Error("empty summary should render an empty line")
	}
}
