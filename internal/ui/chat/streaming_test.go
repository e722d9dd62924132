// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// STREAMING BUFFER TESTS
// =============================================================================

func TestStreamingBufferBatchFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(5, 30)

	for i := 0; i < 4; i++ {
		sb.Write("x")
	}
	// Below the batch threshold and inside the frame interval.
	sb.mu.Lock()
	sb.lastFlush = time.Now()
	sb.mu.Unlock()
	if content, ok := sb.Flush(); ok {
		t.Fatalf("expected no flush below threshold, got %q", content)
	}

	sb.Write("x")
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("expected flush at batch threshold")
	}
	if content != "xxxxx" {
		t.Errorf("content = %q, want %q", content, "xxxxx")
	}
	if sb.Pending() != 0 {
		t.Errorf("pending after flush = %d, want 0", sb.Pending())
	}
}

func TestStreamingBufferTimeFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 30)
	sb.Write("hello")

	// Age the last flush past the frame interval.
	sb.mu.Lock()
	sb.lastFlush = time.Now().Add(-time.Second)
	sb.mu.Unlock()

	content, ok := sb.Flush()
	if !ok {
		t.Fatal("expected time-based flush")
	}
	if content != "hello" {
		t.Errorf("content = %q, want %q", content, "hello")
	}
}

func TestStreamingBufferEmptyNeverFlushes(t *testing.T) {
	sb := NewStreamingBuffer()

	sb.mu.Lock()
	sb.lastFlush = time.Now().Add(-time.Second)
	sb.mu.Unlock()

	if _, ok := sb.Flush(); ok {
		t.Error("empty buffer should not flush")
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("empty buffer should not force-flush")
	}
}

func TestStreamingBufferForceFlush(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 30)
	sb.Write("tail ")
	sb.Write("tokens")

	content, ok := sb.ForceFlush()
	if !ok {
		t.Fatal("expected force flush to return content")
	}
	if content != "tail tokens" {
		t.Errorf("content = %q, want %q", content, "tail tokens")
	}
}

func TestStreamingBufferReset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("discarded")
	sb.Reset()

	if sb.Pending() != 0 {
		t.Errorf("pending after reset = %d, want 0", sb.Pending())
	}
	if _, ok := sb.ForceFlush(); ok {
		t.Error("reset buffer should have no content")
	}
}

func TestStreamingBufferOrderPreserved(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 30)
	tokens := []string{"The ", "quick ", "brown ", "fox ", "jumps"}

	var out strings.Builder
	for _, tok := range tokens {
		sb.Write(tok)
		if content, ok := sb.Flush(); ok {
			out.WriteString(content)
		}
	}
	if content, ok := sb.ForceFlush(); ok {
		out.WriteString(content)
	}

	want := "The quick brown fox jumps"
	if out.String() != want {
		t.Errorf("reassembled = %q, want %q", out.String(), want)
	}
}

func TestStreamingBufferConfigClamps(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		maxFPS    int
	}{
		{"zero values", 0, 0},
		{"negative batch", -1, 30},
		{"excessive fps", 15, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := NewStreamingBufferWithConfig(tt.batchSize, tt.maxFPS)
			if sb.batchSize <= 0 {
				t.Errorf("batchSize = %d, want positive", sb.batchSize)
			}
			if sb.minFlush <= 0 {
				t.Errorf("minFlush = %v, want positive", sb.minFlush)
			}
		})
	}
}

// =============================================================================
// VIEWPORT OPTIMIZER TESTS
// =============================================================================

func TestViewportOptimizerSkipsIdenticalContent(t *testing.T) {
	vo := NewViewportOptimizer()

	if !vo.ShouldUpdate("hello world") {
		t.Fatal("first render should update")
	}
	if vo.ShouldUpdate("hello world") {
		t.Error("identical content should be skipped")
	}
	if !vo.ShouldUpdate("hello world!") {
		t.Error("changed content should update")
	}

	total, skipped := vo.Stats()
	if total != 3 || skipped != 1 {
		t.Errorf("stats = (%d, %d), want (3, 1)", total, skipped)
	}
}

func TestViewportOptimizerForceUpdate(t *testing.T) {
	vo := NewViewportOptimizer()
	vo.ShouldUpdate("same")

	vo.ForceUpdate()
	if !vo.ShouldUpdate("same") {
		t.Error("ShouldUpdate after ForceUpdate should return true")
	}
}

func TestViewportOptimizerReset(t *testing.T) {
	vo := NewViewportOptimizer()
	vo.ShouldUpdate("content")
	vo.Reset()

	if !vo.ShouldUpdate("content") {
		t.Error("ShouldUpdate after Reset should return true")
	}
}

func TestViewportOptimizerSameLengthDifferentContent(t *testing.T) {
	vo := NewViewportOptimizer()
	vo.ShouldUpdate("aaaa")

	if !vo.ShouldUpdate("aaab") {
		t.Error("same-length different content must update")
	}
}
