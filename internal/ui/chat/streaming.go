// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements streaming optimization for smooth, flicker-free
// rendering while a response streams. The StreamingBuffer batches
// tokens so the viewport redraws at a capped frame rate instead of once
// per token.
package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches tokens for efficient rendering. Tokens
// accumulate and are flushed when either the batch size threshold or
// the frame interval is reached.
//
// Thread-safety: tokens arrive from the stream goroutine while flushes
// happen in the Bubble Tea loop, so all operations take the mutex.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	tokenCount int
	lastFlush  time.Time

	batchSize int
	minFlush  time.Duration
}

// NewStreamingBuffer creates a streaming buffer with the default batch
// size (15 tokens) and frame cap (30fps).
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(15, 30)
}

// NewStreamingBufferWithConfig creates a buffer with a custom batch
// size and frame cap.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = 15
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}
	return &StreamingBuffer{
		batchSize: batchSize,
		minFlush:  time.Duration(1000/maxFPS) * time.Millisecond,
		lastFlush: time.Now(),
	}
}

// Write adds a token to the buffer. Called from the stream goroutine.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.WriteString(token)
	sb.tokenCount++
}

// Flush returns accumulated content when a threshold has been reached.
// Returns ("", false) when nothing should be flushed yet.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if !sb.shouldFlushLocked() {
		return "", false
	}
	return sb.drainLocked(), true
}

// ForceFlush returns all buffered content regardless of thresholds.
// Used when a stream completes so no trailing tokens are lost.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}
	return sb.drainLocked(), true
}

// Reset discards buffered content. Used when a stream is cancelled.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.Reset()
	sb.tokenCount = 0
	sb.lastFlush = time.Now()
}

// Pending returns the number of buffered tokens.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.tokenCount
}

func (sb *StreamingBuffer) shouldFlushLocked() bool {
	if sb.buffer.Len() == 0 {
		return false
	}
	if sb.tokenCount >= sb.batchSize {
		return true
	}
	return time.Since(sb.lastFlush) >= sb.minFlush
}

func (sb *StreamingBuffer) drainLocked() string {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.tokenCount = 0
	sb.lastFlush = time.Now()
	return content
}

// =============================================================================
// STREAM TICK
// =============================================================================

// streamTickCmd drives buffer flushes at ~30fps while streaming.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}
