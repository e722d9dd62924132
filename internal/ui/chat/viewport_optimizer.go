// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements viewport optimization: during streaming the view
// is recomputed far more often than it changes, so a content hash gates
// the actual viewport update.
package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// =============================================================================
// VIEWPORT OPTIMIZER
// =============================================================================

// ViewportOptimizer skips redundant viewport updates by hashing the
// rendered content and comparing against the previous render.
type ViewportOptimizer struct {
	mu          sync.Mutex
	lastHash    string
	updateCount uint64
	skipCount   uint64
}

// NewViewportOptimizer creates a viewport optimizer.
func NewViewportOptimizer() *ViewportOptimizer {
	return &ViewportOptimizer{}
}

// ShouldUpdate reports whether newContent differs from the last
// rendered content. SHA-256 is fast enough here (<1ms for 100KB) and
// immune to the same-length-different-content failure of size checks.
func (vo *ViewportOptimizer) ShouldUpdate(newContent string) bool {
	vo.mu.Lock()
	defer vo.mu.Unlock()

	vo.updateCount++
	newHash := hashContent(newContent)
	if newHash == vo.lastHash {
		vo.skipCount++
		return false
	}
	vo.lastHash = newHash
	return true
}

// ForceUpdate makes the next ShouldUpdate return true regardless of
// content. Used after a resize, when the same content must re-wrap.
func (vo *ViewportOptimizer) ForceUpdate() {
	vo.mu.Lock()
	defer vo.mu.Unlock()
	vo.lastHash = ""
}

// Reset clears state for a new conversation. Counters survive for
// metrics.
func (vo *ViewportOptimizer) Reset() {
	vo.mu.Lock()
	defer vo.mu.Unlock()
	vo.lastHash = ""
}

// Stats returns (total, skipped) update attempt counts.
func (vo *ViewportOptimizer) Stats() (total, skipped uint64) {
	vo.mu.Lock()
	defer vo.mu.Unlock()
	return vo.updateCount, vo.skipCount
}

func hashContent(content string) string {
	if content == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
