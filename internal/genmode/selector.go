// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package genmode implements the text/image generation mode selector and
// its capability-driven side constraints.
package genmode

import (
	"sync"

	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// CAPABILITY SNAPSHOT
// =============================================================================

// Capability is the reactive input the selector re-evaluates against.
// Callers rebuild it whenever private mode, credentials, or the model
// list change.
type Capability struct {
	// PrivateMode disables image generation entirely.
	PrivateMode bool

	// CanUseImages is resolved from the model records at ingestion time
	// via model.CanGenerateImages.
	CanUseImages bool
}

// =============================================================================
// SELECTOR
// =============================================================================

// Selector owns the generation mode and image parameter bag for the
// composer. Image mode is force-reverted to text whenever it becomes
// unusable; the correction is one-directional and silent.
type Selector struct {
	mu          sync.Mutex
	mode        model.GenerationMode
	imageParams model.ImageParams

	// autoApplied remembers which conversation keys already received the
	// one-shot auto-switch to image mode, so a later manual override is
	// never re-overridden within the same conversation.
	autoApplied map[string]bool
}

// NewSelector creates a selector in text mode with default image params.
func NewSelector() *Selector {
	return &Selector{
		mode:        model.ModeText,
		imageParams: model.DefaultImageParams(),
		autoApplied: make(map[string]bool),
	}
}

// Mode returns the current generation mode.
func (s *Selector) Mode() model.GenerationMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode applies a manual mode choice. Switching to image mode while it
// is unusable is corrected straight back to text rather than surfaced as
// an error.
func (s *Selector) SetMode(mode model.GenerationMode, cap Capability) {
	if !mode.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == model.ModeImage && !imageUsable(cap) {
		s.mode = model.ModeText
		return
	}
	s.mode = mode
}

// Reevaluate applies the side constraints after any capability change.
// Only the image -> text direction is automatic; leaving private mode
// never restores image mode.
func (s *Selector) Reevaluate(cap Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == model.ModeImage && !imageUsable(cap) {
		s.mode = model.ModeText
	}
}

// Snapshot returns the live mode and image params so the owning session
// can park them before a key switch.
func (s *Selector) Snapshot() (model.GenerationMode, model.ImageParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.imageParams
}

// Restore adopts a session's parked mode and image params, then applies
// the side constraints: a parked image mode that is no longer usable
// lands back in text.
func (s *Selector) Restore(mode model.GenerationMode, params model.ImageParams, cap Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !mode.Valid() || (mode == model.ModeImage && !imageUsable(cap)) {
		mode = model.ModeText
	}
	s.mode = mode
	s.imageParams = params
}

// MaybeAutoSwitch switches text mode to image mode for a conversation
// the caller flagged as likely an image thread. The switch happens at
// most once per conversation key and only while image mode is usable.
// Returns true if the switch was applied.
func (s *Selector) MaybeAutoSwitch(convKey string, likelyImage bool, cap Capability) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !likelyImage || s.mode != model.ModeText || !imageUsable(cap) {
		return false
	}
	if s.autoApplied[convKey] {
		return false
	}

	s.mode = model.ModeImage
	s.autoApplied[convKey] = true
	return true
}

// ForgetConversation drops the auto-switch memory for a key. Used when a
// conversation is deleted.
func (s *Selector) ForgetConversation(convKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.autoApplied, convKey)
}

// =============================================================================
// IMAGE PARAMS
// =============================================================================

// ImageParams returns the current image parameter bag.
func (s *Selector) ImageParams() model.ImageParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageParams
}

// SetImageParams replaces the image parameter bag.
func (s *Selector) SetImageParams(params model.ImageParams) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageParams = params
}

// SetAspectRatio updates only the aspect ratio.
func (s *Selector) SetAspectRatio(ratio string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imageParams.AspectRatio = ratio
}

// imageUsable is the single predicate behind every image-mode gate.
func imageUsable(cap Capability) bool {
	return !cap.PrivateMode && cap.CanUseImages
}
