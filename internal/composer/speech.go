// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// SPEECH-TO-TEXT LIFECYCLE
// =============================================================================

// SpeechState tracks the speech capture lifecycle.
type SpeechState string

const (
	SpeechIdle         SpeechState = "idle"
	SpeechRecording    SpeechState = "recording"
	SpeechTranscribing SpeechState = "transcribing"
)

// silenceSentinel is the transcript the speech backend returns when it
// heard nothing. It never replaces the draft.
const silenceSentinel = "Silence."

var (
	// ErrNoTranscriber is returned when speech capture is attempted
	// without a transcribe collaborator configured.
	ErrNoTranscriber = errors.New("composer: no transcriber configured")

	// ErrNotRecording is returned when cancel or accept is called
	// outside the recording state.
	ErrNotRecording = errors.New("composer: not recording")
)

// SpeechState returns the current capture state.
func (c *Composer) SpeechState() SpeechState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speech
}

// StartRecording moves idle -> recording.
func (c *Composer) StartRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collab.Transcribe == nil {
		return ErrNoTranscriber
	}
	if c.speech != SpeechIdle {
		return ErrSpeechBusy
	}
	c.speech = SpeechRecording
	return nil
}

// CancelRecording aborts capture and discards the audio.
func (c *Composer) CancelRecording() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.speech != SpeechRecording {
		return ErrNotRecording
	}
	c.speech = SpeechIdle
	return nil
}

// AcceptRecording moves recording -> transcribing, runs the transcriber
// to completion (there is no mid-transcription cancel), and returns to
// idle. A non-empty transcript that is not the silence sentinel replaces
// the draft verbatim after NFC normalization; it never appends.
func (c *Composer) AcceptRecording(ctx context.Context, audio []byte) error {
	c.mu.Lock()
	if c.speech != SpeechRecording {
		c.mu.Unlock()
		return ErrNotRecording
	}
	c.speech = SpeechTranscribing
	transcribe := c.collab.Transcribe
	c.mu.Unlock()

	text, err := transcribe(ctx, audio)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.speech = SpeechIdle

	if err != nil {
		return err
	}

	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" || text == silenceSentinel {
		return nil
	}
	c.draft = text
	return nil
}
