// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/haven-tui/internal/genmode"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
)

func newSpeechComposer(transcript string, err error) *Composer {
	return New(session.NewManager(), genmode.NewSelector(), Collaborators{
		Submit: func(ctx context.Context, content string, atts []model.Attachment, mode model.GenerationMode) error {
			return nil
		},
		Transcribe: func(ctx context.Context, audio []byte) (string, error) {
			return transcript, err
		},
	})
}

func TestSpeechLifecycle(t *testing.T) {
	c := newSpeechComposer("dictated text", nil)

	if c.SpeechState() != SpeechIdle {
		t.Fatalf("initial state = %s", c.SpeechState())
	}
	if err := c.StartRecording(); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if c.SpeechState() != SpeechRecording {
		t.Fatalf("state = %s, want recording", c.SpeechState())
	}

	if err := c.AcceptRecording(context.Background(), []byte("audio")); err != nil {
		t.Fatalf("AcceptRecording: %v", err)
	}
	if c.SpeechState() != SpeechIdle {
		t.Errorf("state = %s, want idle after transcription", c.SpeechState())
	}
	if c.Draft() != "dictated text" {
		t.Errorf("draft = %q, want transcript", c.Draft())
	}
}

func TestTranscriptReplacesDraftVerbatim(t *testing.T) {
	c := newSpeechComposer("replacement", nil)
	c.SetDraft("typed before recording")

	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.AcceptRecording(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	if c.Draft() != "replacement" {
		t.Errorf("draft = %q, transcript must replace, not append", c.Draft())
	}
}

func TestSilenceSentinelDiscarded(t *testing.T) {
	for _, transcript := range []string{"Silence.", "", "   "} {
		c := newSpeechComposer(transcript, nil)
		c.SetDraft("keep me")

		if err := c.StartRecording(); err != nil {
			t.Fatal(err)
		}
		if err := c.AcceptRecording(context.Background(), nil); err != nil {
			t.Fatal(err)
		}
		if c.Draft() != "keep me" {
			t.Errorf("transcript %q must not replace the draft", transcript)
		}
	}
}

func TestCancelRecordingDiscardsAudio(t *testing.T) {
	c := newSpeechComposer("never used", nil)
	c.SetDraft("original")

	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.CancelRecording(); err != nil {
		t.Fatalf("CancelRecording: %v", err)
	}
	if c.SpeechState() != SpeechIdle {
		t.Errorf("state = %s, want idle after cancel", c.SpeechState())
	}
	if c.Draft() != "original" {
		t.Error("cancel must leave the draft untouched")
	}
}

func TestTranscriptionErrorReturnsToIdle(t *testing.T) {
	c := newSpeechComposer("", errors.New("asr unavailable"))

	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	err := c.AcceptRecording(context.Background(), nil)
	if err == nil || err.Error() != "asr unavailable" {
		t.Fatalf("err = %v", err)
	}
	if c.SpeechState() != SpeechIdle {
		t.Error("failed transcription must still return to idle")
	}
}

func TestSubmitBlockedWhileRecording(t *testing.T) {
	c := newSpeechComposer("x", nil)
	c.SetDraft("pending")

	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.Submit(context.Background()); !errors.Is(err, ErrSpeechBusy) {
		t.Fatalf("err = %v, want ErrSpeechBusy", err)
	}
}

func TestSpeechGuards(t *testing.T) {
	c := newSpeechComposer("x", nil)

	if err := c.CancelRecording(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("cancel while idle: err = %v", err)
	}
	if err := c.AcceptRecording(context.Background(), nil); !errors.Is(err, ErrNotRecording) {
		t.Errorf("accept while idle: err = %v", err)
	}
	if err := c.StartRecording(); err != nil {
		t.Fatal(err)
	}
	if err := c.StartRecording(); !errors.Is(err, ErrSpeechBusy) {
		t.Errorf("double start: err = %v", err)
	}

	noASR := New(session.NewManager(), genmode.NewSelector(), Collaborators{})
	if err := noASR.StartRecording(); !errors.Is(err, ErrNoTranscriber) {
		t.Errorf("start without transcriber: err = %v", err)
	}
}
