// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package composer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeranaias/haven-tui/internal/genmode"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
)

type sentCall struct {
	content     string
	attachments []model.Attachment
	mode        model.GenerationMode
}

// harness wires a composer to a recording submit func.
type harness struct {
	c        *Composer
	sessions *session.Manager
	sent     chan sentCall
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		sessions: session.NewManager(),
		sent:     make(chan sentCall, 4),
	}
	record := func(ctx context.Context, content string, atts []model.Attachment, mode model.GenerationMode) error {
		h.sent <- sentCall{content, atts, mode}
		return nil
	}
	h.c = New(h.sessions, genmode.NewSelector(), Collaborators{
		Submit:      record,
		SubmitAsNew: record,
	})
	return h
}

func (h *harness) waitSent(t *testing.T) sentCall {
	t.Helper()
	select {
	case call := <-h.sent:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("submit collaborator was never called")
		return sentCall{}
	}
}

func TestSubmitTrimsPushesHistoryAndClearsDraft(t *testing.T) {
	h := newHarness(t)
	h.c.SetDraft("  hello  ")

	if err := h.c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	call := h.waitSent(t)
	if call.content != "hello" {
		t.Errorf("content = %q, want %q", call.content, "hello")
	}
	if h.c.Draft() != "" {
		t.Errorf("draft = %q, want empty after submit", h.c.Draft())
	}
	if got, ok := h.sessions.Histories().Prev(h.sessions.ActiveKey()); !ok || got != "hello" {
		t.Errorf("history prev = %q/%v, want trimmed draft", got, ok)
	}
}

func TestSubmitPrependsQuoteAndClearsIt(t *testing.T) {
	h := newHarness(t)
	h.c.SetQuote("prior text")
	h.c.SetDraft("reply")

	if err := h.c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	call := h.waitSent(t)
	if call.content != "> prior text\n\nreply" {
		t.Errorf("content = %q, want quote + blank line + draft", call.content)
	}
	if h.c.Quote() != "" {
		t.Error("quote should clear after submission")
	}
}

func TestSubmitSnapshotsAttachmentsBeforeClearing(t *testing.T) {
	h := newHarness(t)
	key := h.sessions.ActiveKey()
	h.sessions.Attachments().Append(key, []model.Attachment{
		{ID: "a1", Name: "photo.png", Type: model.AttachmentImage},
	})
	h.c.SetDraft("see attached")

	if err := h.c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	call := h.waitSent(t)
	if len(call.attachments) != 1 || call.attachments[0].ID != "a1" {
		t.Errorf("attachments = %+v, want the staged snapshot", call.attachments)
	}
	if h.sessions.Attachments().Count(key) != 0 {
		t.Error("staged attachments should clear on submit")
	}
}

func TestSubmitEmptyDraftIsANoOp(t *testing.T) {
	h := newHarness(t)
	h.c.SetDraft("   \n\t ")

	if err := h.c.Submit(context.Background()); !errors.Is(err, ErrEmptyDraft) {
		t.Fatalf("err = %v, want ErrEmptyDraft", err)
	}

	select {
	case <-h.sent:
		t.Error("whitespace-only draft must not reach the submit collaborator")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubmitWhileDisabled(t *testing.T) {
	h := newHarness(t)
	h.c.SetDraft("queued")
	h.c.SetSendDisabled(true)

	if err := h.c.Submit(context.Background()); !errors.Is(err, ErrSendDisabled) {
		t.Fatalf("err = %v, want ErrSendDisabled", err)
	}
	if h.c.Draft() != "queued" {
		t.Error("disabled submit must leave the draft intact")
	}
}

func TestSubmitDoubleClickThrottled(t *testing.T) {
	h := newHarness(t)
	h.c.SetDraft("once")
	if err := h.c.Submit(context.Background()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	h.c.SetDraft("twice")
	if err := h.c.Submit(context.Background()); !errors.Is(err, ErrSubmitThrottled) {
		t.Fatalf("err = %v, want ErrSubmitThrottled on rapid re-submit", err)
	}
}

func TestSubmitAsNewUsesSameContentRule(t *testing.T) {
	h := newHarness(t)
	h.c.SetQuote("context")
	h.c.SetDraft("fresh start")

	if err := h.c.SubmitAsNew(context.Background()); err != nil {
		t.Fatalf("SubmitAsNew: %v", err)
	}

	call := h.waitSent(t)
	if call.content != "> context\n\nfresh start" {
		t.Errorf("content = %q", call.content)
	}
	if h.c.Draft() != "" || h.c.Quote() != "" {
		t.Error("SubmitAsNew should perform the same local reset")
	}
}

func TestSubmitErrorReachesAsyncHandler(t *testing.T) {
	sessions := session.NewManager()
	errCh := make(chan error, 1)
	c := New(sessions, genmode.NewSelector(), Collaborators{
		Submit: func(ctx context.Context, content string, atts []model.Attachment, mode model.GenerationMode) error {
			return errors.New("backend down")
		},
		OnAsyncError: func(err error) { errCh <- err },
	})

	c.SetDraft("doomed")
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case err := <-errCh:
		if err.Error() != "backend down" {
			t.Errorf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("async error never surfaced")
	}

	// Local reset already happened; the failed call does not restore it.
	if c.Draft() != "" {
		t.Error("draft stays cleared even when the backend call fails")
	}
}

func TestFormatQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single line", "hello", "> hello"},
		{"multi line", "a\nb", "> a\n> b"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatQuote(tt.in); got != tt.want {
				t.Errorf("FormatQuote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// =============================================================================
// FILE INGESTION
// =============================================================================

func TestIngestFilesDelegates(t *testing.T) {
	sessions := session.NewManager()
	got := make(chan []string, 1)
	c := New(sessions, genmode.NewSelector(), Collaborators{
		ProcessFiles: func(ctx context.Context, paths []string) error {
			got <- paths
			return nil
		},
	})

	if err := c.IngestFiles(context.Background(), []string{"/tmp/a.png"}); err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}

	select {
	case paths := <-got:
		if len(paths) != 1 || paths[0] != "/tmp/a.png" {
			t.Errorf("paths = %v", paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("upload pipeline was never called")
	}
}

func TestIngestFilesGatedWhileDisabled(t *testing.T) {
	sessions := session.NewManager()
	called := make(chan struct{}, 1)
	c := New(sessions, genmode.NewSelector(), Collaborators{
		ProcessFiles: func(ctx context.Context, paths []string) error {
			called <- struct{}{}
			return nil
		},
	})
	c.SetSendDisabled(true)

	if err := c.IngestFiles(context.Background(), []string{"/tmp/a.png"}); !errors.Is(err, ErrSendDisabled) {
		t.Fatalf("err = %v, want ErrSendDisabled", err)
	}
	select {
	case <-called:
		t.Error("disabled ingestion must not reach the pipeline")
	case <-time.After(50 * time.Millisecond):
	}
}

// =============================================================================
// HISTORY NAVIGATION
// =============================================================================

func TestHistoryNavGatedByCaret(t *testing.T) {
	h := newHarness(t)
	key := h.sessions.ActiveKey()
	h.sessions.Histories().Push(key, "older")
	h.sessions.Histories().Push(key, "newer")

	h.c.SetDraft("mid-edit")

	// Caret in the middle of text: key falls through
	if h.c.HistoryPrev(false) {
		t.Error("prev must not apply when caret is mid-text and draft non-empty")
	}
	if h.c.Draft() != "mid-edit" {
		t.Error("draft must be untouched on fall-through")
	}

	// Caret at start: recall applies
	if !h.c.HistoryPrev(true) {
		t.Fatal("prev should apply when caret is at start")
	}
	if h.c.Draft() != "newer" {
		t.Errorf("draft = %q, want most recent entry", h.c.Draft())
	}
	if !h.c.HistoryPrev(true) || h.c.Draft() != "older" {
		t.Errorf("second prev should recall %q, got %q", "older", h.c.Draft())
	}

	// Exhausted: fall through, draft untouched
	if h.c.HistoryPrev(true) {
		t.Error("prev past the oldest entry must fall through")
	}
	if h.c.Draft() != "older" {
		t.Error("exhausted prev must not change the draft")
	}
}

func TestHistoryNextFallsThroughAtBottom(t *testing.T) {
	h := newHarness(t)
	key := h.sessions.ActiveKey()
	h.sessions.Histories().Push(key, "entry")
	h.sessions.Histories().ResetIndex(key)

	if h.c.HistoryNext(true) {
		t.Error("next at the bottom of history must fall through")
	}
}

func TestHistoryNavAppliesWhenDraftEmpty(t *testing.T) {
	h := newHarness(t)
	h.sessions.Histories().Push(h.sessions.ActiveKey(), "recalled")

	// Empty draft: applies even if caret flag says otherwise
	if !h.c.HistoryPrev(false) {
		t.Fatal("prev should apply on an empty draft")
	}
	if h.c.Draft() != "recalled" {
		t.Errorf("draft = %q", h.c.Draft())
	}
}

func TestFreshComposerIsIdleAndSubmits(t *testing.T) {
	h := newHarness(t)

	if got := h.c.SpeechState(); got != SpeechIdle {
		t.Fatalf("initial speech state = %q, want %q", got, SpeechIdle)
	}

	h.c.SetDraft("hello")
	if err := h.c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit on a fresh composer: %v", err)
	}
	if call := h.waitSent(t); call.content != "hello" {
		t.Errorf("sent content = %q, want %q", call.content, "hello")
	}
}
