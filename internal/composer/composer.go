// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package composer implements the chat input orchestrator: the draft
// buffer, the active quote, submission sequencing, file ingestion, and
// the speech-to-text lifecycle.
package composer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/haven-tui/internal/genmode"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyDraft is returned when submit is called with nothing to
	// send. Callers treat it as a silent no-op, not a user-facing error.
	ErrEmptyDraft = errors.New("composer: draft is empty")

	// ErrSendDisabled is returned while sending is disallowed (response
	// streaming, quota block).
	ErrSendDisabled = errors.New("composer: sending is disabled")

	// ErrSpeechBusy is returned when submit is attempted while recording
	// or transcribing.
	ErrSpeechBusy = errors.New("composer: speech capture in progress")

	// ErrSubmitThrottled is returned when a second submit arrives before
	// the debounce window of the first has elapsed.
	ErrSubmitThrottled = errors.New("composer: submit throttled")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// SubmitFunc delivers composed content to the backend. Network-bound;
// failure handling belongs to the caller that supplied the func.
type SubmitFunc func(ctx context.Context, content string, attachments []model.Attachment, mode model.GenerationMode) error

// ProcessFilesFunc hands dropped or pasted file paths to the upload
// pipeline. The pipeline populates the attachment store on success; the
// composer does not retry failures.
type ProcessFilesFunc func(ctx context.Context, paths []string) error

// TranscribeFunc converts captured audio to text.
type TranscribeFunc func(ctx context.Context, audio []byte) (string, error)

// Collaborators bundles the injected boundary functions.
type Collaborators struct {
	Submit       SubmitFunc
	SubmitAsNew  SubmitFunc
	ProcessFiles ProcessFilesFunc
	Transcribe   TranscribeFunc

	// OnAsyncError receives errors from fire-and-forget calls (submit,
	// file ingestion). Optional.
	OnAsyncError func(error)
}

// =============================================================================
// COMPOSER
// =============================================================================

// Composer owns the draft text, the active quote, and submission
// sequencing for the active input session. All long-running work is
// delegated to injected collaborators; the composer itself never blocks
// on the network.
type Composer struct {
	mu sync.Mutex

	sessions *session.Manager
	selector *genmode.Selector
	collab   Collaborators

	draft    string
	quote    string
	disabled bool
	speech   SpeechState

	// Debounce guard against rapid double-submit. One token, refilled
	// every 300ms.
	limiter *rate.Limiter
}

// New creates a composer bound to the session manager and mode
// selector.
func New(sessions *session.Manager, selector *genmode.Selector, collab Collaborators) *Composer {
	return &Composer{
		sessions: sessions,
		selector: selector,
		collab:   collab,
		speech:   SpeechIdle,
		limiter:  rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
	}
}

// Draft returns the current draft text.
func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the draft text.
func (c *Composer) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// Quote returns the active quote, or "" when none is set.
func (c *Composer) Quote() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote
}

// SetQuote stages prior text as blockquote context for the next
// message.
func (c *Composer) SetQuote(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote = FormatQuote(text)
}

// ClearQuote drops the active quote.
func (c *Composer) ClearQuote() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quote = ""
}

// SetSendDisabled gates submission and file ingestion. The UI flips
// this while a response is streaming or the user is quota-blocked.
func (c *Composer) SetSendDisabled(disabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = disabled
}

// SendDisabled reports whether sending is currently disallowed.
func (c *Composer) SendDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

// FormatQuote prefixes every line of text with a blockquote marker.
func FormatQuote(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit composes the outgoing content and hands it to the injected
// submit func. The call is fire-and-forget: the draft, staged
// attachments, and quote are reset synchronously once the call is
// issued, not after network completion. Clearing early trades "lost
// draft on failure" for "no duplicate submit on a slow network"; the
// ordering is intentional.
func (c *Composer) Submit(ctx context.Context) error {
	return c.submitWith(ctx, c.collab.Submit)
}

// SubmitAsNew sends the composed content as the opening message of a
// new conversation. Same content rule and same local reset as Submit.
func (c *Composer) SubmitAsNew(ctx context.Context) error {
	return c.submitWith(ctx, c.collab.SubmitAsNew)
}

func (c *Composer) submitWith(ctx context.Context, send SubmitFunc) error {
	c.mu.Lock()

	if c.speech != SpeechIdle {
		c.mu.Unlock()
		return ErrSpeechBusy
	}
	if c.disabled {
		c.mu.Unlock()
		return ErrSendDisabled
	}

	trimmed := strings.TrimSpace(c.draft)
	if trimmed == "" {
		c.mu.Unlock()
		return ErrEmptyDraft
	}

	if !c.limiter.Allow() {
		c.mu.Unlock()
		return ErrSubmitThrottled
	}

	content := trimmed
	if c.quote != "" {
		content = c.quote + "\n\n" + trimmed
	}

	key := c.sessions.ActiveKey()
	attachments := c.sessions.Attachments().List(key)
	mode := c.selector.Mode()

	// Local reset happens now, before the network call resolves.
	c.draft = ""
	c.quote = ""
	c.mu.Unlock()

	c.sessions.Histories().Push(key, trimmed)
	c.sessions.Histories().ResetIndex(key)
	c.sessions.Attachments().Clear(key)

	go func() {
		if err := send(ctx, content, attachments, mode); err != nil {
			c.asyncError(err)
		}
	}()
	return nil
}

func (c *Composer) asyncError(err error) {
	c.mu.Lock()
	fn := c.collab.OnAsyncError
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// =============================================================================
// FILE INGESTION
// =============================================================================

// IngestFiles funnels dropped or pasted file paths into the upload
// pipeline. Ignored while sending is disabled; no local state changes
// until the pipeline accepts the files.
func (c *Composer) IngestFiles(ctx context.Context, paths []string) error {
	c.mu.Lock()
	if c.disabled {
		c.mu.Unlock()
		return ErrSendDisabled
	}
	process := c.collab.ProcessFiles
	c.mu.Unlock()

	if process == nil || len(paths) == 0 {
		return nil
	}
	go func() {
		if err := process(ctx, paths); err != nil {
			c.asyncError(err)
		}
	}()
	return nil
}

// =============================================================================
// HISTORY NAVIGATION
// =============================================================================

// HistoryPrev recalls the previous history entry into the draft. Only
// applies when the caret sits at the start of the input or the input is
// empty; returns false when it does not apply or history is exhausted,
// so the caller lets the keypress fall through to normal caret
// movement.
func (c *Composer) HistoryPrev(caretAtStart bool) bool {
	c.mu.Lock()
	applies := caretAtStart || c.draft == ""
	c.mu.Unlock()
	if !applies {
		return false
	}

	key := c.sessions.ActiveKey()
	text, ok := c.sessions.Histories().Prev(key)
	if !ok {
		return false
	}
	c.SetDraft(text)
	return true
}

// HistoryNext recalls the next history entry into the draft, with the
// same gating and fall-through contract as HistoryPrev.
func (c *Composer) HistoryNext(caretAtStart bool) bool {
	c.mu.Lock()
	applies := caretAtStart || c.draft == ""
	c.mu.Unlock()
	if !applies {
		return false
	}

	key := c.sessions.ActiveKey()
	text, ok := c.sessions.Histories().Next(key)
	if !ok {
		return false
	}
	c.SetDraft(text)
	return true
}
