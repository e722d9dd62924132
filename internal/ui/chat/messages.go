// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
)

// =============================================================================
// BACKEND BOUNDARY
// =============================================================================

// SendRequest is what leaves the composer for the backend. Persona,
// Temperature, and Reasoning come from the active input session at
// submit time.
type SendRequest struct {
	Content     string
	Attachments []model.Attachment
	Mode        model.GenerationMode
	NewThread   bool
	Persona     string
	Temperature float64
	Reasoning   session.ReasoningConfig
}

// StreamEvent is one increment of a streaming assistant turn.
type StreamEvent struct {
	Token     string
	Reasoning *model.ReasoningPart
	ToolCall  *model.ToolCall
	Image     *model.Attachment
}

// Sender delivers a request to the chat backend and streams the reply
// through emit. Send blocks until the turn finishes; the returned error
// covers both transport and generation failures.
type Sender interface {
	Send(ctx context.Context, req SendRequest, emit func(StreamEvent)) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, req SendRequest, emit func(StreamEvent)) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, req SendRequest, emit func(StreamEvent)) error {
	return f(ctx, req, emit)
}

// =============================================================================
// TEA MESSAGES
// =============================================================================

// submitIssuedMsg fires when the composer hands a request to the
// backend; the view appends the user message at this point.
type submitIssuedMsg struct {
	req SendRequest
}

// streamEventMsg wraps one backend stream event for the update loop.
type streamEventMsg struct {
	event StreamEvent
}

// streamDoneMsg marks the end of a turn.
type streamDoneMsg struct {
	err error
}

// StreamTickMsg drives buffered-token flushes at the frame cap.
type StreamTickMsg struct {
	Time time.Time
}

// speechResultMsg carries the outcome of an accept-recording round.
type speechResultMsg struct {
	err error
}

// asyncErrorMsg surfaces a fire-and-forget failure (upload, submit).
type asyncErrorMsg struct {
	err error
}
