// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"sync"
)

// =============================================================================
// CHAT SESSION
// =============================================================================

// Session keeps the backend-side message transcript across turns, so
// each streamed request carries the full context. One Session maps to
// one conversation thread.
type Session struct {
	mu       sync.Mutex
	client   *Client
	model    string
	messages []Message
}

// NewSession creates a session speaking to client with model.
func NewSession(client *Client, model string) *Session {
	return &Session{
		client: client,
		model:  model,
	}
}

// SetModel switches the model for subsequent turns.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// Reset drops the transcript, starting a fresh thread.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// Stream sends one user turn and streams the reply through emit. The
// user turn and the assembled assistant reply are appended to the
// transcript; a failed turn keeps the user message so a retry resends
// the same context. A system persona in opts is seeded once, when the
// thread transcript is empty.
func (s *Session) Stream(ctx context.Context, content string, images []string, newThread bool, opts TurnOptions, emit StreamCallback) error {
	s.mu.Lock()
	if newThread {
		s.messages = nil
	}
	if opts.System != "" && len(s.messages) == 0 {
		s.messages = append(s.messages, Message{
			Role:    "system",
			Content: opts.System,
		})
	}
	s.messages = append(s.messages, Message{
		Role:    "user",
		Content: content,
		Images:  images,
	})
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	model := s.model
	s.mu.Unlock()

	var reply []byte
	err := s.client.ChatStream(ctx, model, msgs, opts, func(chunk Chunk) {
		reply = append(reply, chunk.Content...)
		emit(chunk)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.messages = append(s.messages, Message{
		Role:    "assistant",
		Content: string(reply),
	})
	s.mu.Unlock()
	return nil
}

// Len returns the number of transcript messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
