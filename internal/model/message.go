// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
//
// Assistant messages accumulate streamed content, reasoning parts, and
// tool calls incrementally while Phase is streaming; once the turn
// finishes, Phase becomes complete and the streamed text is merged into
// Content.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Attachments sent with this message (user messages) or produced by
	// it (generated images on assistant messages).
	Attachments []Attachment `json:"attachments,omitempty"`

	// Generation mode this message was composed under.
	Mode GenerationMode `json:"mode,omitempty"`

	// Assistant activity for this turn.
	ReasoningParts []ReasoningPart `json:"reasoning_parts,omitempty"`
	ToolCalls      []ToolCall      `json:"tool_calls,omitempty"`

	// LegacyReasoning holds pre-structured reasoning text from older
	// turns. Ignored whenever ReasoningParts is non-empty.
	LegacyReasoning string `json:"legacy_reasoning,omitempty"`

	// Phase marks streaming progress for assistant turns.
	Phase TurnPhase `json:"phase,omitempty"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Token statistics
	TokenCount int `json:"token_count,omitempty"`

	// Performance metrics (for assistant messages)
	TTFT          time.Duration `json:"ttft_ns,omitempty"`
	TotalDuration time.Duration `json:"total_duration_ns,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new streaming assistant message.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          generateID(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
		Phase:       PhaseStreaming,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// STREAMING METHODS
// =============================================================================

// AppendToken appends a token to a streaming message.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// AppendReasoning adds a reasoning part to a streaming turn. Blank parts
// are kept here; the activity projection filters them at render time.
func (m *Message) AppendReasoning(part ReasoningPart) {
	if m.IsStreaming {
		m.ReasoningParts = append(m.ReasoningParts, part)
	}
}

// UpsertToolCall inserts a tool call or updates the existing call with
// the same ID. Terminal statuses are sticky per ToolCall.Finish.
func (m *Message) UpsertToolCall(call ToolCall) {
	for i := range m.ToolCalls {
		if m.ToolCalls[i].ID == call.ID {
			if call.Status != ToolRunning {
				m.ToolCalls[i].Finish(call.Status, call.Error)
			}
			return
		}
	}
	m.ToolCalls = append(m.ToolCalls, call)
}

// FinalizeStream completes streaming and merges streamed content.
func (m *Message) FinalizeStream(stats *Statistics) {
	if !m.IsStreaming {
		return
	}

	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
	m.Phase = PhaseComplete

	if stats != nil {
		m.TTFT = stats.TTFT
		m.TotalDuration = stats.TotalDuration
		m.TokenCount = stats.CompletionTokens
	}
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.FirstLine(m.GetDisplayContent()), maxLen)
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// EstimateTokens gives a rough estimate of token count.
// Uses the approximation of ~4 characters per token.
func (m *Message) EstimateTokens() int {
	content := m.GetDisplayContent()
	return (len(content) + 3) / 4
}

// =============================================================================
// STATISTICS TYPE
// =============================================================================

// Statistics holds timing and token count information for a generation.
type Statistics struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	PromptTokens     int
	CompletionTokens int

	TTFT          time.Duration
	TotalDuration time.Duration
}

// NewStatistics creates a new Statistics with the start time set.
func NewStatistics() *Statistics {
	return &Statistics{
		StartTime: time.Now(),
	}
}

// RecordFirstToken records when the first token was received.
func (s *Statistics) RecordFirstToken() {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
		s.TTFT = s.FirstTokenTime.Sub(s.StartTime)
	}
}

// Finalize computes the final statistics.
func (s *Statistics) Finalize(tokenCount int) {
	s.EndTime = time.Now()
	s.CompletionTokens = tokenCount
	s.TotalDuration = s.EndTime.Sub(s.StartTime)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "msg_" + hex.EncodeToString(bytes)
}
