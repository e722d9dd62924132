// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import "time"

// =============================================================================
// REASONING PARTS
// =============================================================================

// ReasoningPart is one block of assistant "thinking" text within a turn.
// Parts are append-only within a turn and ordered by StartedAt.
type ReasoningPart struct {
	Text      string    `json:"text"`
	StartedAt time.Time `json:"started_at"`
}

// =============================================================================
// TOOL CALLS
// =============================================================================

// ToolCallStatus is the lifecycle state of a tool invocation.
// Transitions are monotonic: running -> (completed | error), never back.
type ToolCallStatus string

const (
	ToolRunning   ToolCallStatus = "running"
	ToolCompleted ToolCallStatus = "completed"
	ToolError     ToolCallStatus = "error"
)

// ToolCall is a discrete invocation of an external capability with its
// own running/completed/error lifecycle.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Status    ToolCallStatus `json:"status"`
	Args      string         `json:"args,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartedAt time.Time      `json:"started_at"`
}

// Finish moves a running tool call to a terminal status. Terminal states
// are sticky: finishing an already-finished call is a no-op, preserving
// the monotonic lifecycle.
func (tc *ToolCall) Finish(status ToolCallStatus, errMsg string) bool {
	if tc.Status != ToolRunning {
		return false
	}
	if status != ToolCompleted && status != ToolError {
		return false
	}
	tc.Status = status
	tc.Error = errMsg
	return true
}

// IsTerminal returns true once the call has completed or errored.
func (tc *ToolCall) IsTerminal() bool {
	return tc.Status == ToolCompleted || tc.Status == ToolError
}

// =============================================================================
// TURN PHASE
// =============================================================================

// TurnPhase marks the streaming progress of an assistant turn.
type TurnPhase string

const (
	PhaseStreaming TurnPhase = "streaming"
	PhaseComplete  TurnPhase = "complete"
)
