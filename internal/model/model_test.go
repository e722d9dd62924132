// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

// =============================================================================
// MESSAGE STREAMING TESTS
// =============================================================================

func TestMessageStreaming(t *testing.T) {
	msg := NewAssistantMessage()

	if !msg.IsStreaming {
		t.Error("new assistant message should be streaming")
	}
	if msg.Phase != PhaseStreaming {
		t.Errorf("phase = %q, want %q", msg.Phase, PhaseStreaming)
	}

	msg.AppendToken("Hello")
	msg.AppendToken(", world")

	if got := msg.GetDisplayContent(); got != "Hello, world" {
		t.Errorf("GetDisplayContent() = %q, want %q", got, "Hello, world")
	}

	msg.FinalizeStream(nil)

	if msg.IsStreaming {
		t.Error("message should not be streaming after finalize")
	}
	if msg.Phase != PhaseComplete {
		t.Errorf("phase = %q, want %q", msg.Phase, PhaseComplete)
	}
	if msg.Content != "Hello, world" {
		t.Errorf("Content = %q, want %q", msg.Content, "Hello, world")
	}

	// Tokens after finalize are dropped
	msg.AppendToken("late")
	if msg.Content != "Hello, world" {
		t.Error("AppendToken after finalize should be a no-op")
	}
}

func TestToolCallMonotonicStatus(t *testing.T) {
	tc := ToolCall{ID: "t1", Name: "search", Status: ToolRunning}

	if !tc.Finish(ToolCompleted, "") {
		t.Error("running -> completed should succeed")
	}
	if tc.Finish(ToolError, "boom") {
		t.Error("completed -> error must be rejected (monotonic lifecycle)")
	}
	if tc.Status != ToolCompleted {
		t.Errorf("status = %q, want %q", tc.Status, ToolCompleted)
	}
	if tc.Error != "" {
		t.Errorf("error = %q, want empty", tc.Error)
	}
}

func TestUpsertToolCall(t *testing.T) {
	msg := NewAssistantMessage()
	start := time.Now()

	msg.UpsertToolCall(ToolCall{ID: "t1", Name: "search", Status: ToolRunning, StartedAt: start})
	msg.UpsertToolCall(ToolCall{ID: "t1", Status: ToolCompleted})

	if len(msg.ToolCalls) != 1 {
		t.Fatalf("len(ToolCalls) = %d, want 1", len(msg.ToolCalls))
	}
	if msg.ToolCalls[0].Status != ToolCompleted {
		t.Errorf("status = %q, want %q", msg.ToolCalls[0].Status, ToolCompleted)
	}
	if msg.ToolCalls[0].Name != "search" {
		t.Error("upsert must not clobber the original call metadata")
	}

	// A second terminal update must not revert the status
	msg.UpsertToolCall(ToolCall{ID: "t1", Status: ToolError, Error: "x"})
	if msg.ToolCalls[0].Status != ToolCompleted {
		t.Error("terminal status must be sticky")
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversationUserMessageContents(t *testing.T) {
	conv := NewConversation()
	conv.AddUserMessage("first question")
	asst := conv.AddAssistantMessage()
	asst.AppendToken("answer")
	asst.FinalizeStream(nil)
	conv.AddUserMessage("  second question  ")
	conv.AddSystemMessage("note")

	got := conv.UserMessageContents()
	want := []string{"first question", "second question"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("contents[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversation()
	conv.AddSystemMessage("sys")
	conv.AddUserMessage("what is the airspeed velocity of an unladen swallow")

	if conv.GetTitle() == "New Conversation" {
		t.Error("title should be derived from the first user message")
	}
}

func TestConversationPruning(t *testing.T) {
	conv := NewConversation()
	conv.AddSystemMessage("keep me")

	for i := 0; i < MaxMessages+50; i++ {
		conv.AddUserMessage("msg")
	}

	nonSystem := 0
	system := 0
	for _, msg := range conv.Messages {
		if msg.Role == RoleSystem {
			system++
		} else {
			nonSystem++
		}
	}

	if nonSystem != MaxMessages {
		t.Errorf("non-system messages = %d, want %d", nonSystem, MaxMessages)
	}
	if system != 1 {
		t.Errorf("system messages = %d, want 1", system)
	}
}

// =============================================================================
// CAPABILITY TESTS
// =============================================================================

func TestCanGenerateImages(t *testing.T) {
	free := ImageModel{Access: AccessFree, ID: "img-free"}
	paid := ImageModel{Access: AccessUser, ID: "img-pro"}

	tests := []struct {
		name   string
		models []ImageModel
		hasKey bool
		want   bool
	}{
		{"personal key always usable", nil, true, true},
		{"free model usable", []ImageModel{free}, false, true},
		{"paid model without key unusable", []ImageModel{paid}, false, false},
		{"no models no key", nil, false, false},
		{"mixed", []ImageModel{paid, free}, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanGenerateImages(tc.models, tc.hasKey); got != tc.want {
				t.Errorf("CanGenerateImages = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResolveImageModels(t *testing.T) {
	if got := ResolveImageModels("", false); got != nil {
		t.Errorf("ResolveImageModels with no model = %v, want nil", got)
	}

	free := ResolveImageModels("sdxl", false)
	if len(free) != 1 || free[0].Access != AccessFree {
		t.Errorf("records = %+v, want one free-access record", free)
	}
	if !CanGenerateImages(free, false) {
		t.Error("a free model without a key should allow image generation")
	}

	user := ResolveImageModels("sdxl", true)
	if len(user) != 1 || user[0].Access != AccessUser {
		t.Errorf("records = %+v, want one user-access record", user)
	}
	if !CanGenerateImages(user, true) {
		t.Error("a user model with a key should allow image generation")
	}
	if CanGenerateImages(user, false) {
		t.Error("a user model without a key should not allow image generation")
	}
}
