// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/haven-tui/internal/model"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	store, err := NewConversationStore(filepath.Join(t.TempDir(), "haven.db"))
	if err != nil {
		t.Fatalf("NewConversationStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation()
	conv.Model = "llama3.2"
	conv.AddUserMessage("what is the capital of France?")
	asst := conv.AddAssistantMessage()
	asst.AppendToken("Paris.")
	asst.ReasoningParts = []model.ReasoningPart{
		{Text: "recall geography", StartedAt: time.Unix(100, 0)},
	}
	asst.ToolCalls = []model.ToolCall{
		{ID: "t1", Name: "search", Status: model.ToolCompleted, Args: `{"q":"capital of France"}`, StartedAt: time.Unix(101, 0)},
	}
	asst.FinalizeStream(nil)

	if err := store.Save(conv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(conv.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Title != conv.Title {
		t.Errorf("Title = %q, want %q", loaded.Title, conv.Title)
	}
	if loaded.Model != "llama3.2" {
		t.Errorf("Model = %q", loaded.Model)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(loaded.Messages))
	}

	user := loaded.Messages[0]
	if user.Role != model.RoleUser || user.Content != "what is the capital of France?" {
		t.Errorf("user message = %+v", user)
	}

	got := loaded.Messages[1]
	if got.Content != "Paris." {
		t.Errorf("assistant content = %q", got.Content)
	}
	if got.Phase != model.PhaseComplete {
		t.Errorf("phase = %q, want complete", got.Phase)
	}
	if len(got.ReasoningParts) != 1 || got.ReasoningParts[0].Text != "recall geography" {
		t.Errorf("reasoning parts = %+v", got.ReasoningParts)
	}
	if !got.ReasoningParts[0].StartedAt.Equal(time.Unix(100, 0)) {
		t.Errorf("StartedAt = %v", got.ReasoningParts[0].StartedAt)
	}
	if len(got.ToolCalls) != 1 || got.ToolCalls[0].Status != model.ToolCompleted {
		t.Errorf("tool calls = %+v", got.ToolCalls)
	}
}

func TestSaveReplacesPriorVersion(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation()
	conv.AddUserMessage("first")
	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}

	conv.AddUserMessage("second")
	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(conv.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Messages) != 2 {
		t.Errorf("messages = %d, want 2 (no duplicates from re-save)", len(loaded.Messages))
	}

	if n, err := store.Count(); err != nil || n != 1 {
		t.Errorf("Count = %d/%v, want 1", n, err)
	}
}

func TestLoadMissingConversation(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("conv_missing")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("err = %v, want ErrConversationNotFound", err)
	}
}

func TestPrivateConversationNeverPersisted(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewPrivateConversation()
	conv.AddUserMessage("secret")

	if err := store.Save(conv); !errors.Is(err, ErrPrivateConversation) {
		t.Fatalf("err = %v, want ErrPrivateConversation", err)
	}
	if n, _ := store.Count(); n != 0 {
		t.Error("private conversation must not be stored")
	}
}

func TestListOrdersByUpdatedAt(t *testing.T) {
	store := newTestStore(t)

	older := model.NewConversation()
	older.AddUserMessage("older thread")
	older.UpdatedAt = time.Unix(1000, 0)

	newer := model.NewConversation()
	newer.AddUserMessage("newer thread")
	newer.UpdatedAt = time.Unix(2000, 0)

	if err := store.Save(older); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(newer); err != nil {
		t.Fatal(err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("metas = %d, want 2", len(metas))
	}
	if metas[0].ID != newer.ID {
		t.Error("most recently updated conversation should list first")
	}
	if metas[0].Preview != "newer thread" {
		t.Errorf("Preview = %q", metas[0].Preview)
	}
	if metas[0].MessageCount != 1 {
		t.Errorf("MessageCount = %d", metas[0].MessageCount)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation()
	conv.AddUserMessage("doomed")
	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete(conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Error("deleted conversation should not load")
	}
	if err := store.Delete(conv.ID); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("double delete: err = %v", err)
	}
}

func TestHydrationSourceSurvivesRoundTrip(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation()
	conv.AddUserMessage("first question")
	conv.AddAssistantMessage()
	conv.AddUserMessage("follow up")

	if err := store.Save(conv); err != nil {
		t.Fatal(err)
	}
	loaded, err := store.Load(conv.ID)
	if err != nil {
		t.Fatal(err)
	}

	got := loaded.UserMessageContents()
	want := []string{"first question", "follow up"}
	if len(got) != len(want) {
		t.Fatalf("UserMessageContents = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}
