// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history provides per-conversation input history with cursor
// navigation, in the style of shell history.
package history

import (
	"strings"
	"sync"
)

// =============================================================================
// HISTORY STACK
// =============================================================================

// DefaultLimit caps a stack's entries unless overridden.
const DefaultLimit = 100

// Stack holds previously submitted input texts for one conversation,
// oldest first, plus a browsing cursor. A cursor equal to len(entries)
// means "at bottom": the live draft, not a history entry.
type Stack struct {
	entries []string
	cursor  int
	limit   int
}

// NewStack creates an empty history stack.
func NewStack() *Stack {
	return &Stack{limit: DefaultLimit}
}

// Push appends a submitted text. Whitespace-only texts are ignored.
// The oldest entry is dropped once the stack is at its limit.
// Pushing always returns the cursor to the bottom.
func (s *Stack) Push(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.entries = append(s.entries, text)
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = s.entries[len(s.entries)-s.limit:]
	}
	s.cursor = len(s.entries)
}

// Prev moves the cursor one step toward the oldest entry and returns it.
// Returns ("", false) when already at the oldest entry, so callers can
// let the keypress fall through.
func (s *Stack) Prev() (string, bool) {
	if s.cursor == 0 {
		return "", false
	}
	s.cursor--
	return s.entries[s.cursor], true
}

// Next is the inverse of Prev. Returns ("", false) when the cursor is at
// the bottom (the live draft) or moves onto it.
func (s *Stack) Next() (string, bool) {
	if s.cursor >= len(s.entries) {
		return "", false
	}
	s.cursor++
	if s.cursor == len(s.entries) {
		return "", false
	}
	return s.entries[s.cursor], true
}

// ResetIndex returns the cursor to the bottom without altering entries.
func (s *Stack) ResetIndex() {
	s.cursor = len(s.entries)
}

// Clear empties the stack and resets the cursor.
func (s *Stack) Clear() {
	s.entries = nil
	s.cursor = 0
}

// Len returns the number of stored entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the stored entries, oldest first.
func (s *Stack) Entries() []string {
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// =============================================================================
// KEYED MANAGER
// =============================================================================

// Manager owns one Stack per session key. Switching keys never leaks
// entries between unrelated conversations.
type Manager struct {
	mu     sync.Mutex
	stacks map[string]*Stack
	limit  int

	// hydrated remembers (key -> message count) for which a seed was
	// already applied, so unrelated re-renders cannot clobber an
	// in-session browsing position.
	hydrated map[string]int
}

// NewManager creates an empty history manager.
func NewManager() *Manager {
	return &Manager{
		stacks:   make(map[string]*Stack),
		hydrated: make(map[string]int),
		limit:    DefaultLimit,
	}
}

// SetLimit changes the per-stack entry cap for existing and future
// stacks. Values <= 0 are ignored.
func (m *Manager) SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limit = limit
	for _, s := range m.stacks {
		s.limit = limit
	}
}

// Stack returns the stack for a key, creating it on first use.
func (m *Manager) Stack(key string) *Stack {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stackLocked(key)
}

func (m *Manager) stackLocked(key string) *Stack {
	s, ok := m.stacks[key]
	if !ok {
		s = NewStack()
		s.limit = m.limit
		m.stacks[key] = s
	}
	return s
}

// Push appends a submitted text to the stack for key.
func (m *Manager) Push(key, text string) {
	m.Stack(key).Push(text)
}

// Prev navigates backward in the stack for key.
func (m *Manager) Prev(key string) (string, bool) {
	return m.Stack(key).Prev()
}

// Next navigates forward in the stack for key.
func (m *Manager) Next(key string) (string, bool) {
	return m.Stack(key).Next()
}

// ResetIndex returns the cursor for key to the bottom.
func (m *Manager) ResetIndex(key string) {
	m.Stack(key).ResetIndex()
}

// Clear drops all entries for key.
func (m *Manager) Clear(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stacks, key)
	delete(m.hydrated, key)
}

// Hydrate seeds the stack for key from a conversation's prior user
// messages, oldest first. The seed is applied once per (key, message
// count) pair: re-hydration with the same count is skipped, and a new
// count replaces the entries wholesale.
func (m *Manager) Hydrate(key string, messageCount int, entries []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.hydrated[key]; ok && prev == messageCount {
		return
	}

	s := NewStack()
	s.limit = m.limit
	for _, e := range entries {
		s.Push(e)
	}
	m.stacks[key] = s
	m.hydrated[key] = messageCount
}
