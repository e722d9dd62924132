// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the per-conversation input sessions for the
// composer.
package session

import (
	"sync"

	"github.com/jeranaias/haven-tui/internal/attachment"
	"github.com/jeranaias/haven-tui/internal/history"
	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// SESSION KEYS
// =============================================================================

// Sentinel keys for input state that is not bound to a saved
// conversation.
const (
	// DraftKey is the session key used before a conversation exists.
	DraftKey = "draft"

	// PrivateKey is the session key for private mode. Private input
	// state never mixes with any conversation's state.
	PrivateKey = "private"
)

// =============================================================================
// INPUT SESSION
// =============================================================================

// ReasoningConfig holds the per-session reasoning knobs forwarded to the
// backend on submit.
type ReasoningConfig struct {
	Enabled bool
	Effort  string // "low", "medium", "high"
}

// InputSession aggregates the composer state owned by one session key:
// persona, sampling temperature, reasoning config, generation mode, and
// image parameters. Staged attachments and input history live in their
// own stores, keyed by the same session key.
//
// Persona is the system prompt applied when the session opens a new
// backend thread. Mode and ImageParams are parked here by the view when
// the active key changes and restored through the selector on rebind.
type InputSession struct {
	Key         string
	Persona     string
	Temperature float64
	Reasoning   ReasoningConfig
	Mode        model.GenerationMode
	ImageParams model.ImageParams
}

// newInputSession creates a session with defaults.
func newInputSession(key string) *InputSession {
	return &InputSession{
		Key:         key,
		Temperature: 1.0,
		Mode:        model.ModeText,
		ImageParams: model.DefaultImageParams(),
	}
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns exactly one InputSession per session key, plus the
// attachment store and history manager shared across sessions (both are
// keyed internally, so switching sessions cannot leak attachments or
// history between unrelated conversations).
//
// The manager is an explicit object handed to components by reference;
// nothing reaches session state through ambient globals.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*InputSession
	activeKey string

	attachments *attachment.Store
	histories   *history.Manager
}

// NewManager creates a session manager with empty stores.
func NewManager() *Manager {
	return &Manager{
		sessions:    make(map[string]*InputSession),
		activeKey:   DraftKey,
		attachments: attachment.NewStore(),
		histories:   history.NewManager(),
	}
}

// Attachments returns the shared attachment store.
func (m *Manager) Attachments() *attachment.Store {
	return m.attachments
}

// Histories returns the shared history manager.
func (m *Manager) Histories() *history.Manager {
	return m.histories
}

// Session returns the input session for key, creating it on first use.
func (m *Manager) Session(key string) *InputSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionLocked(key)
}

func (m *Manager) sessionLocked(key string) *InputSession {
	s, ok := m.sessions[key]
	if !ok {
		s = newInputSession(key)
		m.sessions[key] = s
	}
	return s
}

// Active returns the session for the active key.
func (m *Manager) Active() *InputSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionLocked(m.activeKey)
}

// ActiveKey returns the current session key.
func (m *Manager) ActiveKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeKey
}

// SetActive switches the active session key. State for the previous key
// stays in its own session untouched.
func (m *Manager) SetActive(key string) *InputSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeKey = key
	return m.sessionLocked(key)
}

// Drop removes all input state for a key: the session aggregate, its
// staged attachments, and its history stack.
func (m *Manager) Drop(key string) {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()

	m.attachments.Clear(key)
	m.histories.Clear(key)
}

// Reset clears a session's transient state (attachments) while keeping
// its settings.
func (m *Manager) Reset(key string) {
	m.attachments.Clear(key)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
