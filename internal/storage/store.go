// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrConversationNotFound is returned when loading a conversation ID
	// with no stored row.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrPrivateConversation is returned when a private conversation is
	// passed to Save. Private conversations are never persisted.
	ErrPrivateConversation = errors.New("private conversations are not persisted")
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore persists conversations to a SQLite database.
type ConversationStore struct {
	db *sql.DB
}

// NewConversationStore opens (or creates) the database at path.
func NewConversationStore(path string) (*ConversationStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(InitMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metadata: %w", err)
	}

	return &ConversationStore{db: db}, nil
}

// DefaultPath returns ~/.haven/conversations.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".haven", "conversations.db"), nil
}

// Close closes the underlying database.
func (s *ConversationStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the full conversation, replacing any prior version of the
// same ID. Private conversations are rejected.
func (s *ConversationStore) Save(conv *model.Conversation) error {
	if conv.Private {
		return ErrPrivateConversation
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace wholesale; message and child rows cascade.
	if _, err := tx.Exec("DELETE FROM conversations WHERE id = ?", conv.ID); err != nil {
		return fmt.Errorf("failed to clear previous version: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, model, likely_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		conv.ID, conv.Title, conv.Model, boolToInt(conv.LikelyImage),
		conv.CreatedAt.Unix(), conv.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}

	for seq, msg := range conv.Messages {
		if err := insertMessage(tx, conv.ID, seq, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertMessage(tx *sql.Tx, convID string, seq int, msg *model.Message) error {
	_, err := tx.Exec(`
		INSERT INTO messages (id, conversation_id, seq, role, content, mode,
			legacy_reasoning, phase, token_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, convID, seq, string(msg.Role), msg.Content, string(msg.Mode),
		msg.LegacyReasoning, string(msg.Phase), msg.TokenCount, msg.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	for i, part := range msg.ReasoningParts {
		_, err := tx.Exec(`
			INSERT INTO reasoning_parts (message_id, seq, text, started_at)
			VALUES (?, ?, ?, ?)`,
			msg.ID, i, part.Text, part.StartedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert reasoning part: %w", err)
		}
	}

	for i, call := range msg.ToolCalls {
		_, err := tx.Exec(`
			INSERT INTO tool_calls (message_id, seq, call_id, name, status, args, error, started_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, i, call.ID, call.Name, string(call.Status), call.Args,
			call.Error, call.StartedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert tool call: %w", err)
		}
	}

	for i, att := range msg.Attachments {
		_, err := tx.Exec(`
			INSERT INTO attachments (message_id, seq, attachment_id, type, url, storage_id, name, size)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, i, att.ID, string(att.Type), att.URL, att.StorageID, att.Name, att.Size)
		if err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}
	}

	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads a conversation with all of its messages, reasoning parts,
// tool calls, and attachments.
func (s *ConversationStore) Load(id string) (*model.Conversation, error) {
	conv := &model.Conversation{ID: id}

	var likelyImage int
	var createdAt, updatedAt int64
	err := s.db.QueryRow(`
		SELECT title, model, likely_image, created_at, updated_at
		FROM conversations WHERE id = ?`, id).
		Scan(&conv.Title, &conv.Model, &likelyImage, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.LikelyImage = likelyImage != 0
	conv.CreatedAt = time.Unix(createdAt, 0)
	conv.UpdatedAt = time.Unix(updatedAt, 0)

	if err := s.loadMessages(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationStore) loadMessages(conv *model.Conversation) error {
	rows, err := s.db.Query(`
		SELECT id, role, content, mode, legacy_reasoning, phase, token_count, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq`, conv.ID)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		msg := &model.Message{}
		var role, mode, phase string
		var createdAt int64
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &mode,
			&msg.LegacyReasoning, &phase, &msg.TokenCount, &createdAt); err != nil {
			return fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Mode = model.GenerationMode(mode)
		msg.Phase = model.TurnPhase(phase)
		msg.Timestamp = time.Unix(createdAt, 0)
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, msg := range conv.Messages {
		if err := s.loadActivity(msg); err != nil {
			return err
		}
	}
	return nil
}

func (s *ConversationStore) loadActivity(msg *model.Message) error {
	rows, err := s.db.Query(`
		SELECT text, started_at FROM reasoning_parts
		WHERE message_id = ? ORDER BY seq`, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to load reasoning parts: %w", err)
	}
	for rows.Next() {
		var part model.ReasoningPart
		var startedAt int64
		if err := rows.Scan(&part.Text, &startedAt); err != nil {
			rows.Close()
			return err
		}
		part.StartedAt = time.Unix(0, startedAt)
		msg.ReasoningParts = append(msg.ReasoningParts, part)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(`
		SELECT call_id, name, status, args, error, started_at FROM tool_calls
		WHERE message_id = ? ORDER BY seq`, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to load tool calls: %w", err)
	}
	for rows.Next() {
		var call model.ToolCall
		var status string
		var startedAt int64
		if err := rows.Scan(&call.ID, &call.Name, &status, &call.Args, &call.Error, &startedAt); err != nil {
			rows.Close()
			return err
		}
		call.Status = model.ToolCallStatus(status)
		call.StartedAt = time.Unix(0, startedAt)
		msg.ToolCalls = append(msg.ToolCalls, call)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.db.Query(`
		SELECT attachment_id, type, url, storage_id, name, size FROM attachments
		WHERE message_id = ? ORDER BY seq`, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to load attachments: %w", err)
	}
	for rows.Next() {
		var att model.Attachment
		var attType string
		if err := rows.Scan(&att.ID, &attType, &att.URL, &att.StorageID, &att.Name, &att.Size); err != nil {
			rows.Close()
			return err
		}
		att.Type = model.AttachmentType(attType)
		msg.Attachments = append(msg.Attachments, att)
	}
	rows.Close()
	return rows.Err()
}

// =============================================================================
// LIST / DELETE
// =============================================================================

// List returns conversation metadata ordered most recently updated
// first.
func (s *ConversationStore) List() ([]model.ConversationMeta, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.model, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id),
		       COALESCE((SELECT m.content FROM messages m
		                 WHERE m.conversation_id = c.id AND m.role = 'user'
		                 ORDER BY m.seq LIMIT 1), '')
		FROM conversations c
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var metas []model.ConversationMeta
	for rows.Next() {
		var meta model.ConversationMeta
		var createdAt, updatedAt int64
		if err := rows.Scan(&meta.ID, &meta.Title, &meta.Model,
			&createdAt, &updatedAt, &meta.MessageCount, &meta.Preview); err != nil {
			return nil, err
		}
		meta.CreatedAt = time.Unix(createdAt, 0)
		meta.UpdatedAt = time.Unix(updatedAt, 0)
		metas = append(metas, meta)
	}
	return metas, rows.Err()
}

// Delete removes a conversation and all of its messages.
func (s *ConversationStore) Delete(id string) error {
	result, err := s.db.Exec("DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Count returns the number of stored conversations.
func (s *ConversationStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM conversations").Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
