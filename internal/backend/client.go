// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the haven chat backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeUnauthorized
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable   = &ClientError{Type: ErrTypeUnreachable, Message: "backend is not reachable"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrUnauthorized  = &ClientError{Type: ErrTypeUnauthorized, Message: "backend rejected the API key"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL of the chat API.
	BaseURL string

	// APIKey sent as a bearer token when set.
	APIKey string

	// Timeout for non-streaming requests (default: 30s).
	Timeout time.Duration

	// DefaultModel to use if none specified.
	DefaultModel string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:      "http://127.0.0.1:11434",
		Timeout:      30 * time.Second,
		DefaultModel: "llama3.2",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the chat backend. It is safe for
// concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a backend client, filling defaults for zero values.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:11434"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.DefaultModel == "" {
		config.DefaultModel = "llama3.2"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is one turn in the chat request payload.
type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// chatRequest is the streaming chat request body.
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Think    bool           `json:"think,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// TurnOptions carries the per-turn generation settings taken from the
// active input session.
type TurnOptions struct {
	// Temperature is the sampling temperature; 0 omits it so the
	// backend's default applies.
	Temperature float64

	// Think asks the model to stream reasoning deltas.
	Think bool

	// System is the persona prompt prepended when a thread starts.
	System string
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Ping verifies the backend answers at its base URL.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ErrUnreachable
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// StreamCallback is called for each chunk received during streaming,
// synchronously and in order.
type StreamCallback func(chunk Chunk)

// ChatStream sends a streaming chat request and calls the callback for
// each chunk. Returns when the stream completes or fails.
func (c *Client) ChatStream(ctx context.Context, model string, messages []Message, opts TurnOptions, callback StreamCallback) error {
	if model == "" {
		model = c.config.DefaultModel
	}

	reqBody := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
		Think:    opts.Think,
	}
	if opts.Temperature > 0 {
		reqBody.Options = map[string]any{"temperature": opts.Temperature}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	// No client timeout for the stream itself; the context governs it.
	streamClient := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrUnreachable
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrModelNotFound
	default:
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "stream request failed: " + resp.Status,
		}
	}

	reader := NewStreamReader(resp.Body)
	return reader.Process(ctx, callback)
}
