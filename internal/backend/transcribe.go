// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file implements the speech-to-text client.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// =============================================================================
// TRANSCRIBER
// =============================================================================

// Transcriber converts captured audio to text through an HTTP
// transcription endpoint.
type Transcriber struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewTranscriber creates a transcriber for the given endpoint. The API
// key is optional.
func NewTranscriber(endpoint, apiKey string) *Transcriber {
	return &Transcriber{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// transcribeResponse is the endpoint's reply.
type transcribeResponse struct {
	Text string `json:"text"`
}

// Transcribe posts the raw audio and returns the transcript. The
// endpoint answers "Silence." when it heard nothing; that sentinel is
// passed through for the caller to discard.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", &ClientError{
			Type:    ErrTypeConnection,
			Message: "failed to create transcription request",
			Cause:   err,
		}
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: fmt.Sprintf("transcription failed with status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var out transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to decode transcription response",
			Cause:   err,
		}
	}
	return out.Text, nil
}
