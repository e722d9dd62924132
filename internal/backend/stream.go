// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// =============================================================================
// STREAM CHUNKS
// =============================================================================

// ToolCallChunk is a tool invocation surfaced mid-stream.
type ToolCallChunk struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Args  string `json:"args,omitempty"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// Chunk is one increment of a streaming response.
type Chunk struct {
	// Content is the visible answer text delta.
	Content string

	// Thinking is a reasoning delta, surfaced separately from content.
	Thinking string

	// ToolCall reports a tool invocation starting or finishing.
	ToolCall *ToolCallChunk

	// Completion
	Done       bool
	DoneReason string

	// Statistics, populated on the final chunk.
	TotalDuration    time.Duration
	PromptTokens     int
	CompletionTokens int
}

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader handles line-by-line JSON parsing of streaming responses.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	tokenCount  int
	model       string
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream is complete or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			if chunk != nil {
				callback(*chunk)
				if chunk.Done {
					return nil
				}
			}
		}
	}
}

// readChunk reads and parses a single line from the stream.
func (s *StreamReader) readChunk() (*Chunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		// Try to process the last line even on EOF.
		if len(line) == 0 {
			return nil, err
		}
	}

	if len(strings.TrimSpace(string(line))) == 0 {
		return nil, nil
	}

	var response struct {
		Model   string `json:"model"`
		Message struct {
			Role      string          `json:"role"`
			Content   string          `json:"content"`
			Thinking  string          `json:"thinking,omitempty"`
			ToolCalls []ToolCallChunk `json:"tool_calls,omitempty"`
		} `json:"message"`
		Done            bool   `json:"done"`
		DoneReason      string `json:"done_reason,omitempty"`
		TotalDuration   int64  `json:"total_duration,omitempty"`
		PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
		EvalCount       int    `json:"eval_count,omitempty"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		// Skip malformed lines.
		return nil, nil
	}

	if response.Model != "" {
		s.model = response.Model
	}

	content := response.Message.Content
	if content != "" {
		s.accumulator.WriteString(content)
		s.tokenCount++
	}

	chunk := &Chunk{
		Content:    content,
		Thinking:   response.Message.Thinking,
		Done:       response.Done,
		DoneReason: response.DoneReason,
	}
	if len(response.Message.ToolCalls) > 0 {
		chunk.ToolCall = &response.Message.ToolCalls[0]
	}

	if response.Done {
		chunk.TotalDuration = time.Duration(response.TotalDuration)
		chunk.PromptTokens = response.PromptEvalCount
		chunk.CompletionTokens = response.EvalCount
	}

	return chunk, nil
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// TokenCount returns the number of content deltas received.
func (s *StreamReader) TokenCount() int {
	return s.tokenCount
}

// Model returns the model name reported by the stream.
func (s *StreamReader) Model() string {
	return s.model
}
