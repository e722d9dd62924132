// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/haven-tui/internal/history"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// Input wraps liner with arrow-key history navigation. The in-memory
// history stack stays authoritative; liner is seeded from it so both
// views of history agree, and submissions are pushed to both.
type Input struct {
	line        *liner.State
	historyFile string

	histories *history.Manager
	key       string
}

// NewInput creates a line reader bound to the history stack for key.
func NewInput(histories *history.Manager, key, historyFile string) *Input {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &Input{
		line:        line,
		historyFile: historyFile,
		histories:   histories,
		key:         key,
	}
	in.loadHistoryFile()
	in.seedFromStack()
	return in
}

// loadHistoryFile restores persisted liner history.
func (in *Input) loadHistoryFile() {
	if in.historyFile == "" {
		return
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
}

// seedFromStack replays the in-memory stack into liner, oldest first.
func (in *Input) seedFromStack() {
	for _, entry := range in.histories.Stack(in.key).Entries() {
		in.line.AppendHistory(entry)
	}
}

// Rebind switches the input to another session key and reseeds liner
// so arrow-key history matches the new conversation.
func (in *Input) Rebind(key string) {
	in.key = key
	in.line.ClearHistory()
	in.seedFromStack()
}

// Read reads one line. Non-blank input is recorded in liner's history;
// the history stack itself is fed by the composer on submit, so chat
// text is never double-counted.
func (in *Input) Read(prompt string) (string, error) {
	input, err := in.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		in.line.AppendHistory(input)
	}
	return input, nil
}

// Close persists history and releases the terminal.
func (in *Input) Close() {
	in.saveHistoryFile()
	in.line.Close()
}

func (in *Input) saveHistoryFile() {
	if in.historyFile == "" {
		return
	}
	var buf bytes.Buffer
	if _, err := in.line.WriteHistory(&buf); err != nil {
		return
	}
	// Atomic so an interrupted exit never truncates the history file.
	_ = util.AtomicWriteFile(in.historyFile, buf.Bytes(), 0600)
}
