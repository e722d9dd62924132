// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/haven-tui/internal/commands"
	"github.com/jeranaias/haven-tui/internal/composer"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles incoming messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == StateStreaming {
			m.refreshViewport()
		}
		return m, cmd

	// Submission / streaming
	case submitIssuedMsg:
		return m.handleSubmitIssued(msg)
	case streamEventMsg:
		return m.handleStreamEvent(msg)
	case StreamTickMsg:
		return m.handleStreamTick()
	case streamDoneMsg:
		return m.handleStreamDone(msg)
	case asyncErrorMsg:
		m.lastErr = msg.err
		return m, m.listenEvents()
	case speechResultMsg:
		if msg.err != nil {
			m.lastErr = msg.err
		}
		// A transcript replaces the draft; mirror it into the input.
		m.input.SetValue(m.composer.Draft())
		m.input.CursorEnd()
		return m, nil

	// Slash command outcomes
	case commands.ShowHelpMsg:
		m.showHelp = !m.showHelp
		return m, nil
	case commands.NewConversationMsg:
		m.startNewConversation()
		return m, nil
	case commands.SaveRequestMsg:
		return m, m.saveCmd(msg.Title)
	case commands.LoadedConversationMsg:
		return m.handleLoaded(msg)
	case commands.SessionListMsg:
		return m.handleSessionList(msg)
	case commands.ClearHistoryMsg:
		m.conversation.ClearHistory()
		m.viewportOptimizer.ForceUpdate()
		m.refreshViewport()
		return m, nil
	case commands.TogglePrivateMsg:
		m.togglePrivate()
		return m, nil
	case commands.ModeChangedMsg:
		m.notice = fmt.Sprintf("mode: %s", msg.Mode)
		return m, nil
	case commands.NoticeMsg:
		m.notice = msg.Text
		m.lastErr = nil
		return m, nil
	case commands.ErrorMsg:
		m.lastErr = msg.Err
		return m, nil
	}

	return m, nil
}

// =============================================================================
// RESIZE
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	wrap := msg.Width - 4
	if wrap < 20 {
		wrap = 20
	}
	m.markdown.SetWidth(wrap)
	m.activityView.SetMaxWidth(wrap)
	m.attachStrip.SetMaxWidth(wrap)
	m.input.Width = msg.Width - 6

	m.viewport.Width = msg.Width
	m.viewport.Height = m.viewportHeight()

	// Same content must re-wrap at the new width.
	m.viewportOptimizer.ForceUpdate()
	m.refreshViewport()
	return m, nil
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		return m.handleCancel()

	case key.Matches(msg, m.keyMap.Record):
		return m.handleRecord()

	case key.Matches(msg, m.keyMap.ToggleActivity):
		m.toggleLastActivity()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit(false)

	case key.Matches(msg, m.keyMap.SubmitAsNew):
		return m.handleSubmit(true)

	case key.Matches(msg, m.keyMap.HistoryPrev):
		if m.navigateHistory(true) {
			return m, nil
		}
		return m.forwardToInput(msg)

	case key.Matches(msg, m.keyMap.HistoryNext):
		if m.navigateHistory(false) {
			return m, nil
		}
		return m.forwardToInput(msg)

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if msg.Type == tea.KeyTab {
		if m.completeCommand() {
			return m, nil
		}
	}

	return m.forwardToInput(msg)
}

// forwardToInput lets the textinput consume the key and keeps the
// composer's draft in sync with it.
func (m *Model) forwardToInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.composer.SetDraft(m.input.Value())
	return m, cmd
}

// navigateHistory recalls history when the caret permits it. Returns
// false when navigation does not apply so the key falls through to
// normal caret movement.
func (m *Model) navigateHistory(prev bool) bool {
	m.composer.SetDraft(m.input.Value())
	caretAtStart := m.input.Position() == 0

	var ok bool
	if prev {
		ok = m.composer.HistoryPrev(caretAtStart)
	} else {
		ok = m.composer.HistoryNext(caretAtStart)
	}
	if !ok {
		return false
	}
	m.input.SetValue(m.composer.Draft())
	m.input.CursorEnd()
	return true
}

// completeCommand expands a uniquely-matching partial slash command.
func (m *Model) completeCommand() bool {
	value := m.input.Value()
	if !commands.IsCommand(value) {
		return false
	}
	matches := m.parser.Complete(value)
	if len(matches) != 1 {
		return false
	}
	m.input.SetValue(matches[0] + " ")
	m.input.CursorEnd()
	m.composer.SetDraft(m.input.Value())
	return true
}

func (m *Model) handleCancel() (tea.Model, tea.Cmd) {
	if m.composer.SpeechState() == composer.SpeechRecording {
		if err := m.composer.CancelRecording(); err != nil {
			m.lastErr = err
		}
		return m, nil
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.composer.Quote() != "" {
		m.composer.ClearQuote()
		return m, nil
	}
	m.notice = ""
	m.lastErr = nil
	return m, nil
}

// handleRecord starts dictation when idle, accepts it when recording.
func (m *Model) handleRecord() (tea.Model, tea.Cmd) {
	switch m.composer.SpeechState() {
	case composer.SpeechIdle:
		if err := m.composer.StartRecording(); err != nil {
			m.lastErr = err
		}
		return m, nil

	case composer.SpeechRecording:
		return m, func() tea.Msg {
			err := m.composer.AcceptRecording(context.Background(), nil)
			return speechResultMsg{err: err}
		}
	}
	return m, nil
}

// toggleLastActivity flips the expand state of the most recent
// completed assistant turn that has activity to show.
func (m *Model) toggleLastActivity() {
	for i := len(m.conversation.Messages) - 1; i >= 0; i-- {
		msg := m.conversation.Messages[i]
		if msg.Role != model.RoleAssistant || msg.Phase != model.PhaseComplete {
			continue
		}
		if len(msg.ReasoningParts) == 0 && len(msg.ToolCalls) == 0 && msg.LegacyReasoning == "" {
			continue
		}
		m.expandedActivity[msg.ID] = !m.expandedActivity[msg.ID]
		m.viewportOptimizer.ForceUpdate()
		m.refreshViewport()
		return
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

func (m *Model) handleSubmit(asNew bool) (tea.Model, tea.Cmd) {
	value := m.input.Value()

	if commands.IsCommand(value) {
		return m.executeCommand(value)
	}

	m.composer.SetDraft(value)

	var err error
	if asNew {
		err = m.composer.SubmitAsNew(context.Background())
	} else {
		err = m.composer.Submit(context.Background())
	}

	switch {
	case err == nil:
		m.input.SetValue("")
		m.notice = ""
		m.lastErr = nil
	case errors.Is(err, composer.ErrEmptyDraft),
		errors.Is(err, composer.ErrSubmitThrottled):
		// Silent no-ops.
	case errors.Is(err, composer.ErrSendDisabled):
		m.notice = "waiting for the current response to finish"
	case errors.Is(err, composer.ErrSpeechBusy):
		m.notice = "finish or cancel dictation first"
	default:
		m.lastErr = err
	}
	return m, nil
}

func (m *Model) executeCommand(value string) (tea.Model, tea.Cmd) {
	result := m.parser.Parse(value)
	m.input.SetValue("")
	m.composer.SetDraft("")

	if result.Command == nil {
		m.notice = fmt.Sprintf("unknown command %s (try /help)", result.CommandName)
		return m, nil
	}
	return m, result.Command.Handler(m.cmdCtx, result.Args)
}

func (m *Model) handleSubmitIssued(msg submitIssuedMsg) (tea.Model, tea.Cmd) {
	if msg.req.NewThread {
		m.startNewConversation()
	}

	userMsg := m.conversation.AddUserMessage(msg.req.Content)
	userMsg.Attachments = msg.req.Attachments
	userMsg.Mode = msg.req.Mode

	m.conversation.AddAssistantMessage()

	m.state = StateStreaming
	m.composer.SetSendDisabled(true)
	m.streamingBuffer.Reset()
	m.refreshViewport()

	return m, tea.Batch(m.listenEvents(), streamTickCmd())
}

func (m *Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	ev := msg.event
	last := m.conversation.GetLastMessage()

	switch {
	case ev.Token != "":
		m.streamingBuffer.Write(ev.Token)

	case ev.Reasoning != nil:
		if last != nil {
			last.AppendReasoning(*ev.Reasoning)
			m.refreshViewport()
		}

	case ev.ToolCall != nil:
		if last != nil {
			last.UpsertToolCall(*ev.ToolCall)
			m.refreshViewport()
		}

	case ev.Image != nil:
		if last != nil {
			last.Attachments = append(last.Attachments, *ev.Image)
			m.refreshViewport()
		}
	}

	return m, m.listenEvents()
}

func (m *Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if m.state != StateStreaming {
		return m, nil
	}
	if content, ok := m.streamingBuffer.Flush(); ok {
		m.conversation.AppendToLast(content)
		m.refreshViewport()
	}
	return m, streamTickCmd()
}

func (m *Model) handleStreamDone(msg streamDoneMsg) (tea.Model, tea.Cmd) {
	if content, ok := m.streamingBuffer.ForceFlush(); ok {
		m.conversation.AppendToLast(content)
	}
	m.conversation.FinalizeLast(nil)

	m.state = StateReady
	m.composer.SetSendDisabled(false)
	if msg.err != nil {
		m.lastErr = msg.err
	}

	m.viewportOptimizer.ForceUpdate()
	m.refreshViewport()

	cmds := []tea.Cmd{m.listenEvents()}
	if msg.err == nil && !m.private && m.storage != nil {
		cmds = append(cmds, m.autosaveCmd())
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// bindSession parks the selector's mode and image params under the
// outgoing session key, then restores the state owned by the new key.
func (m *Model) bindSession(key string) {
	prev := m.sessions.Active()
	prev.Mode, prev.ImageParams = m.selector.Snapshot()
	next := m.sessions.SetActive(key)
	m.selector.Restore(next.Mode, next.ImageParams, m.capability())
}

// startNewConversation resets the view to a fresh conversation. The old
// conversation's input state stays parked under its own session key.
func (m *Model) startNewConversation() {
	if m.private {
		m.conversation = model.NewPrivateConversation()
		m.bindSession(session.PrivateKey)
	} else {
		m.conversation = model.NewConversation()
		m.bindSession(m.conversation.ID)
	}
	m.expandedActivity = make(map[string]bool)
	m.streamingBuffer.Reset()
	m.viewportOptimizer.Reset()
	m.state = StateReady
	m.composer.SetSendDisabled(false)
	m.notice = ""
	m.lastErr = nil
	m.refreshViewport()
}

// togglePrivate switches between the private conversation and the
// regular one. Private input state lives under its own session key and
// never mixes with any conversation's state.
func (m *Model) togglePrivate() {
	if m.private {
		m.private = false
		m.prevConversation, m.conversation = nil, m.restoreConversation()
		m.bindSession(m.conversation.ID)
		m.notice = "private mode off"
	} else {
		m.private = true
		m.prevConversation = m.conversation
		m.conversation = model.NewPrivateConversation()
		m.bindSession(session.PrivateKey)
		m.notice = "private mode on: nothing is saved"
	}

	m.expandedActivity = make(map[string]bool)
	m.viewportOptimizer.ForceUpdate()
	m.refreshViewport()
}

func (m *Model) restoreConversation() *model.Conversation {
	if m.prevConversation != nil {
		return m.prevConversation
	}
	return model.NewConversation()
}

func (m *Model) handleLoaded(msg commands.LoadedConversationMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.lastErr = msg.Err
		return m, nil
	}
	conv := msg.Conversation

	m.conversation = conv
	m.private = false
	m.bindSession(conv.ID)
	m.sessions.Histories().Hydrate(conv.ID, conv.MessageCount(), conv.UserMessageContents())
	m.selector.MaybeAutoSwitch(conv.ID, conv.LikelyImage, m.capability())

	m.expandedActivity = make(map[string]bool)
	m.streamingBuffer.Reset()
	m.viewportOptimizer.ForceUpdate()
	m.refreshViewport()
	m.notice = fmt.Sprintf("loaded %q", conv.GetTitle())
	return m, nil
}

func (m *Model) handleSessionList(msg commands.SessionListMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.lastErr = msg.Err
		return m, nil
	}
	if len(msg.Sessions) == 0 {
		m.notice = "no saved conversations"
		return m, nil
	}

	var b strings.Builder
	b.WriteString("saved conversations:\n")
	for _, meta := range msg.Sessions {
		fmt.Fprintf(&b, "  %s  %s (%d messages)\n", meta.ID, meta.Title, meta.MessageCount)
	}
	m.notice = strings.TrimRight(b.String(), "\n")
	return m, nil
}

// saveCmd persists the current conversation off the update loop.
func (m *Model) saveCmd(title string) tea.Cmd {
	if m.storage == nil {
		return func() tea.Msg { return commands.ErrorMsg{Err: errors.New("persistence is disabled")} }
	}
	if m.private {
		return func() tea.Msg { return commands.NoticeMsg{Text: "private conversations are never saved"} }
	}

	conv := m.conversation
	if title != "" {
		conv.SetTitle(title)
	}
	store := m.storage
	return func() tea.Msg {
		if err := store.Save(conv); err != nil {
			return commands.ErrorMsg{Err: err}
		}
		return commands.NoticeMsg{Text: fmt.Sprintf("saved %q", conv.GetTitle())}
	}
}

// autosaveCmd persists after a completed turn without a notice.
func (m *Model) autosaveCmd() tea.Cmd {
	conv := m.conversation
	store := m.storage
	return func() tea.Msg {
		if err := store.Save(conv); err != nil {
			return commands.ErrorMsg{Err: err}
		}
		return nil
	}
}
