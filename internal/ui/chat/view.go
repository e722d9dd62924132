// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/haven-tui/internal/composer"
	"github.com/jeranaias/haven-tui/internal/model"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat interface.
func (m *Model) View() string {
	if m.width == 0 {
		return "initializing…"
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.viewport.View())

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	}
	if feedback := m.renderFeedback(); feedback != "" {
		sections = append(sections, feedback)
	}
	if strip := m.renderAttachmentStrip(); strip != "" {
		sections = append(sections, strip)
	}
	if quote := m.composer.Quote(); quote != "" {
		sections = append(sections, m.theme.QuoteBanner.Render(quote))
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatusBar())

	return strings.Join(sections, "\n")
}

// viewportHeight is the terminal height minus the fixed chrome around
// the viewport. Transient sections (help, feedback, strips) overflow
// instead of resizing the viewport every frame.
func (m *Model) viewportHeight() int {
	h := m.height - 4
	if h < 3 {
		h = 3
	}
	return h
}

// refreshViewport re-renders the conversation into the viewport,
// skipping the update when the content is unchanged.
func (m *Model) refreshViewport() {
	content := m.renderConversation()
	if !m.viewportOptimizer.ShouldUpdate(content) {
		return
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// CHROME
// =============================================================================

func (m *Model) renderHeader() string {
	title := m.conversation.GetTitle()
	brand := m.theme.HeaderBrand.Render("haven")
	line := fmt.Sprintf("%s  %s", brand, title)
	if m.private {
		line += "  " + m.theme.PrivateTag.Render("[private]")
	}
	return m.theme.Header.Width(m.width).Render(line)
}

func (m *Model) renderStatusBar() string {
	var parts []string

	mode := m.selector.Mode()
	parts = append(parts, fmt.Sprintf("mode:%s", mode))
	if mode == model.ModeImage {
		parts = append(parts, fmt.Sprintf("aspect:%s", m.selector.ImageParams().AspectRatio))
	}
	parts = append(parts, fmt.Sprintf("msgs:%d", m.conversation.MessageCount()))

	switch m.composer.SpeechState() {
	case composer.SpeechRecording:
		parts = append(parts, m.theme.RecordingTag.Render("● REC"))
	case composer.SpeechTranscribing:
		parts = append(parts, m.spinner.View()+" transcribing")
	}

	left := strings.Join(parts, "  ")
	right := m.theme.StatusKey.Render("C-g help")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m *Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("❯ ")
	return m.theme.InputContainer.Width(m.width - 2).Render(prompt + m.input.View())
}

func (m *Model) renderFeedback() string {
	if m.lastErr != nil {
		return m.theme.Error.Render("✗ " + m.lastErr.Error())
	}
	if m.notice != "" {
		return m.theme.Notice.Render(m.notice)
	}
	return ""
}

func (m *Model) renderAttachmentStrip() string {
	key := m.sessions.ActiveKey()
	staged := m.sessions.Attachments().List(key)

	var pending []model.PendingUpload
	if t := m.tracker(); t != nil {
		pending = t.Snapshot()
	}
	return m.attachStrip.Render(staged, pending)
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

func (m *Model) renderConversation() string {
	if m.conversation.IsEmpty() {
		return m.theme.Help.Render("\n  Start typing, drop files into the inbox, or /help for commands.\n")
	}

	var blocks []string
	for _, msg := range m.conversation.Messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderMessage(msg *model.Message) string {
	meta := m.theme.MessageMeta.Render(fmt.Sprintf("%s · %s",
		msg.Role.DisplayName(), msg.Timestamp.Format("15:04")))

	switch msg.Role {
	case model.RoleUser:
		body := m.theme.UserBubble.Render(msg.Content)
		if chips := m.renderMessageAttachments(msg); chips != "" {
			body += "\n" + chips
		}
		return meta + "\n" + body

	case model.RoleAssistant:
		return meta + "\n" + m.renderAssistant(msg)

	default:
		return m.theme.SystemBubble.Render(msg.Content)
	}
}

func (m *Model) renderAssistant(msg *model.Message) string {
	var parts []string

	if act := m.activityView.Render(msg, m.expandedActivity[msg.ID]); act != "" {
		parts = append(parts, act)
	}

	content := msg.GetDisplayContent()
	switch {
	case content != "":
		parts = append(parts, m.theme.AssistantBubble.Render(m.markdown.Render(content)))
	case msg.IsStreaming && len(parts) == 0:
		parts = append(parts, m.spinner.View()+" thinking…")
	}

	if chips := m.renderMessageAttachments(msg); chips != "" {
		parts = append(parts, chips)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderMessageAttachments(msg *model.Message) string {
	if len(msg.Attachments) == 0 {
		return ""
	}
	var chips []string
	for _, att := range msg.Attachments {
		icon := "📄"
		if att.IsImage() {
			icon = "🖼"
		}
		chips = append(chips, m.theme.AttachmentChip.Render(icon+" "+att.Name))
	}
	return strings.Join(chips, " ")
}

// =============================================================================
// HELP
// =============================================================================

func (m *Model) renderHelp() string {
	var b strings.Builder

	b.WriteString("Keys: ")
	var keys []string
	for _, binding := range m.keyMap.ShortHelp() {
		keys = append(keys, binding.Help().Key+" "+binding.Help().Desc)
	}
	b.WriteString(strings.Join(keys, " · "))
	b.WriteString("\n")

	byCat := m.registry.ByCategory()
	cats := make([]string, 0, len(byCat))
	for cat := range byCat {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	for _, cat := range cats {
		b.WriteString(cat + ":\n")
		for _, cmd := range byCat[cat] {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage = cmd.Usage
			}
			fmt.Fprintf(&b, "  %-34s %s\n", usage, cmd.Description)
		}
	}
	return m.theme.Help.Render(strings.TrimRight(b.String(), "\n"))
}
