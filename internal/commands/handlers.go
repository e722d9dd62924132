// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/haven-tui/internal/genmode"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// Handlers communicate with the application through these messages.

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct{}

// NewConversationMsg requests a fresh conversation.
type NewConversationMsg struct{}

// SaveRequestMsg asks the app to persist the current conversation.
type SaveRequestMsg struct {
	Title string
}

// LoadedConversationMsg carries a loaded conversation (or the error).
type LoadedConversationMsg struct {
	Conversation *model.Conversation
	Err          error
}

// SessionListMsg carries saved conversation metadata for display.
type SessionListMsg struct {
	Sessions []model.ConversationMeta
	Err      error
}

// ClearHistoryMsg requests clearing the current conversation.
type ClearHistoryMsg struct{}

// TogglePrivateMsg flips private mode.
type TogglePrivateMsg struct{}

// ModeChangedMsg reports a generation mode change.
type ModeChangedMsg struct {
	Mode model.GenerationMode
}

// NoticeMsg is a transient system notice rendered in the conversation.
type NoticeMsg struct {
	Text string
}

// ErrorMsg is a command failure surfaced to the user.
type ErrorMsg struct {
	Err error
}

func notice(format string, args ...interface{}) tea.Cmd {
	text := fmt.Sprintf(format, args...)
	return func() tea.Msg { return NoticeMsg{Text: text} }
}

func fail(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

func handleHelp(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return ShowHelpMsg{} }
}

func handleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

func handleNew(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return NewConversationMsg{} }
}

func handleSave(ctx *Context, args []string) tea.Cmd {
	title := strings.Join(args, " ")
	return func() tea.Msg { return SaveRequestMsg{Title: title} }
}

func handleLoad(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return notice("usage: /load <conversation_id>")
	}
	id := args[0]
	return func() tea.Msg {
		if ctx.Storage == nil {
			return ErrorMsg{Err: fmt.Errorf("persistence is disabled")}
		}
		conv, err := ctx.Storage.Load(id)
		return LoadedConversationMsg{Conversation: conv, Err: err}
	}
}

func handleSessions(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Storage == nil {
			return ErrorMsg{Err: fmt.Errorf("persistence is disabled")}
		}
		metas, err := ctx.Storage.List()
		return SessionListMsg{Sessions: metas, Err: err}
	}
}

func handleClear(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return ClearHistoryMsg{} }
}

func handlePrivate(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg { return TogglePrivateMsg{} }
}

// =============================================================================
// COMPOSER HANDLERS
// =============================================================================

func handleMode(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return notice("mode: %s", ctx.Selector.Mode())
	}

	mode := model.GenerationMode(strings.ToLower(args[0]))
	if !mode.Valid() {
		return notice("usage: /mode <text|image>")
	}

	cap := currentCapability(ctx)
	ctx.Selector.SetMode(mode, cap)
	applied := ctx.Selector.Mode()
	return func() tea.Msg { return ModeChangedMsg{Mode: applied} }
}

func handleAspect(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return notice("aspect ratio: %s", ctx.Selector.ImageParams().AspectRatio)
	}
	switch args[0] {
	case "1:1", "16:9", "9:16", "4:3", "3:4":
	default:
		return notice("usage: /aspect <1:1|16:9|9:16|4:3|3:4>")
	}
	ctx.Selector.SetAspectRatio(args[0])
	return notice("aspect ratio set to %s", args[0])
}

func handleQuote(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		ctx.Composer.ClearQuote()
		return notice("quote cleared")
	}
	ctx.Composer.SetQuote(strings.Join(args, " "))
	return notice("quoting into next message")
}

func handleAttach(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return notice("usage: /attach <path> [path...]")
	}
	if err := ctx.Composer.IngestFiles(context.Background(), args); err != nil {
		return fail(err)
	}
	return notice("staging %d file(s)", len(args))
}

func handleDrop(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return notice("usage: /drop <number>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return notice("usage: /drop <number>")
	}

	key := ctx.Sessions.ActiveKey()
	// Displayed attachment numbers are 1-based.
	ctx.Sessions.Attachments().RemoveAt(key, n-1)
	return notice("attachment %d removed", n)
}

// currentCapability derives the mode selector's capability view from
// the tagged model records and session state.
func currentCapability(ctx *Context) genmode.Capability {
	hasKey := ctx.Config != nil && ctx.Config.Image.PersonalKey != ""
	return genmode.Capability{
		PrivateMode:  ctx.Sessions.ActiveKey() == session.PrivateKey,
		CanUseImages: model.CanGenerateImages(ctx.ImageModels, hasKey),
	}
}

// =============================================================================
// SESSION SETTING HANDLERS
// =============================================================================

func handlePersona(ctx *Context, args []string) tea.Cmd {
	sess := ctx.Sessions.Active()
	if len(args) == 0 {
		sess.Persona = ""
		return notice("persona cleared")
	}
	sess.Persona = strings.Join(args, " ")
	return notice("persona set for this conversation")
}

func handleTemp(ctx *Context, args []string) tea.Cmd {
	sess := ctx.Sessions.Active()
	if len(args) == 0 {
		return notice("temperature: %.1f", sess.Temperature)
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || v < 0 || v > 2 {
		return notice("usage: /temp <0.0-2.0>")
	}
	sess.Temperature = v
	return notice("temperature set to %.1f", v)
}

func handleThink(ctx *Context, args []string) tea.Cmd {
	sess := ctx.Sessions.Active()
	if len(args) == 0 {
		if !sess.Reasoning.Enabled {
			return notice("thinking: off")
		}
		return notice("thinking: %s", sess.Reasoning.Effort)
	}
	switch args[0] {
	case "off":
		sess.Reasoning = session.ReasoningConfig{}
		return notice("thinking off")
	case "low", "medium", "high":
		sess.Reasoning = session.ReasoningConfig{Enabled: true, Effort: args[0]}
		return notice("thinking %s", args[0])
	}
	return notice("usage: /think <off|low|medium|high>")
}
