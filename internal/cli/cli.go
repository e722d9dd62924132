// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the plain-terminal REPL used when haven runs
// without a TTY capable of hosting the full interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/haven-tui/internal/attachment"
	"github.com/jeranaias/haven-tui/internal/commands"
	"github.com/jeranaias/haven-tui/internal/composer"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/genmode"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
	"github.com/jeranaias/haven-tui/internal/storage"
	"github.com/jeranaias/haven-tui/internal/ui/chat"
	"github.com/jeranaias/haven-tui/internal/ui/components"
	"github.com/jeranaias/haven-tui/internal/upload"
	"github.com/jeranaias/haven-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().Bold(true)

	noticeStyle = lipgloss.NewStyle().Faint(true)

	errorStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("1"))
)

// =============================================================================
// REPL
// =============================================================================

// Options configures a REPL session. Storage may be nil.
type Options struct {
	Config  *config.Config
	Sender  chat.Sender
	Storage *storage.ConversationStore
}

// repl holds the state of one plain-terminal session.
type repl struct {
	opts Options

	conversation *model.Conversation
	sessions     *session.Manager
	composer     *composer.Composer
	selector     *genmode.Selector

	parser   *commands.Parser
	registry *commands.Registry
	cmdCtx   *commands.Context

	input       *Input
	markdown    *components.Markdown
	uploads     *upload.Pipeline
	imageModels []model.ImageModel

	private bool
	quit    bool

	// turnDone receives the backend error when a streamed turn ends.
	turnDone chan error
}

// Run drives the plain-terminal chat loop until /quit or EOF.
func Run(ctx context.Context, opts Options) error {
	r := &repl{
		opts:         opts,
		conversation: model.NewConversation(),
		sessions:     session.NewManager(),
		selector:     genmode.NewSelector(),
		markdown:     components.NewMarkdown(100),
		turnDone:     make(chan error, 1),
	}
	r.sessions.SetActive(r.conversation.ID)

	if opts.Config != nil {
		r.imageModels = model.ResolveImageModels(opts.Config.Image.Model, opts.Config.Image.PersonalKey != "")
		r.selector.SetAspectRatio(opts.Config.Image.DefaultAspectRatio)
		r.markdown.SetOptions(opts.Config.UI.Markdown, opts.Config.UI.SyntaxHighlight)
		r.sessions.Histories().SetLimit(opts.Config.UI.HistorySize)
		if dir := opts.Config.Attachments.StageDir; dir != "" {
			r.uploads = upload.NewPipeline(attachment.NewTracker(), r.sessions.Attachments(), dir)
		}
	}

	r.composer = composer.New(r.sessions, r.selector, composer.Collaborators{
		Submit:       r.sendFunc(false),
		SubmitAsNew:  r.sendFunc(true),
		ProcessFiles: r.processFiles,
		OnAsyncError: func(err error) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		},
	})

	r.registry = commands.NewRegistry()
	r.parser = commands.NewParser(r.registry)
	r.cmdCtx = &commands.Context{
		Config:      opts.Config,
		Storage:     opts.Storage,
		Sessions:    r.sessions,
		Composer:    r.composer,
		Selector:    r.selector,
		Uploads:     r.uploads,
		ImageModels: r.imageModels,
	}

	r.input = NewInput(r.sessions.Histories(), r.conversation.ID, historyPath())
	defer r.input.Close()

	fmt.Println(noticeStyle.Render("haven: /help for commands, /quit to exit"))

	return r.loop(ctx)
}

func (r *repl) loop(ctx context.Context) error {
	for !r.quit {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := r.input.Read(r.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			// EOF (Ctrl+D) ends the session.
			return nil
		}

		if commands.IsCommand(line) {
			r.runCommand(line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		r.composer.SetDraft(line)
		if err := r.submit(ctx); err != nil {
			r.report(err)
		}
	}
	return nil
}

func (r *repl) prompt() string {
	p := "you"
	if r.private {
		p += " [private]"
	}
	if r.selector.Mode() == model.ModeImage {
		p += " [image]"
	}
	return promptStyle.Render(p + " ❯ ")
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit issues the composed draft and blocks until the streamed turn
// finishes, so the next prompt appears after the answer.
func (r *repl) submit(ctx context.Context) error {
	if err := r.composer.Submit(ctx); err != nil {
		if errors.Is(err, composer.ErrEmptyDraft) {
			return nil
		}
		return err
	}

	err := <-r.turnDone
	if err != nil {
		return err
	}

	if !r.private && r.opts.Storage != nil {
		if saveErr := r.opts.Storage.Save(r.conversation); saveErr != nil {
			r.report(saveErr)
		}
	}
	return nil
}

// sendFunc bridges the composer to the backend. Tokens print as they
// arrive; the assembled response is re-rendered as markdown at the end.
func (r *repl) sendFunc(newThread bool) composer.SubmitFunc {
	return func(ctx context.Context, content string, atts []model.Attachment, mode model.GenerationMode) error {
		if newThread {
			r.startNew()
		}
		active := r.sessions.Active()

		userMsg := r.conversation.AddUserMessage(content)
		userMsg.Attachments = atts
		userMsg.Mode = mode
		assistant := r.conversation.AddAssistantMessage()

		var err error
		if r.opts.Sender == nil {
			fmt.Println(noticeStyle.Render("(no backend configured)"))
		} else {
			req := chat.SendRequest{
				Content:     content,
				Attachments: atts,
				Mode:        mode,
				NewThread:   newThread,
				Persona:     active.Persona,
				Temperature: active.Temperature,
				Reasoning:   active.Reasoning,
			}
			err = r.opts.Sender.Send(ctx, req, func(ev chat.StreamEvent) {
				r.printEvent(assistant, ev)
			})
		}

		r.conversation.FinalizeLast(nil)
		if err == nil && assistant.Content != "" {
			// Replace the raw token stream with the rendered form.
			fmt.Println("\n" + r.markdown.Render(assistant.Content))
		} else {
			fmt.Println()
		}

		r.turnDone <- err
		return nil
	}
}

func (r *repl) printEvent(assistant *model.Message, ev chat.StreamEvent) {
	switch {
	case ev.Token != "":
		assistant.AppendToken(ev.Token)
		fmt.Print(ev.Token)

	case ev.Reasoning != nil:
		assistant.AppendReasoning(*ev.Reasoning)
		if text := strings.TrimSpace(ev.Reasoning.Text); text != "" {
			fmt.Println(noticeStyle.Render("○ " + text))
		}

	case ev.ToolCall != nil:
		assistant.UpsertToolCall(*ev.ToolCall)
		label := ev.ToolCall.Name
		if label == "" {
			label = ev.ToolCall.ID
		}
		fmt.Println(noticeStyle.Render("⚙ " + label))

	case ev.Image != nil:
		assistant.Attachments = append(assistant.Attachments, *ev.Image)
		fmt.Println(noticeStyle.Render("🖼 " + ev.Image.Name))
	}
}

func (r *repl) processFiles(ctx context.Context, paths []string) error {
	if r.uploads == nil {
		return errors.New("uploads are disabled")
	}
	return r.uploads.Process(ctx, r.sessions.ActiveKey(), paths)
}

// =============================================================================
// COMMANDS
// =============================================================================

// runCommand executes a slash command and reacts to its message. The
// command layer speaks Bubble Tea messages; here they are executed
// synchronously.
func (r *repl) runCommand(line string) {
	result := r.parser.Parse(line)
	if result.Command == nil {
		r.report(fmt.Errorf("unknown command %s (try /help)", result.CommandName))
		return
	}

	cmd := result.Command.Handler(r.cmdCtx, result.Args)
	if cmd == nil {
		return
	}
	r.dispatch(cmd())
}

func (r *repl) dispatch(msg tea.Msg) {
	switch msg := msg.(type) {
	case tea.QuitMsg:
		r.quit = true

	case commands.ShowHelpMsg:
		r.printHelp()

	case commands.NewConversationMsg:
		r.startNew()
		fmt.Println(noticeStyle.Render("new conversation"))

	case commands.SaveRequestMsg:
		r.save(msg.Title)

	case commands.LoadedConversationMsg:
		if msg.Err != nil {
			r.report(msg.Err)
			return
		}
		r.adopt(msg.Conversation)

	case commands.SessionListMsg:
		if msg.Err != nil {
			r.report(msg.Err)
			return
		}
		for _, meta := range msg.Sessions {
			fmt.Printf("  %s  %s (%d messages)\n", meta.ID, meta.Title, meta.MessageCount)
		}

	case commands.ClearHistoryMsg:
		r.conversation.ClearHistory()
		fmt.Println(noticeStyle.Render("history cleared"))

	case commands.TogglePrivateMsg:
		r.togglePrivate()

	case commands.ModeChangedMsg:
		fmt.Println(noticeStyle.Render(fmt.Sprintf("mode: %s", msg.Mode)))

	case commands.NoticeMsg:
		fmt.Println(noticeStyle.Render(msg.Text))

	case commands.ErrorMsg:
		r.report(msg.Err)
	}
}

func (r *repl) printHelp() {
	for cat, cmds := range r.registry.ByCategory() {
		fmt.Println(cat + ":")
		for _, cmd := range cmds {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage = cmd.Usage
			}
			fmt.Printf("  %s %s\n", util.PadRight(usage, 34), cmd.Description)
		}
	}
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// bindSession parks the selector's mode and image params under the
// outgoing session key, restores the new key's state, and retargets the
// line editor's history.
func (r *repl) bindSession(key string) {
	prev := r.sessions.Active()
	prev.Mode, prev.ImageParams = r.selector.Snapshot()
	next := r.sessions.SetActive(key)
	r.selector.Restore(next.Mode, next.ImageParams, r.capability())
	r.input.Rebind(key)
}

func (r *repl) startNew() {
	if r.private {
		r.conversation = model.NewPrivateConversation()
		r.bindSession(session.PrivateKey)
		return
	}
	r.conversation = model.NewConversation()
	r.bindSession(r.conversation.ID)
}

func (r *repl) togglePrivate() {
	r.private = !r.private
	r.startNew()

	if r.private {
		fmt.Println(noticeStyle.Render("private mode on: nothing is saved"))
	} else {
		fmt.Println(noticeStyle.Render("private mode off"))
	}
}

func (r *repl) capability() genmode.Capability {
	hasKey := r.opts.Config != nil && r.opts.Config.Image.PersonalKey != ""
	return genmode.Capability{
		PrivateMode:  r.private,
		CanUseImages: model.CanGenerateImages(r.imageModels, hasKey),
	}
}

func (r *repl) adopt(conv *model.Conversation) {
	r.conversation = conv
	r.private = false
	r.bindSession(conv.ID)
	r.sessions.Histories().Hydrate(conv.ID, conv.MessageCount(), conv.UserMessageContents())
	r.selector.MaybeAutoSwitch(conv.ID, conv.LikelyImage, r.capability())
	fmt.Println(noticeStyle.Render(fmt.Sprintf("loaded %q", conv.GetTitle())))
}

func (r *repl) save(title string) {
	if r.opts.Storage == nil {
		r.report(errors.New("persistence is disabled"))
		return
	}
	if r.private {
		fmt.Println(noticeStyle.Render("private conversations are never saved"))
		return
	}
	if title != "" {
		r.conversation.SetTitle(title)
	}
	if err := r.opts.Storage.Save(r.conversation); err != nil {
		r.report(err)
		return
	}
	fmt.Println(noticeStyle.Render(fmt.Sprintf("saved %q", r.conversation.GetTitle())))
}

func (r *repl) report(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
}

// historyPath resolves the liner history file location.
func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "haven_history")
	}
	return filepath.Join(home, ".haven", "input_history")
}
