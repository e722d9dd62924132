// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/haven-tui/internal/attachment"
	"github.com/jeranaias/haven-tui/internal/commands"
	"github.com/jeranaias/haven-tui/internal/composer"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/genmode"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
	"github.com/jeranaias/haven-tui/internal/storage"
	"github.com/jeranaias/haven-tui/internal/ui/components"
	"github.com/jeranaias/haven-tui/internal/ui/styles"
	"github.com/jeranaias/haven-tui/internal/upload"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady     State = iota // Ready for input
	StateStreaming              // Receiving a streaming response
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps bundles everything the chat view needs from the application.
// Storage may be nil when persistence is disabled; Transcribe may be
// nil when speech capture is unavailable.
type Deps struct {
	Config     *config.Config
	Sender     Sender
	Storage    *storage.ConversationStore
	Transcribe composer.TranscribeFunc
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state   State
	private bool

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Conversation
	conversation *model.Conversation

	// prevConversation parks the regular conversation while private mode
	// is active.
	prevConversation *model.Conversation

	// Input orchestration
	sessions *session.Manager
	composer *composer.Composer
	selector *genmode.Selector

	// Slash commands
	parser   *commands.Parser
	registry *commands.Registry
	cmdCtx   *commands.Context

	// Persistence and uploads
	storage *storage.ConversationStore
	uploads *upload.Pipeline

	// Streaming optimization
	streamingBuffer   *StreamingBuffer
	viewportOptimizer *ViewportOptimizer

	// Rendering
	markdown     *components.Markdown
	activityView *components.ActivityView
	attachStrip  *components.AttachmentStrip

	// Per-message expand state for completed activity blocks
	expandedActivity map[string]bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Key bindings
	keyMap KeyMap

	// Image model records, tagged once at startup
	imageModels []model.ImageModel

	// Relay from collaborator goroutines into the update loop
	events chan tea.Msg

	// Transient feedback
	notice  string
	lastErr error

	showHelp bool

	cfg *config.Config
}

// New creates the chat model wired to its collaborators.
func New(deps Deps) *Model {
	if deps.Config != nil {
		styles.SetVariant(deps.Config.UI.Theme)
	}
	theme := styles.NewTheme()

	input := textinput.New()
	input.Placeholder = "Message haven… (/help for commands)"
	input.Prompt = ""
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	m := &Model{
		theme:             theme,
		conversation:      model.NewConversation(),
		sessions:          session.NewManager(),
		selector:          genmode.NewSelector(),
		storage:           deps.Storage,
		streamingBuffer:   NewStreamingBuffer(),
		viewportOptimizer: NewViewportOptimizer(),
		markdown:          components.NewMarkdown(78),
		expandedActivity:  make(map[string]bool),
		viewport:          viewport.New(80, 20),
		input:             input,
		spinner:           sp,
		keyMap:            DefaultKeyMap(),
		events:            make(chan tea.Msg, 64),
		cfg:               deps.Config,
	}
	m.activityView = components.NewActivityView(theme, 78)
	m.attachStrip = components.NewAttachmentStrip(theme, 78)

	if deps.Config != nil {
		m.imageModels = model.ResolveImageModels(deps.Config.Image.Model, deps.Config.Image.PersonalKey != "")
		m.selector.SetAspectRatio(deps.Config.Image.DefaultAspectRatio)
		m.markdown.SetOptions(deps.Config.UI.Markdown, deps.Config.UI.SyntaxHighlight)
		m.sessions.Histories().SetLimit(deps.Config.UI.HistorySize)
		if dir := deps.Config.Attachments.StageDir; dir != "" {
			// The pipeline shares the session manager's attachment store
			// so staged files land in the active session.
			m.uploads = upload.NewPipeline(attachment.NewTracker(), m.sessions.Attachments(), dir)
		}
	}

	m.composer = composer.New(m.sessions, m.selector, composer.Collaborators{
		Submit:       m.sendFunc(deps.Sender, false),
		SubmitAsNew:  m.sendFunc(deps.Sender, true),
		ProcessFiles: m.processFilesFunc(),
		Transcribe:   deps.Transcribe,
		OnAsyncError: func(err error) { m.events <- asyncErrorMsg{err: err} },
	})

	m.sessions.SetActive(m.conversation.ID)

	m.registry = commands.NewRegistry()
	m.parser = commands.NewParser(m.registry)
	m.cmdCtx = &commands.Context{
		Config:      deps.Config,
		Storage:     deps.Storage,
		Sessions:    m.sessions,
		Composer:    m.composer,
		Selector:    m.selector,
		Uploads:     m.uploads,
		ImageModels: m.imageModels,
	}

	return m
}

// sendFunc builds the composer's submit collaborator. It announces the
// issued request to the update loop, then blocks on the backend while
// relaying stream events.
func (m *Model) sendFunc(sender Sender, newThread bool) composer.SubmitFunc {
	return func(ctx context.Context, content string, atts []model.Attachment, mode model.GenerationMode) error {
		active := m.sessions.Active()
		req := SendRequest{
			Content:     content,
			Attachments: atts,
			Mode:        mode,
			NewThread:   newThread,
			Persona:     active.Persona,
			Temperature: active.Temperature,
			Reasoning:   active.Reasoning,
		}
		m.events <- submitIssuedMsg{req: req}

		if sender == nil {
			m.events <- streamDoneMsg{}
			return nil
		}
		err := sender.Send(ctx, req, func(ev StreamEvent) {
			m.events <- streamEventMsg{event: ev}
		})
		m.events <- streamDoneMsg{err: err}
		return nil
	}
}

// processFilesFunc routes dropped or /attach'ed paths through the
// upload pipeline under the active session key.
func (m *Model) processFilesFunc() composer.ProcessFilesFunc {
	return func(ctx context.Context, paths []string) error {
		if m.uploads == nil {
			return nil
		}
		return m.uploads.Process(ctx, m.sessions.ActiveKey(), paths)
	}
}

// Init starts the relay listener and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.listenEvents(), m.spinner.Tick)
}

// listenEvents forwards one relayed collaborator message into the
// update loop; Update re-issues it after each receipt.
func (m *Model) listenEvents() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

// IngestPaths is the entry point for the inbox watcher.
func (m *Model) IngestPaths(paths []string) {
	if err := m.composer.IngestFiles(context.Background(), paths); err != nil {
		m.events <- asyncErrorMsg{err: err}
	}
}

// capability derives the mode selector's capability view from the
// tagged model records.
func (m *Model) capability() genmode.Capability {
	hasKey := m.cfg != nil && m.cfg.Image.PersonalKey != ""
	return genmode.Capability{
		PrivateMode:  m.private,
		CanUseImages: model.CanGenerateImages(m.imageModels, hasKey),
	}
}

// tracker returns the upload tracker, or nil when uploads are disabled.
func (m *Model) tracker() *attachment.Tracker {
	if m.uploads == nil {
		return nil
	}
	return m.uploads.Tracker()
}
