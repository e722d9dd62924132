// haven TUI - a terminal chat client with attachments, dictation, and
// image generation modes.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/haven-tui/internal/backend"
	"github.com/jeranaias/haven-tui/internal/cli"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/storage"
	"github.com/jeranaias/haven-tui/internal/ui/chat"
	"github.com/jeranaias/haven-tui/internal/upload"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		flagConfig  = flag.String("config", "", "path to config file")
		flagModel   = flag.String("model", "", "model to use (overrides config)")
		flagPlain   = flag.Bool("plain", false, "use the plain-terminal REPL instead of the full interface")
		flagVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *flagVersion {
		fmt.Printf("haven %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		fatal(err)
	}
	if *flagModel != "" {
		cfg.Backend.DefaultModel = *flagModel
	}

	// Persistence
	var store *storage.ConversationStore
	if cfg.Storage.DatabasePath != "" {
		store, err = storage.NewConversationStore(cfg.Storage.DatabasePath)
		if err != nil {
			fatal(fmt.Errorf("opening conversation store: %w", err))
		}
		defer store.Close()
	}

	// Backend
	client := backend.NewClient(&backend.ClientConfig{
		BaseURL:      cfg.Backend.URL,
		APIKey:       cfg.Backend.APIKey,
		DefaultModel: cfg.Backend.DefaultModel,
	})
	sender := newSender(client, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *flagPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		err = cli.Run(ctx, cli.Options{
			Config:  cfg,
			Sender:  sender,
			Storage: store,
		})
		if err != nil && err != context.Canceled {
			fatal(err)
		}
		return
	}

	runTUI(ctx, cfg, sender, store)
}

// runTUI starts the full-screen interface with the inbox watcher.
func runTUI(ctx context.Context, cfg *config.Config, sender chat.Sender, store *storage.ConversationStore) {
	deps := chat.Deps{
		Config:  cfg,
		Sender:  sender,
		Storage: store,
	}
	if cfg.Speech.Enabled && cfg.Speech.Endpoint != "" {
		deps.Transcribe = backend.NewTranscriber(cfg.Speech.Endpoint, cfg.Backend.APIKey).Transcribe
	}
	chatModel := chat.New(deps)

	// Inbox watcher: dropping a file into the inbox directory stages it
	// into the active conversation's attachments.
	if cfg.Attachments.WatchInbox && cfg.Attachments.InboxDir != "" {
		watcher, err := upload.NewWatcher(cfg.Attachments.InboxDir, chatModel.IngestPaths)
		if err != nil {
			fmt.Fprintf(os.Stderr, "inbox watcher disabled: %v\n", err)
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
		}
	}

	p := tea.NewProgram(chatModel, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

// loadConfig reads the config file, applies environment overrides, and
// validates the result.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newSender adapts a backend session to the chat view's send boundary,
// translating wire chunks into stream events.
func newSender(client *backend.Client, cfg *config.Config) chat.Sender {
	session := backend.NewSession(client, cfg.Backend.DefaultModel)

	return chat.SenderFunc(func(ctx context.Context, req chat.SendRequest, emit func(chat.StreamEvent)) error {
		// Image-mode turns route to the image model over the same
		// protocol; generated images come back as attachments.
		if req.Mode == model.ModeImage && cfg.Image.Model != "" {
			session.SetModel(cfg.Image.Model)
			defer session.SetModel(cfg.Backend.DefaultModel)
		}

		var images []string
		for _, att := range req.Attachments {
			if att.Type == model.AttachmentImage {
				images = append(images, att.URL)
			}
		}

		opts := backend.TurnOptions{
			Temperature: req.Temperature,
			Think:       req.Reasoning.Enabled,
			System:      req.Persona,
		}
		return session.Stream(ctx, req.Content, images, req.NewThread, opts, func(chunk backend.Chunk) {
			if chunk.Thinking != "" {
				emit(chat.StreamEvent{Reasoning: &model.ReasoningPart{
					Text:      chunk.Thinking,
					StartedAt: time.Now(),
				}})
			}
			if chunk.ToolCall != nil {
				emit(chat.StreamEvent{ToolCall: toToolCall(chunk.ToolCall)})
			}
			if chunk.Content != "" {
				emit(chat.StreamEvent{Token: chunk.Content})
			}
		})
	})
}

func toToolCall(tc *backend.ToolCallChunk) *model.ToolCall {
	call := &model.ToolCall{
		ID:        tc.ID,
		Name:      tc.Name,
		Args:      tc.Args,
		Status:    model.ToolRunning,
		StartedAt: time.Now(),
	}
	if tc.Done {
		if tc.Error != "" {
			call.Status = model.ToolError
			call.Error = tc.Error
		} else {
			call.Status = model.ToolCompleted
		}
	}
	return call
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "haven: %v\n", err)
	os.Exit(1)
}
