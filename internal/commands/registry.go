// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/haven-tui/internal/composer"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/genmode"
	"github.com/jeranaias/haven-tui/internal/model"
	"github.com/jeranaias/haven-tui/internal/session"
	"github.com/jeranaias/haven-tui/internal/storage"
	"github.com/jeranaias/haven-tui/internal/upload"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/aspect <ratio>")
	Usage string

	// Handler executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// =============================================================================
// CONTEXT
// =============================================================================

// Context gives handlers access to application state. Fields may be nil
// when the corresponding subsystem is disabled.
type Context struct {
	Config   *config.Config
	Storage  *storage.ConversationStore
	Sessions *session.Manager
	Composer *composer.Composer
	Selector *genmode.Selector
	Uploads  *upload.Pipeline

	// ImageModels are the tagged model records resolved at startup;
	// capability checks read these, never raw config strings.
	ImageModels []model.ImageModel
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Category:    "Navigation",
		Handler:     handleHelp,
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit haven",
		Category:    "Navigation",
		Handler:     handleQuit,
	})

	// Conversation
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new conversation",
		Category:    "Conversation",
		Handler:     handleNew,
	})
	r.Register(&Command{
		Name:        "/save",
		Aliases:     []string{"/s"},
		Description: "Save the current conversation",
		Usage:       "/save [title]",
		Category:    "Conversation",
		Handler:     handleSave,
	})
	r.Register(&Command{
		Name:        "/load",
		Aliases:     []string{"/l", "/resume"},
		Description: "Load a saved conversation",
		Usage:       "/load <conversation_id>",
		Category:    "Conversation",
		Handler:     handleLoad,
	})
	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/ls"},
		Description: "List saved conversations",
		Category:    "Conversation",
		Handler:     handleSessions,
	})
	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear conversation history",
		Category:    "Conversation",
		Handler:     handleClear,
	})
	r.Register(&Command{
		Name:        "/private",
		Description: "Toggle private mode (never persisted)",
		Category:    "Conversation",
		Handler:     handlePrivate,
	})

	// Composer
	r.Register(&Command{
		Name:        "/mode",
		Aliases:     []string{"/m"},
		Description: "Switch generation mode",
		Usage:       "/mode <text|image>",
		Category:    "Composer",
		Handler:     handleMode,
	})
	r.Register(&Command{
		Name:        "/aspect",
		Description: "Set image aspect ratio",
		Usage:       "/aspect <1:1|16:9|9:16|4:3|3:4>",
		Category:    "Composer",
		Handler:     handleAspect,
	})
	r.Register(&Command{
		Name:        "/quote",
		Description: "Quote text into the next message",
		Usage:       "/quote <text>  (or /quote to clear)",
		Category:    "Composer",
		Handler:     handleQuote,
	})
	r.Register(&Command{
		Name:        "/attach",
		Aliases:     []string{"/a"},
		Description: "Attach files to the next message",
		Usage:       "/attach <path> [path...]",
		Category:    "Composer",
		Handler:     handleAttach,
	})
	r.Register(&Command{
		Name:        "/drop",
		Description: "Remove a staged attachment",
		Usage:       "/drop <number>",
		Category:    "Composer",
		Handler:     handleDrop,
	})
	r.Register(&Command{
		Name:        "/persona",
		Description: "Set the conversation persona (system prompt)",
		Usage:       "/persona <text>  (or /persona to clear)",
		Category:    "Composer",
		Handler:     handlePersona,
	})
	r.Register(&Command{
		Name:        "/temp",
		Description: "Set the sampling temperature",
		Usage:       "/temp <0.0-2.0>",
		Category:    "Composer",
		Handler:     handleTemp,
	})
	r.Register(&Command{
		Name:        "/think",
		Description: "Control reasoning effort",
		Usage:       "/think <off|low|medium|high>",
		Category:    "Composer",
		Handler:     handleThink,
	})
}
