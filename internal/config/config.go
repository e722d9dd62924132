// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for haven.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides:
//   - ~/.haven/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete haven configuration.
type Config struct {
	Version string `toml:"version"`

	// Backend configuration
	Backend BackendConfig `toml:"backend"`

	// Image generation configuration
	Image ImageConfig `toml:"image"`

	// Attachment handling
	Attachments AttachmentConfig `toml:"attachments"`

	// Speech-to-text configuration
	Speech SpeechConfig `toml:"speech"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`
}

// BackendConfig contains chat backend configuration.
type BackendConfig struct {
	// URL is the base URL of the chat backend
	URL string `toml:"url"`
	// APIKey authenticates against the backend (optional for local backends)
	APIKey string `toml:"api_key"`
	// DefaultModel is the model used for new conversations
	DefaultModel string `toml:"default_model"`
}

// ImageConfig contains image generation configuration.
type ImageConfig struct {
	// DefaultAspectRatio for generated images (e.g. "1:1", "16:9")
	DefaultAspectRatio string `toml:"default_aspect_ratio"`
	// Model is the preferred image generation model
	Model string `toml:"model"`
	// PersonalKey is a user-supplied image provider key; having one
	// unlocks non-free image models
	PersonalKey string `toml:"personal_key"`
}

// AttachmentConfig contains attachment staging configuration.
type AttachmentConfig struct {
	// InboxDir is the watched drop directory (empty = ~/.haven/inbox)
	InboxDir string `toml:"inbox_dir"`
	// WatchInbox enables the inbox watcher
	WatchInbox bool `toml:"watch_inbox"`
	// StageDir is where staged copies live (empty = ~/.haven/staged)
	StageDir string `toml:"stage_dir"`
}

// SpeechConfig contains speech-to-text configuration.
type SpeechConfig struct {
	// Enabled turns the dictation feature on
	Enabled bool `toml:"enabled"`
	// Endpoint is the transcription service URL
	Endpoint string `toml:"endpoint"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light"
	Theme string `toml:"theme"`
	// Markdown enables glamour rendering of assistant messages
	Markdown bool `toml:"markdown"`
	// SyntaxHighlight enables chroma highlighting of code blocks
	SyntaxHighlight bool `toml:"syntax_highlight"`
	// HistorySize caps the per-conversation input history
	HistorySize int `toml:"history_size"`
}

// StorageConfig contains persistence configuration.
type StorageConfig struct {
	// DatabasePath is the SQLite file (empty = ~/.haven/conversations.db)
	DatabasePath string `toml:"database_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			URL:          "http://localhost:8080",
			DefaultModel: "llama3.2",
		},
		Image: ImageConfig{
			DefaultAspectRatio: "1:1",
		},
		Attachments: AttachmentConfig{
			WatchInbox: true,
		},
		UI: UIConfig{
			Theme:           "dark",
			Markdown:        true,
			SyntaxHighlight: true,
			HistorySize:     100,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.haven.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".haven"), nil
}

// ConfigPath returns ~/.haven/config.toml.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the config directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads ~/.haven/config.toml over defaults, then applies env
// overrides and validation. A missing file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to ~/.haven/config.toml with 0600
// permissions.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to an explicit path.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# haven configuration file")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// ENV OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies HAVEN_* environment variables over the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if url := os.Getenv("HAVEN_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	if key := os.Getenv("HAVEN_API_KEY"); key != "" {
		c.Backend.APIKey = key
	}
	if model := os.Getenv("HAVEN_MODEL"); model != "" {
		c.Backend.DefaultModel = model
	}
	if key := os.Getenv("HAVEN_IMAGE_KEY"); key != "" {
		c.Image.PersonalKey = key
	}
	if inbox := os.Getenv("HAVEN_INBOX_DIR"); inbox != "" {
		c.Attachments.InboxDir = inbox
	}
	if theme := os.Getenv("HAVEN_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if db := os.Getenv("HAVEN_DB"); db != "" {
		c.Storage.DatabasePath = db
	}
	if watch := os.Getenv("HAVEN_WATCH_INBOX"); watch != "" {
		if v, err := strconv.ParseBool(watch); err == nil {
			c.Attachments.WatchInbox = v
		}
	}
}

// =============================================================================
// DEFAULTS / VALIDATION
// =============================================================================

// SetDefaults fills empty fields that depend on the home directory.
func (c *Config) SetDefaults() {
	dir, err := ConfigDir()
	if err != nil {
		return
	}
	if c.Attachments.InboxDir == "" {
		c.Attachments.InboxDir = filepath.Join(dir, "inbox")
	}
	if c.Attachments.StageDir == "" {
		c.Attachments.StageDir = filepath.Join(dir, "staged")
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = filepath.Join(dir, "conversations.db")
	}
	if c.UI.HistorySize <= 0 {
		c.UI.HistorySize = 100
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url must not be empty")
	}
	if !strings.HasPrefix(c.Backend.URL, "http://") && !strings.HasPrefix(c.Backend.URL, "https://") {
		return fmt.Errorf("backend.url must be an http(s) URL, got %q", c.Backend.URL)
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("ui.theme must be \"dark\" or \"light\", got %q", c.UI.Theme)
	}
	if !validAspectRatio(c.Image.DefaultAspectRatio) {
		return fmt.Errorf("image.default_aspect_ratio %q is not supported", c.Image.DefaultAspectRatio)
	}
	return nil
}

func validAspectRatio(ratio string) bool {
	switch ratio {
	case "1:1", "16:9", "9:16", "4:3", "3:4":
		return true
	}
	return false
}
