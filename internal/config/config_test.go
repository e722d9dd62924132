// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.Image.DefaultAspectRatio != "1:1" {
		t.Errorf("DefaultAspectRatio = %q", cfg.Image.DefaultAspectRatio)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Backend.DefaultModel != "llama3.2" {
		t.Errorf("DefaultModel = %q, want built-in default", cfg.Backend.DefaultModel)
	}
}

func TestLoadFromPathReadsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0"

[backend]
url = "https://chat.example.com"
default_model = "qwen3"

[ui]
theme = "light"
history_size = 50

[image]
default_aspect_ratio = "16:9"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Backend.URL != "https://chat.example.com" {
		t.Errorf("URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.DefaultModel != "qwen3" {
		t.Errorf("DefaultModel = %q", cfg.Backend.DefaultModel)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.UI.HistorySize != 50 {
		t.Errorf("HistorySize = %d", cfg.UI.HistorySize)
	}
	if cfg.Image.DefaultAspectRatio != "16:9" {
		t.Errorf("DefaultAspectRatio = %q", cfg.Image.DefaultAspectRatio)
	}
	// Untouched sections keep defaults
	if !cfg.UI.Markdown {
		t.Error("Markdown default should survive a partial file")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("HAVEN_BACKEND_URL", "http://env-wins:9999")
	t.Setenv("HAVEN_MODEL", "env-model")
	t.Setenv("HAVEN_WATCH_INBOX", "false")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.URL != "http://env-wins:9999" {
		t.Errorf("URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.DefaultModel != "env-model" {
		t.Errorf("DefaultModel = %q", cfg.Backend.DefaultModel)
	}
	if cfg.Attachments.WatchInbox {
		t.Error("HAVEN_WATCH_INBOX=false should disable the watcher")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty backend url", func(c *Config) { c.Backend.URL = "" }},
		{"non-http url", func(c *Config) { c.Backend.URL = "ftp://nope" }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "solarized" }},
		{"bad aspect ratio", func(c *Config) { c.Image.DefaultAspectRatio = "2:7" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.SetDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Backend.DefaultModel = "round-trip"
	cfg.UI.HistorySize = 42
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Backend.DefaultModel != "round-trip" {
		t.Errorf("DefaultModel = %q", loaded.Backend.DefaultModel)
	}
	if loaded.UI.HistorySize != 42 {
		t.Errorf("HistorySize = %d", loaded.UI.HistorySize)
	}
}
