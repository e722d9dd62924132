// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 0, ""},
		{"héllo wörld", 8, "héllo..."},
		{"ab", 2, "ab"},
		{"abcd", 3, "abc"},
	}

	for _, tc := range tests {
		got := TruncateRunes(tc.input, tc.max)
		if got != tc.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.max, got, tc.want)
		}
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK characters are two columns wide
	got := TruncateWidth("日本語テスト", 6)
	if StringWidth(got) > 6 {
		t.Errorf("TruncateWidth produced width %d, want <= 6", StringWidth(got))
	}

	if TruncateWidth("short", 80) != "short" {
		t.Error("TruncateWidth should not modify strings within the limit")
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight(ab, 5) = %q", got)
	}
	if got := PadRight("abcdef", 3); got != "abcdef" {
		t.Errorf("PadRight should not truncate, got %q", got)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"one\ntwo", "one"},
		{"  spaced  ", "spaced"},
		{"single", "single"},
		{"\nleading", ""},
	}

	for _, tc := range tests {
		if got := FirstLine(tc.input); got != tc.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.txt")

	if err := AtomicWriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want %q", data, "payload")
	}

	// Overwrite must replace, not append
	if err := AtomicWriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("content after overwrite = %q, want %q", data, "v2")
	}
}
