// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds every style the haven views render with, initialized once
// at startup from the detected terminal capabilities.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// Header / status
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	PrivateTag  lipgloss.Style

	// Message bubbles
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	MessageMeta     lipgloss.Style

	// Activity stream
	ActivityBox      lipgloss.Style
	Reasoning        lipgloss.Style
	ReasoningActive  lipgloss.Style
	ToolRunning      lipgloss.Style
	ToolCompleted    lipgloss.Style
	ToolFailed       lipgloss.Style
	ActivitySummary  lipgloss.Style
	ActivityBare     lipgloss.Style

	// Composer
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	QuoteBanner    lipgloss.Style
	AttachmentChip lipgloss.Style
	UploadBar      lipgloss.Style
	RecordingTag   lipgloss.Style

	// Feedback
	Error  lipgloss.Style
	Notice lipgloss.Style
	Help   lipgloss.Style
}

// SetVariant forces the light or dark rendering variant. Adaptive
// colors resolve against this instead of background detection, so it
// must run before any style renders.
func SetVariant(variant string) {
	lipgloss.SetHasDarkBackground(variant != "light")
}

// NewTheme creates the theme from detected terminal capabilities.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.PrivateTag = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)

	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(SystemBubbleBorder).
		Padding(0, 1)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Activity stream
	t.ActivityBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Violet).
		PaddingLeft(1)

	t.Reasoning = lipgloss.NewStyle().
		Foreground(ReasoningFg).
		Italic(true)

	t.ReasoningActive = lipgloss.NewStyle().
		Foreground(Violet).
		Italic(true).
		Bold(true)

	t.ToolRunning = lipgloss.NewStyle().
		Foreground(ToolRunningFg)

	t.ToolCompleted = lipgloss.NewStyle().
		Foreground(Emerald)

	t.ToolFailed = lipgloss.NewStyle().
		Foreground(Rose)

	t.ActivitySummary = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ActivityBare = lipgloss.NewStyle().
		Foreground(ReasoningFg).
		Italic(true).
		PaddingLeft(2)

	// Composer
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.QuoteBanner = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Indigo).
		PaddingLeft(1)

	t.AttachmentChip = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.UploadBar = lipgloss.NewStyle().
		Foreground(Teal)

	t.RecordingTag = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	// Feedback
	t.Error = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.Notice = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize records the current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
