// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared styling for CLI commands.

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/siteassist/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for command titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Purple)

	// LabelStyle is used for field labels.
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(20)

	// ValueStyle is used for regular values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	// SuccessStyle is used for success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	// ErrorStyle is used for errors and failure notices.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// DimStyle is used for hints and secondary text.
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// PromptStyle is the line-mode prompt.
	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// SpeakerStyles label turns in line mode.
	UserSpeakerStyle = lipgloss.NewStyle().
				Foreground(styles.UserLabel).
				Bold(true)
	AssistantSpeakerStyle = lipgloss.NewStyle().
				Foreground(styles.AssistantLabel).
				Bold(true)

	// SeparatorStyle is used for horizontal rules.
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(styles.Overlay)
)

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// RenderSeparator renders a horizontal rule of width columns.
func RenderSeparator(width int) string {
	if width <= 0 {
		width = 60
	}
	return SeparatorStyle.Render(strings.Repeat("-", width))
}

// RenderLabel renders a fixed-width field label.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}

// RenderStatus renders an [OK] or [X] indicator.
func RenderStatus(ok bool) string {
	if ok {
		return SuccessStyle.Render(styles.StatusIndicators.Success)
	}
	return ErrorStyle.Render(styles.StatusIndicators.Error)
}
