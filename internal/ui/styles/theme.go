// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by ResolveTheme.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds the styled components of the terminal host.
type Theme struct {
	// Name is the resolved theme, "dark" or "light".
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAUNCHER
	// ==========================================================================

	Launcher        lipgloss.Style
	LauncherTooltip lipgloss.Style

	// ==========================================================================
	// PANEL
	// ==========================================================================

	Panel        lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelHeader  lipgloss.Style
	ClearButton  lipgloss.Style
	ClearFocused lipgloss.Style

	// ==========================================================================
	// CONVERSATION
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserTurn       lipgloss.Style
	AssistantTurn  lipgloss.Style

	// ==========================================================================
	// SUGGESTIONS AND INPUT
	// ==========================================================================

	Suggestion        lipgloss.Style
	SuggestionFocused lipgloss.Style
	InputBox          lipgloss.Style
	InputBoxFocused   lipgloss.Style
	InputPrompt       lipgloss.Style
	Spinner           lipgloss.Style
	LoadingText       lipgloss.Style
	Help              lipgloss.Style
}

// NewTheme resolves name and builds the styles. An unknown name behaves like
// "auto", which asks the terminal for its background.
func NewTheme(name string) *Theme {
	isDark := ResolveTheme(name)
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		Name:         ThemeLight,
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	if isDark {
		t.Name = ThemeDark
	}
	t.initStyles()
	return t
}

// ResolveTheme reports whether name selects a dark background.
func ResolveTheme(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

func (t *Theme) initStyles() {
	// Launcher
	t.Launcher = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 2)

	t.LauncherTooltip = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Panel
	t.Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.PanelTitle = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.PanelHeader = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)

	t.ClearButton = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ClearFocused = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(FocusRing).
		Bold(true)

	// Conversation
	t.UserLabel = lipgloss.NewStyle().
		Foreground(UserLabel).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(AssistantLabel).
		Bold(true)

	t.UserTurn = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(UserTurnBorder).
		PaddingLeft(1)

	t.AssistantTurn = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(AssistantTurnBorder).
		PaddingLeft(1)

	// Suggestions
	t.Suggestion = lipgloss.NewStyle().
		Foreground(Cyan).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SuggestionFocused = t.Suggestion.
		BorderForeground(FocusRing).
		Bold(true)

	// Input
	t.InputBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputBoxFocused = t.InputBox.
		BorderForeground(FocusRing)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.LoadingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)
}
