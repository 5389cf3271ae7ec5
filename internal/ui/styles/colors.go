// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the siteassist host.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple is the assistant accent.
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan is the brand color, used for focus and the launcher.
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald marks success notices.
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose marks errors.
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber marks inline code and warnings.
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACES
// =============================================================================

// Surface is the panel background.
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// SurfaceDim is used for code spans, toasts and the header strip.
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay is used for borders and separators.
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// TEXT
// =============================================================================

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// =============================================================================
// CONVERSATION
// =============================================================================

// UserLabel and AssistantLabel color the role line above each turn.
var UserLabel = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
var AssistantLabel = Purple

// UserTurnBorder and AssistantTurnBorder color the left bar of each turn.
var UserTurnBorder = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"}
var AssistantTurnBorder = lipgloss.AdaptiveColor{Light: "#C4B5FD", Dark: "#A78BFA"}

// FocusRing marks the focused suggestion or link.
var FocusRing = Cyan

// LinkColor is the link foreground. Links are also underlined.
var LinkColor = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet holds ASCII shapes shown next to colored status text, so
// severity does not depend on color alone.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Info    string
	Pending string
}

// StatusIndicators are the indicators used by toasts and the panel header.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Info:    "[i]",
	Pending: "[ ]",
}

// RenderError renders an error line with its indicator.
func RenderError(message string) string {
	return lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true).
		Render(StatusIndicators.Error + " " + message)
}

// RenderSuccess renders a success line with its indicator.
func RenderSuccess(message string) string {
	return lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true).
		Render(StatusIndicators.Success + " " + message)
}

// RenderMuted renders secondary text.
func RenderMuted(message string) string {
	return lipgloss.NewStyle().Foreground(TextMuted).Render(message)
}
