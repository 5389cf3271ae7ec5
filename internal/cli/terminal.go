// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for the siteassist CLI.
//
// The root command picks the full-screen host only when stdin and stdout are
// terminals; piped sessions fall back to the line-mode host. Colors follow
// NO_COLOR and FORCE_COLOR.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Interactive reports whether the full-screen host can run.
func Interactive() bool {
	return IsTTY() && IsStdoutTTY()
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the narrowest width used for wrapping.
	MinTerminalWidth = 40

	// MaxReadableWidth caps wrapped reply text.
	MaxReadableWidth = 100
)

// GetTerminalWidth returns the stdout width clamped to
// [MinTerminalWidth, MaxReadableWidth].
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	return min(max(width, MinTerminalWidth), MaxReadableWidth)
}

// =============================================================================
// COLOR CONTROL
// =============================================================================

var (
	colorsEnabled     bool
	colorsEnabledOnce sync.Once
)

// ColorsEnabled returns true if colored output should be used.
//
// Priority:
//  1. NO_COLOR (any non-empty value) disables colors
//  2. FORCE_COLOR (any non-empty value) enables colors
//  3. Otherwise colors are enabled when stdout is a terminal
func ColorsEnabled() bool {
	colorsEnabledOnce.Do(func() {
		switch {
		case os.Getenv("NO_COLOR") != "":
			colorsEnabled = false
		case os.Getenv("FORCE_COLOR") != "":
			colorsEnabled = true
		default:
			colorsEnabled = IsStdoutTTY()
		}
	})
	return colorsEnabled
}

// GetColorProfile returns the termenv profile for CLI output.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
