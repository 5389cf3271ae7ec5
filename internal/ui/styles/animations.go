// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the configuration for a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Bubbles converts the config into a bubbles spinner definition.
func (s SpinnerConfig) Bubbles() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Duration()}
}

// DotsSpinner is the loading indicator shown while a reply is pending.
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// LineSpinner is the ASCII fallback for narrow panels.
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// =============================================================================
// SCROLL ANIMATION
// =============================================================================

// ScrollFPS is the frame rate of the smooth scroll-to-latest animation.
const ScrollFPS = 60

// ScrollFrequency and ScrollDamping tune the scroll spring. A damping of 1 is
// critically damped and never overshoots.
const (
	ScrollFrequency = 7.0
	ScrollDamping   = 1.0
)
