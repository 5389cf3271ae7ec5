// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"
)

func TestResolveTheme_Explicit(t *testing.T) {
	if !ResolveTheme("dark") {
		t.Error("ResolveTheme(dark) = false, want true")
	}
	if !ResolveTheme(" DARK ") {
		t.Error("ResolveTheme is not case-insensitive")
	}
	if ResolveTheme("light") {
		t.Error("ResolveTheme(light) = true, want false")
	}
}

func TestNewTheme_Names(t *testing.T) {
	if got := NewTheme("dark"); !got.IsDark || got.Name != ThemeDark {
		t.Errorf("NewTheme(dark) = %q dark=%v", got.Name, got.IsDark)
	}
	if got := NewTheme("light"); got.IsDark || got.Name != ThemeLight {
		t.Errorf("NewTheme(light) = %q dark=%v", got.Name, got.IsDark)
	}
}

func TestSpinnerConfig_Duration(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{10, 100 * time.Millisecond},
		{4, 250 * time.Millisecond},
		{0, time.Second},
	}
	for _, tt := range tests {
		if got := (SpinnerConfig{FPS: tt.fps}).Duration(); got != tt.want {
			t.Errorf("Duration(fps=%d) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}

func TestSpinnerConfig_Bubbles(t *testing.T) {
	s := DotsSpinner.Bubbles()
	if len(s.Frames) != len(DotsSpinner.Frames) {
		t.Errorf("frames = %d, want %d", len(s.Frames), len(DotsSpinner.Frames))
	}
	if s.FPS != DotsSpinner.Duration() {
		t.Errorf("FPS = %v, want %v", s.FPS, DotsSpinner.Duration())
	}
}

func TestRenderHelpers_IncludeIndicators(t *testing.T) {
	if got := RenderError("boom"); !strings.Contains(got, StatusIndicators.Error) || !strings.Contains(got, "boom") {
		t.Errorf("RenderError = %q", got)
	}
	if got := RenderSuccess("done"); !strings.Contains(got, StatusIndicators.Success) {
		t.Errorf("RenderSuccess = %q", got)
	}
	if got := RenderMuted("quiet"); !strings.Contains(got, "quiet") {
		t.Errorf("RenderMuted = %q", got)
	}
}
