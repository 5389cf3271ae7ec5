// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"math"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/siteassist/internal/ui/styles"
)

// =============================================================================
// MESSAGE LIST - Scrollable conversation area with a spring scroll
// =============================================================================

// ScrollFrameMsg advances the scroll animation with the matching ID.
type ScrollFrameMsg struct {
	ID uint64
}

// MessageList is the scrollable conversation area of the panel. ScrollTo
// moves to a line with a critically damped spring, or snaps when smooth
// scrolling is off.
type MessageList struct {
	viewport viewport.Model
	smooth   bool

	spring harmonica.Spring
	pos    float64
	vel    float64
	target int

	// animID identifies the running animation. Frames with another ID are
	// stale and ignored.
	animID    uint64
	animating bool
}

// NewMessageList creates a message list of the given size.
func NewMessageList(width, height int, smooth bool) *MessageList {
	vp := viewport.New(width, height)
	vp.Style = lipgloss.NewStyle()
	vp.MouseWheelEnabled = true

	return &MessageList{
		viewport: vp,
		smooth:   smooth,
		spring:   harmonica.NewSpring(harmonica.FPS(styles.ScrollFPS), styles.ScrollFrequency, styles.ScrollDamping),
	}
}

// SetSize updates the list dimensions.
func (l *MessageList) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	l.viewport.Width = width
	l.viewport.Height = height
	l.viewport.SetYOffset(l.viewport.YOffset)
}

// SetSmooth enables or disables the scroll animation.
func (l *MessageList) SetSmooth(smooth bool) {
	l.smooth = smooth
	if !smooth && l.animating {
		l.stop()
		l.viewport.SetYOffset(l.target)
	}
}

// SetContent replaces the rendered conversation, keeping the offset.
func (l *MessageList) SetContent(s string) {
	l.viewport.SetContent(s)
}

// ScrollTo moves the top of the list to line, clamped to the scroll range.
// The returned command drives the animation; it is nil when the move snaps.
func (l *MessageList) ScrollTo(line int) tea.Cmd {
	l.target = clampInt(line, 0, l.maxOffset())

	if !l.smooth || l.target == l.viewport.YOffset {
		l.stop()
		l.viewport.SetYOffset(l.target)
		return nil
	}

	if !l.animating {
		l.pos = float64(l.viewport.YOffset)
		l.vel = 0
	}
	l.animID++
	l.animating = true
	return l.frame()
}

// ScrollToBottom scrolls to the last line.
func (l *MessageList) ScrollToBottom() tea.Cmd {
	return l.ScrollTo(l.maxOffset())
}

// Update advances the animation on its frames and scrolls on keys and the
// mouse wheel. Any manual scroll cancels a running animation.
func (l *MessageList) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ScrollFrameMsg:
		if !l.animating || msg.ID != l.animID {
			return nil
		}
		l.pos, l.vel = l.spring.Update(l.pos, l.vel, float64(l.target))
		if math.Abs(l.pos-float64(l.target)) < 0.5 && math.Abs(l.vel) < 0.5 {
			l.stop()
			l.viewport.SetYOffset(l.target)
			return nil
		}
		l.viewport.SetYOffset(int(math.Round(l.pos)))
		return l.frame()

	case tea.KeyMsg, tea.MouseMsg:
		before := l.viewport.YOffset
		var cmd tea.Cmd
		l.viewport, cmd = l.viewport.Update(msg)
		if l.viewport.YOffset != before {
			l.stop()
		}
		return cmd
	}
	return nil
}

// LineUp scrolls up by n lines.
func (l *MessageList) LineUp(n int) {
	l.stop()
	l.viewport.LineUp(n)
}

// LineDown scrolls down by n lines.
func (l *MessageList) LineDown(n int) {
	l.stop()
	l.viewport.LineDown(n)
}

// PageUp scrolls up by one page.
func (l *MessageList) PageUp() {
	l.stop()
	l.viewport.ViewUp()
}

// PageDown scrolls down by one page.
func (l *MessageList) PageDown() {
	l.stop()
	l.viewport.ViewDown()
}

// View renders the visible lines.
func (l *MessageList) View() string {
	return l.viewport.View()
}

// YOffset returns the current top line.
func (l *MessageList) YOffset() int { return l.viewport.YOffset }

// Target returns the line the last ScrollTo aimed at.
func (l *MessageList) Target() int { return l.target }

// Animating reports whether a scroll animation is running.
func (l *MessageList) Animating() bool { return l.animating }

// AtBottom reports whether the last line is visible.
func (l *MessageList) AtBottom() bool { return l.viewport.AtBottom() }

// Height returns the visible height.
func (l *MessageList) Height() int { return l.viewport.Height }

func (l *MessageList) maxOffset() int {
	return max(0, l.viewport.TotalLineCount()-l.viewport.Height)
}

func (l *MessageList) stop() {
	l.animating = false
	l.vel = 0
	l.animID++
}

func (l *MessageList) frame() tea.Cmd {
	id := l.animID
	return tea.Tick(time.Second/styles.ScrollFPS, func(time.Time) tea.Msg {
		return ScrollFrameMsg{ID: id}
	})
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
