// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/siteassist/internal/widget"
)

// =============================================================================
// TOASTS
// =============================================================================

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestToasts() (*ToastManager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewToastManager()
	m.now = clock.now
	return m, clock
}

func TestToastManager_ImplementsNotifier(t *testing.T) {
	var _ widget.Notifier = NewToastManager()
}

func TestToastManager_NotifyMapsSeverity(t *testing.T) {
	m, _ := newTestToasts()

	m.Notify(widget.Notice{Title: "Cleared", Severity: widget.SeveritySuccess})
	m.Notify(widget.Notice{Title: "Oops", Description: "try again", Severity: widget.SeverityError})

	toasts := m.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, "Oops", toasts[0].Title, "newest first")
	assert.Equal(t, ToastKindError, toasts[0].Kind)
	assert.Equal(t, ErrorToastDuration, toasts[0].Duration)
	assert.Equal(t, ToastKindSuccess, toasts[1].Kind)
	assert.Equal(t, DefaultToastDuration, toasts[1].Duration)
}

func TestKindForSeverity(t *testing.T) {
	tests := []struct {
		sev  widget.Severity
		want ToastKind
	}{
		{widget.SeverityInfo, ToastKindStatus},
		{widget.SeveritySuccess, ToastKindSuccess},
		{widget.SeverityError, ToastKindError},
	}
	for _, tt := range tests {
		if got := KindForSeverity(tt.sev); got != tt.want {
			t.Errorf("KindForSeverity(%v) = %v, want %v", tt.sev, got, tt.want)
		}
	}
}

func TestToastManager_TrimsToMax(t *testing.T) {
	m, _ := newTestToasts()
	for i := 0; i < MaxToasts+2; i++ {
		m.Add("t"+strconv.Itoa(i), "", ToastKindStatus)
	}
	toasts := m.Toasts()
	require.Len(t, toasts, MaxToasts)
	assert.Equal(t, "t"+strconv.Itoa(MaxToasts+1), toasts[0].Title)
}

func TestToastManager_TickExpires(t *testing.T) {
	m, clock := newTestToasts()
	m.Add("status", "", ToastKindStatus)
	m.Add("error", "", ToastKindError)

	clock.t = clock.t.Add(DefaultToastDuration)
	assert.Equal(t, 1, m.Tick())
	assert.Equal(t, "error", m.Toasts()[0].Title)

	clock.t = clock.t.Add(ErrorToastDuration)
	assert.Equal(t, 0, m.Tick())
	assert.Empty(t, m.View(80))
}

func TestToastManager_Dismiss(t *testing.T) {
	m, _ := newTestToasts()
	id := m.Add("a", "", ToastKindStatus)
	m.Add("b", "", ToastKindStatus)

	m.Dismiss(id)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, "b", m.Toasts()[0].Title)

	m.Dismiss(9999)
	assert.Equal(t, 1, m.Len())

	m.DismissAll()
	assert.Equal(t, 0, m.Len())
}

func TestToastManager_View(t *testing.T) {
	m, _ := newTestToasts()
	m.Notify(widget.Notice{Title: "Something went wrong", Description: "Please try again.", Severity: widget.SeverityError})

	view := m.View(80)
	assert.Contains(t, view, "Something went wrong")
	assert.Contains(t, view, "Please try again.")
	assert.Contains(t, view, "6s")
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line " + strconv.Itoa(i)
	}
	return strings.Join(lines, "\n")
}

// drain runs the animation to completion by feeding frames directly.
func drain(t *testing.T, l *MessageList, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 1000 {
			t.Fatal("scroll animation did not settle")
		}
		cmd = l.Update(ScrollFrameMsg{ID: l.animID})
	}
}

func TestMessageList_SnapWhenNotSmooth(t *testing.T) {
	l := NewMessageList(20, 5, false)
	l.SetContent(numberedLines(30))

	cmd := l.ScrollToBottom()
	assert.Nil(t, cmd)
	assert.Equal(t, 25, l.YOffset())
	assert.True(t, l.AtBottom())
	assert.False(t, l.Animating())
}

func TestMessageList_SmoothScrollSettlesOnTarget(t *testing.T) {
	l := NewMessageList(20, 5, true)
	l.SetContent(numberedLines(30))

	cmd := l.ScrollTo(12)
	require.NotNil(t, cmd)
	assert.True(t, l.Animating())
	assert.Equal(t, 0, l.YOffset(), "animation starts from the current offset")

	drain(t, l, cmd)
	assert.Equal(t, 12, l.YOffset())
	assert.False(t, l.Animating())
}

func TestMessageList_ScrollToClamps(t *testing.T) {
	l := NewMessageList(20, 5, false)
	l.SetContent(numberedLines(8))

	l.ScrollTo(100)
	assert.Equal(t, 3, l.YOffset())
	l.ScrollTo(-4)
	assert.Equal(t, 0, l.YOffset())
}

func TestMessageList_ShortContentDoesNotAnimate(t *testing.T) {
	l := NewMessageList(20, 10, true)
	l.SetContent(numberedLines(3))

	assert.Nil(t, l.ScrollToBottom())
	assert.Equal(t, 0, l.YOffset())
}

func TestMessageList_StaleFrameIgnored(t *testing.T) {
	l := NewMessageList(20, 5, true)
	l.SetContent(numberedLines(30))

	l.ScrollTo(20)
	stale := l.animID - 1
	assert.Nil(t, l.Update(ScrollFrameMsg{ID: stale}))
	assert.Equal(t, 0, l.YOffset())
}

func TestMessageList_ManualScrollCancelsAnimation(t *testing.T) {
	l := NewMessageList(20, 5, true)
	l.SetContent(numberedLines(30))

	l.ScrollTo(20)
	id := l.animID
	l.PageDown()

	assert.False(t, l.Animating())
	assert.Equal(t, 5, l.YOffset())
	assert.Nil(t, l.Update(ScrollFrameMsg{ID: id}))
	assert.Equal(t, 5, l.YOffset())
}

func TestMessageList_DisablingSmoothSnaps(t *testing.T) {
	l := NewMessageList(20, 5, true)
	l.SetContent(numberedLines(30))

	l.ScrollTo(20)
	l.SetSmooth(false)
	assert.False(t, l.Animating())
	assert.Equal(t, 20, l.YOffset())
}

func TestMessageList_SetContentKeepsOffset(t *testing.T) {
	l := NewMessageList(20, 5, false)
	l.SetContent(numberedLines(30))
	l.ScrollTo(10)

	l.SetContent(numberedLines(40))
	assert.Equal(t, 10, l.YOffset())
	assert.Contains(t, l.View(), "line 10")
}
