// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/siteassist/internal/ui/styles"
	"github.com/jeranaias/siteassist/internal/widget"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastKindStatus ToastKind = iota
	ToastKindError
	ToastKindSuccess
)

// KindForSeverity maps a notice severity to a toast kind.
func KindForSeverity(s widget.Severity) ToastKind {
	switch s {
	case widget.SeverityError:
		return ToastKindError
	case widget.SeveritySuccess:
		return ToastKindSuccess
	default:
		return ToastKindStatus
	}
}

// DefaultToastDuration is the auto-dismiss duration for status and success
// toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts.
const ErrorToastDuration = 6 * time.Second

// MaxToasts is the number of toasts kept at once.
const MaxToasts = 3

// Toast is a non-blocking notification drawn over the bottom-right corner.
type Toast struct {
	ID          int
	Title       string
	Description string
	Kind        ToastKind
	CreatedAt   time.Time
	Duration    time.Duration
}

// expired reports whether the toast should be dismissed at now.
func (t Toast) expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// remaining returns the time left before auto-dismiss.
func (t Toast) remaining(now time.Time) time.Duration {
	left := t.Duration - now.Sub(t.CreatedAt)
	if left < 0 {
		return 0
	}
	return left
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the active toasts. It implements widget.Notifier, so the
// controller's notices land here directly.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
	now       func() time.Time
}

// NewToastManager creates a new toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{
		nextID:    1,
		maxToasts: MaxToasts,
		now:       time.Now,
	}
}

// Notify adds a toast for the notice.
func (m *ToastManager) Notify(n widget.Notice) {
	m.Add(n.Title, n.Description, KindForSeverity(n.Severity))
}

// Add adds a toast and returns its ID. Newest toasts come first.
func (m *ToastManager) Add(title, description string, kind ToastKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	duration := DefaultToastDuration
	if kind == ToastKindError {
		duration = ErrorToastDuration
	}

	t := Toast{
		ID:          m.nextID,
		Title:       title,
		Description: description,
		Kind:        kind,
		CreatedAt:   m.now(),
		Duration:    duration,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return t.ID
}

// Dismiss removes a toast by ID.
func (m *ToastManager) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll removes every toast.
func (m *ToastManager) DismissAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// Tick drops expired toasts and returns how many remain.
func (m *ToastManager) Tick() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.expired(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return len(m.toasts)
}

// Toasts returns a copy of the active toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Len returns the number of active toasts.
func (m *ToastManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickInterval is how often toasts are checked for expiry.
const ToastTickInterval = 250 * time.Millisecond

// ToastTickCmd returns a command that ticks toasts.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(ToastTickInterval, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// View renders the active toasts as a right-aligned stack.
func (m *ToastManager) View(width int) string {
	toasts := m.Toasts()
	if len(toasts) == 0 {
		return ""
	}
	now := m.now()

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t, width, now))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func renderToast(t Toast, width int, now time.Time) string {
	maxWidth := 48
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	var color lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastKindError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastKindSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Cyan, styles.StatusIndicators.Info
	}

	inner := maxWidth - 4
	title := lipgloss.NewStyle().Foreground(color).Bold(true).
		Render(runewidth.Truncate(icon+" "+t.Title, inner, "…"))

	body := title
	if t.Description != "" {
		body += "\n" + lipgloss.NewStyle().
			Foreground(styles.TextPrimary).
			Width(inner).
			Render(t.Description)
	}

	if secs := int(t.remaining(now).Seconds()); secs > 0 {
		body += "\n" + lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Render(strconv.Itoa(secs)+"s")
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(body)
}
