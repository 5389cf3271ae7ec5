// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/siteassist/internal/hostpage"
	"github.com/jeranaias/siteassist/internal/navigation"
	"github.com/jeranaias/siteassist/internal/render"
	"github.com/jeranaias/siteassist/internal/suggest"
	"github.com/jeranaias/siteassist/internal/transport"
	"github.com/jeranaias/siteassist/internal/ui/components"
	"github.com/jeranaias/siteassist/internal/ui/panel"
	"github.com/jeranaias/siteassist/internal/ui/styles"
	"github.com/jeranaias/siteassist/internal/util"
	"github.com/jeranaias/siteassist/internal/widget"
)

// Panel size limits inside the terminal.
const (
	maxPanelWidth  = 60
	maxPanelHeight = 30
)

// =============================================================================
// OPTIONS
// =============================================================================

// Site supplies the widget content and the host pages. *content.Store
// satisfies it.
type Site interface {
	widget.ContentSource
	hostpage.PageSource
}

// Options configure the terminal host.
type Options struct {
	Completer transport.Completer
	Site      Site
	Selector  *suggest.Selector
	Opener    widget.Opener

	Theme        string
	StartPath    string
	StartOpen    bool
	SmoothScroll bool

	HashChangeDelay    time.Duration
	ErrorFlashDuration time.Duration
	RequestTimeout     time.Duration

	// Reloads delivers a value whenever the content catalog was swapped.
	// Optional.
	Reloads <-chan struct{}

	Logger *slog.Logger
}

// ContentReloadedMsg is sent after the content catalog changed on disk.
type ContentReloadedMsg struct{}

// =============================================================================
// KEYS
// =============================================================================

type keyMap struct {
	Open key.Binding
	Back key.Binding
	Quit key.Binding
	Exit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(key.WithKeys("?", "ctrl+o"), key.WithHelp("?", "chat")),
		Back: key.NewBinding(key.WithKeys("backspace", "alt+left"), key.WithHelp("Bksp", "back")),
		Quit: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Exit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the terminal host: a scrollable site page with the assistant
// launcher in the status bar and the panel drawn over the page while open.
type Model struct {
	ctrl    *widget.Controller
	page    *hostpage.Page
	history *navigation.History
	toasts  *components.ToastManager
	panel   panel.Model
	theme   *styles.Theme
	keys    keyMap
	reloads <-chan struct{}
	logger  *slog.Logger

	width        int
	height       int
	toastTicking bool
}

// New wires the controller to the page, history and toasts.
func New(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	theme := styles.NewTheme(opts.Theme)
	history := navigation.NewHistory(opts.StartPath)
	page := hostpage.New(opts.Site, hostpage.Options{Theme: theme.Name, Logger: logger})
	toasts := components.NewToastManager()

	ctrl := widget.New(widget.Options{
		Completer:          opts.Completer,
		Content:            opts.Site,
		Selector:           opts.Selector,
		Notifier:           toasts,
		Router:             history,
		Opener:             opts.Opener,
		Locker:             page,
		Logger:             logger,
		HashChangeDelay:    opts.HashChangeDelay,
		ErrorFlashDuration: opts.ErrorFlashDuration,
		RequestTimeout:     opts.RequestTimeout,
	})

	history.Subscribe(func(path string) {
		if !page.Show(path) {
			logger.Info("page not found", "path", path)
		}
	})
	page.Show(history.Current())

	m := &Model{
		ctrl:    ctrl,
		page:    page,
		history: history,
		toasts:  toasts,
		theme:   theme,
		keys:    defaultKeyMap(),
		reloads: opts.Reloads,
		logger:  logger,
	}
	m.panel = panel.New(panel.Options{
		Controller:   ctrl,
		Theme:        theme,
		Renderer:     render.NewRenderer(render.DefaultStyles()),
		SmoothScroll: opts.SmoothScroll,
	})

	if opts.StartOpen {
		ctrl.Open()
		m.panel.Refresh()
	}
	return m
}

// Init starts the cursor blink and the reload listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.panel.Init(), m.waitForReload())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		if m.ctrl.IsOpen() {
			var cmd tea.Cmd
			m.panel, cmd = m.panel.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			cmds = append(cmds, m.page.Update(msg))
		}

	case widget.CompletionMsg, widget.ErrorFlashDoneMsg:
		cmds = append(cmds, m.ctrl.Update(msg), m.panel.Refresh())

	case widget.HashChangeMsg:
		m.history.DispatchHashChange(msg.Path)

	case ContentReloadedMsg:
		m.page.Refresh()
		cmds = append(cmds, m.panel.Refresh(), m.waitForReload())

	case components.ToastTickMsg:
		if m.toasts.Tick() == 0 {
			m.toastTicking = false
		} else {
			cmds = append(cmds, components.ToastTickCmd())
		}
		return m, tea.Batch(cmds...)

	default:
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.startToastTick())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Exit) {
		m.ctrl.Unmount()
		return tea.Quit
	}

	if m.ctrl.IsOpen() {
		var cmd tea.Cmd
		m.panel, cmd = m.panel.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		m.ctrl.Open()
		return m.panel.Refresh()

	case key.Matches(msg, m.keys.Back):
		m.history.Back()
		return nil

	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Unmount()
		return tea.Quit
	}
	return m.page.Update(msg)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.page.SetSize(width, max(height-1, 1))
	m.panel.SetSize(min(width-2, maxPanelWidth), min(height-2, maxPanelHeight))
}

// startToastTick starts the expiry ticker when a notice arrived.
func (m *Model) startToastTick() tea.Cmd {
	if m.toastTicking || m.toasts.Len() == 0 {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

func (m *Model) waitForReload() tea.Cmd {
	if m.reloads == nil {
		return nil
	}
	ch := m.reloads
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ContentReloadedMsg{}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the page, the status bar and, while open, the panel.
func (m *Model) View() string {
	screen := m.page.View() + "\n" + m.statusBar()

	if m.ctrl.IsOpen() {
		p := m.panel.View()
		x := m.width - lipgloss.Width(p) - 1
		y := m.height - 1 - lipgloss.Height(p)
		screen = overlay(screen, p, x, y)
	}

	if t := m.toasts.View(m.width); t != "" {
		screen = overlay(screen, t, m.width-lipgloss.Width(t)-1, 0)
	}
	return screen
}

func (m *Model) statusBar() string {
	ui := m.ctrl.Copy()

	var launcher string
	if m.ctrl.IsOpen() {
		launcher = m.theme.Launcher.Render(ui.Title)
	} else {
		launcher = m.theme.LauncherTooltip.Render(ui.Tooltip) + " " +
			m.theme.Launcher.Render("? "+ui.Title)
	}

	room := m.width - lipgloss.Width(launcher) - 1
	if room < 1 {
		return launcher
	}
	left := styles.RenderMuted(util.TruncateWidth(m.page.Title()+"  "+m.page.Path(), room))
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(launcher), 1)
	return left + strings.Repeat(" ", gap) + launcher
}

// ===== ACCESSORS =====

// Controller returns the widget controller.
func (m *Model) Controller() *widget.Controller { return m.ctrl }

// Page returns the host page.
func (m *Model) Page() *hostpage.Page { return m.page }

// History returns the navigation history.
func (m *Model) History() *navigation.History { return m.history }

// Toasts returns the toast manager.
func (m *Model) Toasts() *components.ToastManager { return m.toasts }
