// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/render"
	"github.com/jeranaias/siteassist/internal/ui/components"
	"github.com/jeranaias/siteassist/internal/ui/styles"
	"github.com/jeranaias/siteassist/internal/widget"
)

const (
	// DefaultWidth and DefaultHeight size the panel before the first resize.
	DefaultWidth  = 48
	DefaultHeight = 24

	// MinWidth and MinHeight are the smallest usable panel.
	MinWidth  = 24
	MinHeight = 12

	// InputCharLimit caps a single message.
	InputCharLimit = 2000
)

// =============================================================================
// FOCUS RING
// =============================================================================

type focusKind int

const (
	focusInput focusKind = iota
	focusClear
	focusLink
	focusSuggestion
)

// focusItem is one stop of the Tab ring.
type focusItem struct {
	kind       focusKind
	turn       int
	link       int
	suggestion model.Suggestion
}

var inputFocus = focusItem{kind: focusInput}

// =============================================================================
// MODEL
// =============================================================================

// Options configure a panel.
type Options struct {
	Controller   *widget.Controller
	Theme        *styles.Theme
	Renderer     *render.Renderer
	SmoothScroll bool
	Width        int
	Height       int
}

// Model is the open assistant panel. It draws the controller's conversation
// and forwards user actions to it.
type Model struct {
	ctrl     *widget.Controller
	theme    *styles.Theme
	renderer *render.Renderer
	keys     KeyMap
	help     help.Model

	input   textinput.Model
	spinner spinner.Model
	list    *components.MessageList

	width  int
	height int
	focus  focusItem

	// revision is the controller revision last drawn; a change scrolls to
	// the newest turn.
	revision uint64
	docs     map[string]render.Document
	// turnLines holds the first content line of each turn.
	turnLines []int
}

// New creates a panel for the controller.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(styles.ThemeAuto)
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer(render.DefaultStyles())
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.CharLimit = InputCharLimit
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Bubbles()
	sp.Style = opts.Theme.Spinner

	h := help.New()
	h.Styles.ShortKey = opts.Theme.Help.Bold(true)
	h.Styles.ShortDesc = opts.Theme.Help
	h.Styles.FullKey = opts.Theme.Help.Bold(true)
	h.Styles.FullDesc = opts.Theme.Help

	m := Model{
		ctrl:     opts.Controller,
		theme:    opts.Theme,
		renderer: opts.Renderer,
		keys:     DefaultKeyMap(),
		help:     h,
		input:    ti,
		spinner:  sp,
		list:     components.NewMessageList(opts.Width, opts.Height, opts.SmoothScroll),
		focus:    inputFocus,
		docs:     make(map[string]render.Document),
	}
	if m.ctrl != nil {
		m.input.Placeholder = m.ctrl.Copy().Placeholder
	}
	m.SetSize(opts.Width, opts.Height)
	return m
}

// SetSize sets the outer panel size.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, MinWidth)
	m.height = max(height, MinHeight)
	m.input.Width = m.innerWidth() - 6
	m.help.Width = m.innerWidth()
	m.list.SetSize(m.innerWidth(), m.listHeight())
	m.redraw()
}

// Width returns the outer panel width.
func (m Model) Width() int { return m.width }

// Height returns the outer panel height.
func (m Model) Height() int { return m.height }

// SetSmoothScroll toggles the scroll animation.
func (m *Model) SetSmoothScroll(on bool) { m.list.SetSmooth(on) }

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles input while the panel is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		cmds = append(cmds, m.list.Update(msg))

	case components.ScrollFrameMsg:
		return m, m.list.Update(msg)

	case spinner.TickMsg:
		if m.ctrl.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.Refresh())
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.ctrl.Close()
		return nil

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.Clear()
		return nil

	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return nil

	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return nil

	case key.Matches(msg, m.keys.LineUp):
		m.list.LineUp(1)
		return nil

	case key.Matches(msg, m.keys.LineDown):
		m.list.LineDown(1)
		return nil

	case key.Matches(msg, m.keys.PageUp):
		m.list.PageUp()
		return nil

	case key.Matches(msg, m.keys.PageDown):
		m.list.PageDown()
		return nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.list.SetSize(m.innerWidth(), m.listHeight())
		return nil

	case key.Matches(msg, m.keys.Activate):
		return m.activate()
	}

	// Typing anywhere goes to the input.
	if m.focus.kind != focusInput {
		m.setFocus(inputFocus)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return cmd
}

// activate performs the action of the focused item.
func (m *Model) activate() tea.Cmd {
	switch m.focus.kind {
	case focusClear:
		m.ctrl.Clear()
		return nil

	case focusLink:
		turns := m.ctrl.Turns()
		if m.focus.turn >= len(turns) {
			return nil
		}
		links := m.docs[turns[m.focus.turn].ID].Links()
		if m.focus.link >= len(links) {
			return nil
		}
		return m.ctrl.ActivateLink(links[m.focus.link].Target)

	case focusSuggestion:
		return m.started(m.ctrl.ChooseSuggestion(m.focus.suggestion))

	default:
		m.ctrl.SetInput(m.input.Value())
		return m.started(m.ctrl.SubmitInput())
	}
}

// started resets the input after an accepted submit and starts the spinner.
func (m *Model) started(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	m.input.SetValue("")
	m.setFocus(inputFocus)
	return tea.Batch(cmd, m.spinner.Tick)
}

// Refresh redraws the conversation and, when the controller revision has
// moved, scrolls to the newest turn. Hosts call it after feeding a message
// to the controller.
func (m *Model) Refresh() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	if m.input.Value() != m.ctrl.Input() {
		m.input.SetValue(m.ctrl.Input())
	}
	m.input.Placeholder = m.ctrl.Copy().Placeholder

	rev := m.ctrl.Revision()
	changed := rev != m.revision
	m.revision = rev
	if changed {
		m.pruneDocs()
		m.setFocus(inputFocus)
	}

	m.redraw()
	if !changed || len(m.turnLines) == 0 {
		return nil
	}
	return m.list.ScrollTo(m.turnLines[len(m.turnLines)-1])
}

// =============================================================================
// FOCUS
// =============================================================================

// focusRing lists the focusable items in Tab order: the clear button, every
// link in reading order, the visible suggestions, then the input.
func (m Model) focusRing() []focusItem {
	ring := []focusItem{{kind: focusClear}}

	for i, turn := range m.ctrl.Turns() {
		if !turn.IsAssistant() {
			continue
		}
		for j := range m.docs[turn.ID].Links() {
			ring = append(ring, focusItem{kind: focusLink, turn: i, link: j})
		}
	}
	for _, s := range m.visibleSuggestions() {
		ring = append(ring, focusItem{kind: focusSuggestion, suggestion: s})
	}
	return append(ring, inputFocus)
}

func (m *Model) moveFocus(delta int) {
	ring := m.focusRing()
	cur := len(ring) - 1
	for i, item := range ring {
		if item == m.focus {
			cur = i
			break
		}
	}
	next := (cur + delta + len(ring)) % len(ring)
	m.setFocus(ring[next])
	m.redraw()
}

func (m *Model) setFocus(f focusItem) {
	m.focus = f
	if f.kind == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// visibleSuggestions returns the initial batch until the user has sent a
// message, then the follow-up, if any.
func (m Model) visibleSuggestions() []model.Suggestion {
	for _, t := range m.ctrl.Turns() {
		if t.IsUser() {
			if s, ok := m.ctrl.FollowUp(); ok {
				return []model.Suggestion{s}
			}
			return nil
		}
	}
	return m.ctrl.InitialSuggestions()
}

// document returns the parsed turn, caching by turn ID.
func (m *Model) document(t model.Turn) render.Document {
	if doc, ok := m.docs[t.ID]; ok {
		return doc
	}
	doc := render.Parse(t.Content)
	m.docs[t.ID] = doc
	return doc
}

// pruneDocs drops cached documents of turns that no longer exist.
func (m *Model) pruneDocs() {
	live := make(map[string]bool)
	for _, t := range m.ctrl.Turns() {
		live[t.ID] = true
	}
	for id := range m.docs {
		if !live[id] {
			delete(m.docs, id)
		}
	}
}

// Focused returns a description of the focused item for the status line.
func (m Model) Focused() string {
	switch m.focus.kind {
	case focusClear:
		return "clear"
	case focusLink:
		return "link"
	case focusSuggestion:
		return "suggestion"
	default:
		return "input"
	}
}
