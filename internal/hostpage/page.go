// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hostpage renders the host site's pages behind the assistant widget.
package hostpage

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/siteassist/internal/content"
)

// PageSource looks up pages by path.
type PageSource interface {
	Page(path string) (content.Page, bool)
}

// Options configure a Page.
type Options struct {
	// Theme is "auto", "dark" or "light".
	Theme  string
	Logger *slog.Logger
}

// savedState is what a scroll lock restores on release.
type savedState struct {
	yOffset    int
	width      int
	height     int
	mouseWheel bool
	keyScroll  bool
}

// Page is the scrollable host page.
type Page struct {
	pages  PageSource
	theme  string
	logger *slog.Logger

	path  string
	title string
	body  string
	found bool

	vp        viewport.Model
	width     int
	height    int
	keyScroll bool

	locked  bool
	saved   savedState
	pending *[2]int
}

// New creates a Page showing nothing until Show is called.
func New(pages PageSource, opts Options) *Page {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := opts.Theme
	if theme == "" {
		theme = "auto"
	}

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &Page{
		pages:     pages,
		theme:     theme,
		logger:    logger,
		vp:        vp,
		width:     80,
		height:    20,
		keyScroll: true,
	}
}

// =============================================================================
// CONTENT
// =============================================================================

// Show renders the page at path and scrolls to the top. It reports whether
// the path exists; unknown paths show a not-found page.
func (p *Page) Show(path string) bool {
	p.path = path
	pg, ok := p.pages.Page(path)
	if !ok {
		pg = content.Page{
			Path:  path,
			Title: "Not found",
			Body:  fmt.Sprintf("# Not found\n\nThere is no page at `%s`.", path),
		}
	}
	p.title = pg.Title
	p.body = pg.Body
	p.found = ok
	p.render()
	p.vp.GotoTop()
	return ok
}

// Refresh re-renders the current page from the source, keeping the offset.
func (p *Page) Refresh() {
	if p.path == "" {
		return
	}
	offset := p.vp.YOffset
	if pg, ok := p.pages.Page(p.path); ok {
		p.title = pg.Title
		p.body = pg.Body
		p.found = true
	}
	p.render()
	p.vp.SetYOffset(offset)
}

func (p *Page) render() {
	out, err := p.renderMarkdown(p.body, p.width)
	if err != nil {
		p.logger.Warn("page render failed", "path", p.path, "error", err)
		out = p.body
	}
	p.vp.SetContent(strings.TrimRight(out, "\n"))
}

func (p *Page) renderMarkdown(body string, width int) (string, error) {
	style := glamour.WithAutoStyle()
	if p.theme == "dark" || p.theme == "light" {
		style = glamour.WithStandardStyle(p.theme)
	}
	wrap := width - 2
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		return "", err
	}
	return r.Render(body)
}

// =============================================================================
// LAYOUT
// =============================================================================

// SetSize resizes the page. While locked the new size is held back and
// applied after the lock is released.
func (p *Page) SetSize(width, height int) {
	if p.locked {
		p.pending = &[2]int{width, height}
		return
	}
	p.applySize(width, height)
}

func (p *Page) applySize(width, height int) {
	widthChanged := width != p.width
	p.width = width
	p.height = height
	p.vp.Width = width
	p.vp.Height = height
	if widthChanged && p.path != "" {
		offset := p.vp.YOffset
		p.render()
		p.vp.SetYOffset(offset)
	}
}

// =============================================================================
// SCROLL LOCK
// =============================================================================

// Lock freezes the page offset and width and ignores scroll input until the
// returned func is called. The release func is idempotent. Only one lock may
// be held; a second Lock returns a release that does nothing.
func (p *Page) Lock() func() {
	if p.locked {
		p.logger.Warn("page scroll lock already held")
		return func() {}
	}

	p.locked = true
	p.saved = savedState{
		yOffset:    p.vp.YOffset,
		width:      p.width,
		height:     p.height,
		mouseWheel: p.vp.MouseWheelEnabled,
		keyScroll:  p.keyScroll,
	}
	p.vp.MouseWheelEnabled = false
	p.keyScroll = false

	var once sync.Once
	return func() { once.Do(p.unlock) }
}

func (p *Page) unlock() {
	s := p.saved
	p.locked = false
	p.width = s.width
	p.height = s.height
	p.vp.Width = s.width
	p.vp.Height = s.height
	p.vp.MouseWheelEnabled = s.mouseWheel
	p.keyScroll = s.keyScroll
	p.vp.SetYOffset(s.yOffset)

	if p.pending != nil {
		w, h := p.pending[0], p.pending[1]
		p.pending = nil
		p.applySize(w, h)
	}
}

// Locked returns true while a scroll lock is held.
func (p *Page) Locked() bool {
	return p.locked
}

// SetScrollEnabled turns keyboard and mouse scrolling on or off. Ignored
// while locked.
func (p *Page) SetScrollEnabled(enabled bool) {
	if p.locked {
		return
	}
	p.keyScroll = enabled
	p.vp.MouseWheelEnabled = enabled
}

// ScrollEnabled reports whether scroll input is currently honoured.
func (p *Page) ScrollEnabled() bool {
	return p.keyScroll && !p.locked
}

// =============================================================================
// BUBBLE TEA
// =============================================================================

// Update scrolls the page on key and mouse input unless locked.
func (p *Page) Update(msg tea.Msg) tea.Cmd {
	switch msg.(type) {
	case tea.KeyMsg:
		if !p.keyScroll || p.locked {
			return nil
		}
	case tea.MouseMsg:
		if p.locked {
			return nil
		}
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

// View renders the visible part of the page.
func (p *Page) View() string {
	return p.vp.View()
}

// ===== ACCESSORS =====

// Path returns the current path.
func (p *Page) Path() string { return p.path }

// Title returns the current page title.
func (p *Page) Title() string { return p.title }

// Found reports whether the current path exists in the source.
func (p *Page) Found() bool { return p.found }

// YOffset returns the scroll offset.
func (p *Page) YOffset() int { return p.vp.YOffset }

// Width returns the page width.
func (p *Page) Width() int { return p.width }

// ScrollPercent returns how far the page is scrolled, 0 to 1.
func (p *Page) ScrollPercent() float64 { return p.vp.ScrollPercent() }
