// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/siteassist/internal/content"
	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/suggest"
	"github.com/jeranaias/siteassist/internal/transport"
	"github.com/jeranaias/siteassist/internal/ui/styles"
	"github.com/jeranaias/siteassist/internal/widget"
)

// =============================================================================
// FIXTURES
// =============================================================================

const welcome = "Hi! See [pricing](/pricing) or [the docs](https://example.com/docs)."

var candidates = []model.Suggestion{
	{Full: "What is a lease?", Short: "Leases"},
	{Full: "How much does it cost?", Short: "Pricing"},
	{Full: "Can tenants pay online?", Short: "Payments"},
}

type recordingRouter struct{ paths []string }

func (r *recordingRouter) Navigate(path string) { r.paths = append(r.paths, path) }

type recordingOpener struct{ raws []string }

func (r *recordingOpener) OpenIsolated(raw string) error {
	r.raws = append(r.raws, raw)
	return nil
}

type fixture struct {
	ctrl   *widget.Controller
	router *recordingRouter
	opener *recordingOpener
	panel  Model
}

func newFixture(t *testing.T, reply string, height int) *fixture {
	t.Helper()
	f := &fixture{router: &recordingRouter{}, opener: &recordingOpener{}}
	f.ctrl = widget.New(widget.Options{
		Completer: transport.CompleterFunc(func(context.Context, []model.Turn) (string, error) {
			return reply, nil
		}),
		Content: widget.StaticContent(content.Content{
			Locale:      "en",
			Welcome:     welcome,
			Suggestions: candidates,
			Copy:        content.DefaultCopy,
		}),
		Selector:        suggest.NewSelector(suggest.NewSeeded(7), suggest.DefaultBatchSize),
		Router:          f.router,
		Opener:          f.opener,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		HashChangeDelay: time.Millisecond,
	})
	f.ctrl.Open()
	f.panel = New(Options{
		Controller: f.ctrl,
		Theme:      styles.NewTheme(styles.ThemeDark),
		Width:      60,
		Height:     height,
	})
	f.panel.Refresh()
	return f
}

func (f *fixture) key(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	f.panel, cmd = f.panel.Update(msg)
	return cmd
}

func (f *fixture) typeText(s string) {
	f.key(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// complete runs cmd, feeds every CompletionMsg it yields to the controller
// and refreshes the panel.
func (f *fixture) complete(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	msgs := run(cmd)
	found := false
	for _, msg := range msgs {
		if cm, ok := msg.(widget.CompletionMsg); ok {
			found = true
			f.ctrl.Update(cm)
		}
	}
	require.True(t, found, "no CompletionMsg produced")
	f.panel.Refresh()
}

// run executes cmd and any batched commands, returning the messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

var (
	tab      = tea.KeyMsg{Type: tea.KeyTab}
	shiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	enter    = tea.KeyMsg{Type: tea.KeyEnter}
	esc      = tea.KeyMsg{Type: tea.KeyEsc}
	ctrlL    = tea.KeyMsg{Type: tea.KeyCtrlL}
)

// =============================================================================
// TESTS
// =============================================================================

func TestPanel_InitialView(t *testing.T) {
	f := newFixture(t, "ok", 24)
	view := f.panel.View()

	assert.Contains(t, view, content.DefaultCopy.Title)
	assert.Contains(t, view, "[Clear]")
	assert.Contains(t, view, "pricing")
	for _, s := range f.ctrl.InitialSuggestions() {
		assert.Contains(t, view, s.Label())
	}
	assert.Equal(t, "input", f.panel.Focused())
}

func TestPanel_TypeAndSubmit(t *testing.T) {
	f := newFixture(t, "A lease is a contract.", 24)

	f.typeText("what is a lease")
	assert.Equal(t, "what is a lease", f.ctrl.Input())

	cmd := f.key(enter)
	require.NotNil(t, cmd)
	assert.True(t, f.ctrl.Loading())
	assert.Empty(t, f.panel.input.Value())
	assert.Contains(t, f.panel.View(), content.DefaultCopy.LoadingLabel)

	f.complete(t, cmd)
	turns := f.ctrl.Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, "what is a lease", turns[1].Content)
	assert.Equal(t, model.RoleAssistant, turns[2].Role)
	assert.Contains(t, f.panel.View(), "A lease is a contract.")
}

func TestPanel_BlankEnterDoesNothing(t *testing.T) {
	f := newFixture(t, "ok", 24)
	f.typeText("   ")

	assert.Nil(t, run(f.key(enter)))
	assert.Len(t, f.ctrl.Turns(), 1)
	assert.False(t, f.ctrl.Loading())
}

func TestPanel_FocusRingOrder(t *testing.T) {
	f := newFixture(t, "ok", 24)

	want := []string{"clear", "link", "link", "suggestion", "suggestion", "input", "clear"}
	for i, w := range want {
		f.key(tab)
		assert.Equal(t, w, f.panel.Focused(), "tab %d", i+1)
	}

	f.key(shiftTab)
	assert.Equal(t, "input", f.panel.Focused())
	f.key(shiftTab)
	assert.Equal(t, "suggestion", f.panel.Focused())
}

func TestPanel_EnterOnSuggestionSubmitsFullPrompt(t *testing.T) {
	f := newFixture(t, "ok", 24)
	initial := f.ctrl.InitialSuggestions()
	require.Len(t, initial, 2)

	f.key(shiftTab)
	cmd := f.key(enter)
	require.NotNil(t, cmd)

	turns := f.ctrl.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, initial[1].Full, turns[1].Content)
	assert.Equal(t, "input", f.panel.Focused())
}

func TestPanel_EnterOnInternalLinkNavigates(t *testing.T) {
	f := newFixture(t, "ok", 24)

	f.key(tab)
	f.key(tab)
	require.Equal(t, "link", f.panel.Focused())

	cmd := f.key(enter)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"/pricing"}, f.router.paths)
	assert.False(t, f.ctrl.IsOpen())

	msgs := run(cmd)
	assert.Contains(t, msgs, widget.HashChangeMsg{Path: "/pricing"})
}

func TestPanel_EnterOnExternalLinkOpens(t *testing.T) {
	f := newFixture(t, "ok", 24)

	f.key(tab)
	f.key(tab)
	f.key(tab)
	require.Equal(t, "link", f.panel.Focused())

	f.key(enter)
	assert.Equal(t, []string{"https://example.com/docs"}, f.opener.raws)
	assert.Empty(t, f.router.paths)
	assert.True(t, f.ctrl.IsOpen())
}

func TestPanel_TypingReturnsFocusToInput(t *testing.T) {
	f := newFixture(t, "ok", 24)
	f.key(tab)
	require.Equal(t, "clear", f.panel.Focused())

	f.typeText("x")
	assert.Equal(t, "input", f.panel.Focused())
	assert.Equal(t, "x", f.ctrl.Input())
}

func TestPanel_EscCloses(t *testing.T) {
	f := newFixture(t, "ok", 24)
	f.key(esc)
	assert.False(t, f.ctrl.IsOpen())
}

func TestPanel_ClearKeyReseeds(t *testing.T) {
	f := newFixture(t, "ok", 24)
	f.typeText("hello")
	f.complete(t, f.key(enter))
	require.Len(t, f.ctrl.Turns(), 3)

	f.key(ctrlL)
	turns := f.ctrl.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, welcome, turns[0].Content)
}

func TestPanel_FollowUpReplacesInitialBatch(t *testing.T) {
	f := newFixture(t, "ok", 24)
	f.typeText("hello")
	f.complete(t, f.key(enter))

	follow, ok := f.ctrl.FollowUp()
	require.True(t, ok)
	assert.Equal(t, []model.Suggestion{follow}, f.panel.visibleSuggestions())
	assert.Contains(t, f.panel.View(), follow.Label())
}

func TestPanel_ScrollsToNewestTurn(t *testing.T) {
	long := strings.Repeat("Another line of the reply.\n\n", 20)
	f := newFixture(t, long, 20)

	f.typeText("tell me everything")
	f.complete(t, f.key(enter))

	require.Len(t, f.panel.turnLines, 3)
	newest := f.panel.turnLines[2]
	assert.Greater(t, newest, 0)

	// Smooth scrolling is off in the fixture, so the move snaps.
	assert.Equal(t, newest, f.panel.list.YOffset())
}

func TestPanel_ResizeClampsToMinimum(t *testing.T) {
	f := newFixture(t, "ok", 24)
	f.panel.SetSize(5, 5)
	assert.Equal(t, MinWidth, f.panel.Width())
	assert.Equal(t, MinHeight, f.panel.Height())
	assert.NotEmpty(t, f.panel.View())
}
