// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget implements the conversational assistant controller.
package widget

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/siteassist/internal/content"
	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/render"
	"github.com/jeranaias/siteassist/internal/suggest"
	"github.com/jeranaias/siteassist/internal/transport"
)

const (
	// DefaultHashChangeDelay is the wait between an internal navigation and
	// the synthetic HashChangeMsg. Tunable; nothing depends on the exact value.
	DefaultHashChangeDelay = 100 * time.Millisecond

	// DefaultErrorFlashDuration is how long OpenError lasts after a failure.
	DefaultErrorFlashDuration = 1500 * time.Millisecond
)

// Options configure a Controller. Nil collaborators are replaced by no-ops.
type Options struct {
	Completer transport.Completer
	Content   ContentSource
	Selector  *suggest.Selector
	Notifier  Notifier
	Router    Router
	Opener    Opener
	Locker    ScrollLocker
	Logger    *slog.Logger

	HashChangeDelay    time.Duration
	ErrorFlashDuration time.Duration
	// RequestTimeout bounds each completion call (0 = the Completer's own).
	RequestTimeout time.Duration
}

// Controller is the assistant widget state machine. It is not safe for
// concurrent use; call it from the Bubble Tea update loop.
type Controller struct {
	completer transport.Completer
	content   ContentSource
	selector  *suggest.Selector
	notifier  Notifier
	router    Router
	opener    Opener
	locker    ScrollLocker
	logger    *slog.Logger

	hashChangeDelay time.Duration
	errorFlash      time.Duration
	requestTimeout  time.Duration

	conv     *model.Conversation
	open     bool
	mounted  bool
	loading  bool
	flashing bool
	input    string
	initial  []model.Suggestion
	followUp *model.Suggestion

	// seq identifies the outstanding completion; flashSeq the current flash.
	seq      uint64
	flashSeq uint64
	revision uint64

	// release is the single owner reference to the scroll lock.
	release func()
}

// New creates a mounted, closed Controller.
func New(opts Options) *Controller {
	c := &Controller{
		completer:       opts.Completer,
		content:         opts.Content,
		selector:        opts.Selector,
		notifier:        opts.Notifier,
		router:          opts.Router,
		opener:          opts.Opener,
		locker:          opts.Locker,
		logger:          opts.Logger,
		hashChangeDelay: opts.HashChangeDelay,
		errorFlash:      opts.ErrorFlashDuration,
		requestTimeout:  opts.RequestTimeout,
		conv:            model.NewConversation(),
		mounted:         true,
	}

	if c.completer == nil {
		c.completer = transport.CompleterFunc(func(context.Context, []model.Turn) (string, error) {
			return "", transport.ErrNotConfigured
		})
	}
	if c.content == nil {
		c.content = StaticContent(content.Content{Copy: content.DefaultCopy})
		if cat, err := content.Default(); err == nil {
			c.content = StaticContent(cat.Resolve(""))
		}
	}
	if c.selector == nil {
		c.selector = suggest.NewSelector(nil, suggest.DefaultBatchSize)
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.router == nil {
		c.router = nopRouter{}
	}
	if c.opener == nil {
		c.opener = nopOpener{}
	}
	if c.locker == nil {
		c.locker = NopLocker{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.hashChangeDelay <= 0 {
		c.hashChangeDelay = DefaultHashChangeDelay
	}
	if c.errorFlash <= 0 {
		c.errorFlash = DefaultErrorFlashDuration
	}
	return c
}

// =============================================================================
// OPEN / CLOSE / UNMOUNT
// =============================================================================

// Open shows the widget and acquires the scroll lock. The first open of an
// empty conversation seeds the welcome turn and an initial suggestion batch.
func (c *Controller) Open() {
	if !c.mounted || c.open {
		return
	}
	c.open = true
	c.release = c.locker.Lock()

	if c.conv.IsEmpty() {
		c.seed()
		c.logger.Debug("widget seeded", "suggestions", len(c.initial))
	}
}

// Close hides the widget and releases the scroll lock. The conversation and
// suggestions are kept, and an outstanding completion is not cancelled.
func (c *Controller) Close() {
	if !c.open {
		return
	}
	c.open = false
	c.releaseLock()
}

// Toggle opens a closed widget and closes an open one.
func (c *Controller) Toggle() {
	if c.open {
		c.Close()
	} else {
		c.Open()
	}
}

// Unmount tears the controller down. Late completion results are dropped
// from now on.
func (c *Controller) Unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false
	c.open = false
	c.releaseLock()
	if c.loading {
		c.logger.Debug("unmounted with completion outstanding", "seq", c.seq)
	}
}

func (c *Controller) releaseLock() {
	if c.release != nil {
		c.release()
		c.release = nil
	}
}

// seed resets the conversation to the welcome turn and draws fresh suggestions.
func (c *Controller) seed() {
	cur := c.content.Content()
	c.conv.Reset(cur.Welcome)
	c.initial = c.selector.Initial(cur.Suggestions)
	c.followUp = nil
	c.flashing = false
	c.revision++
}

// =============================================================================
// SUBMIT
// =============================================================================

// SetInput replaces the input buffer.
func (c *Controller) SetInput(s string) {
	c.input = s
}

// Input returns the input buffer.
func (c *Controller) Input() string {
	return c.input
}

// SubmitInput submits the input buffer.
func (c *Controller) SubmitInput() tea.Cmd {
	return c.Submit(c.input)
}

// ChooseSuggestion submits the suggestion's full prompt.
func (c *Controller) ChooseSuggestion(s model.Suggestion) tea.Cmd {
	return c.Submit(s.Full)
}

// Submit appends a user turn and returns the command that sends the whole
// conversation to the completer. Blank text, a closed or unmounted widget
// and an outstanding completion all make Submit a no-op returning nil.
func (c *Controller) Submit(text string) tea.Cmd {
	if !c.mounted || !c.open || c.loading {
		return nil
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	c.conv.Append(model.RoleUser, trimmed)
	c.input = ""
	c.followUp = nil
	c.flashing = false
	c.loading = true
	c.seq++
	c.revision++

	seq := c.seq
	history := c.conv.Turns()
	completer := c.completer
	timeout := c.requestTimeout

	c.logger.Debug("completion started", "seq", seq, "turns", len(history))

	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		reply, err := completer.Complete(ctx, history)
		return CompletionMsg{Seq: seq, Content: reply, Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update applies controller messages and returns any follow-up command.
// Other message types are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case CompletionMsg:
		return c.handleCompletion(msg)

	case ErrorFlashDoneMsg:
		if msg.Seq == c.flashSeq {
			c.flashing = false
		}
	}
	return nil
}

func (c *Controller) handleCompletion(msg CompletionMsg) tea.Cmd {
	if !c.mounted {
		c.logger.Debug("dropping completion after unmount", "seq", msg.Seq)
		return nil
	}
	if !c.loading || msg.Seq != c.seq {
		c.logger.Debug("dropping stale completion", "seq", msg.Seq, "current", c.seq)
		return nil
	}
	c.loading = false

	if msg.Err != nil {
		c.logger.Warn("completion failed", "seq", msg.Seq, "kind", errorKind(msg.Err), "error", msg.Err)

		ui := c.content.Content().Copy
		c.notifier.Notify(Notice{
			Title:       ui.ErrorTitle,
			Description: ui.ErrorDescription,
			Severity:    SeverityError,
		})

		c.flashing = true
		c.flashSeq++
		flashSeq := c.flashSeq
		return tea.Tick(c.errorFlash, func(time.Time) tea.Msg {
			return ErrorFlashDoneMsg{Seq: flashSeq}
		})
	}

	c.conv.Append(model.RoleAssistant, msg.Content)
	c.revision++
	if s, ok := c.selector.FollowUp(c.content.Content().Suggestions); ok {
		c.followUp = &s
	}
	c.logger.Debug("completion applied", "seq", msg.Seq, "turns", c.conv.Len())
	return nil
}

// errorKind names the failure subtype for logs.
func errorKind(err error) string {
	var apiErr *transport.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, transport.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, transport.ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, transport.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, transport.ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &apiErr):
		return "status"
	default:
		return "network"
	}
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear discards the conversation, reseeds the welcome turn and a fresh
// suggestion batch, and confirms with a success notice. Ignored while closed
// or while a completion is outstanding.
func (c *Controller) Clear() {
	if !c.mounted || !c.open || c.loading {
		return
	}
	c.seed()

	ui := c.content.Content().Copy
	c.notifier.Notify(Notice{
		Title:       ui.ClearedTitle,
		Description: ui.ClearedDescription,
		Severity:    SeveritySuccess,
	})
}

// =============================================================================
// LINKS
// =============================================================================

// ActivateLink follows a link from an assistant turn. Internal targets close
// the widget, navigate through the Router and schedule a HashChangeMsg.
// Everything else is handed to the Opener unmodified. An unmounted
// controller ignores links.
func (c *Controller) ActivateLink(t render.Target) tea.Cmd {
	if !c.mounted {
		return nil
	}
	if t.Kind == render.Internal {
		path := t.Path()
		c.Close()
		c.router.Navigate(path)
		return tea.Tick(c.hashChangeDelay, func(time.Time) tea.Msg {
			return HashChangeMsg{Path: path}
		})
	}

	if err := c.opener.OpenIsolated(t.Raw); err != nil {
		c.logger.Warn("failed to open link", "kind", t.Kind.String(), "error", err)
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current state.
func (c *Controller) State() State {
	switch {
	case !c.open:
		return Closed
	case c.loading:
		return OpenLoading
	case c.flashing:
		return OpenError
	case c.conv.IsEmpty():
		return OpenEmpty
	default:
		return OpenIdle
	}
}

// IsOpen returns true while the widget is shown.
func (c *Controller) IsOpen() bool {
	return c.open
}

// Loading returns true exactly while a completion call is outstanding.
func (c *Controller) Loading() bool {
	return c.loading
}

// Mounted returns false after Unmount.
func (c *Controller) Mounted() bool {
	return c.mounted
}

// Turns returns a copy of the conversation.
func (c *Controller) Turns() []model.Turn {
	return c.conv.Turns()
}

// InitialSuggestions returns the current initial batch.
func (c *Controller) InitialSuggestions() []model.Suggestion {
	out := make([]model.Suggestion, len(c.initial))
	copy(out, c.initial)
	return out
}

// FollowUp returns the follow-up suggestion, if one is set.
func (c *Controller) FollowUp() (model.Suggestion, bool) {
	if c.followUp == nil {
		return model.Suggestion{}, false
	}
	return *c.followUp, true
}

// Revision increments on every conversation append or reset.
func (c *Controller) Revision() uint64 {
	return c.revision
}

// Copy returns the UI copy for the current locale.
func (c *Controller) Copy() content.UICopy {
	return c.content.Content().Copy
}
