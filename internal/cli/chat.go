// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/siteassist/internal/config"
	"github.com/jeranaias/siteassist/internal/content"
	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/navigation"
	"github.com/jeranaias/siteassist/internal/render"
	"github.com/jeranaias/siteassist/internal/suggest"
	"github.com/jeranaias/siteassist/internal/transport"
	"github.com/jeranaias/siteassist/internal/util"
	"github.com/jeranaias/siteassist/internal/widget"
)

// lineErrorFlash is the error flash in line mode, where nothing is drawn
// between prompts.
const lineErrorFlash = time.Millisecond

func newChatCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant line by line",
		Long: `Start a line-mode conversation with the assistant.

Type a question and press Enter. Commands:
  /suggest      show suggested questions
  /pick N       ask suggestion N
  /links        list links in the last reply
  /open N       follow link N
  /page         show the current page
  /back         go back one page
  /clear        start over
  /quit         leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLineChat(cmd, st)
		},
	}
}

// =============================================================================
// LINE HOST
// =============================================================================

// lineHostOptions configure a lineHost.
type lineHostOptions struct {
	Completer       transport.Completer
	Store           *content.Store
	Selector        *suggest.Selector
	Opener          widget.Opener
	Out             io.Writer
	Width           int
	StartPath       string
	HashChangeDelay time.Duration
	RequestTimeout  time.Duration
	Logger          *slog.Logger
}

// lineHost drives a widget controller from typed lines. Commands returned by
// the controller are executed synchronously.
type lineHost struct {
	ctrl     *widget.Controller
	history  *navigation.History
	store    *content.Store
	renderer *render.Renderer
	out      io.Writer
	width    int
}

func newLineHost(opts lineHostOptions) *lineHost {
	h := &lineHost{
		history:  navigation.NewHistory(opts.StartPath),
		store:    opts.Store,
		renderer: render.NewRenderer(render.DefaultStyles()),
		out:      opts.Out,
		width:    opts.Width,
	}
	if h.width <= 0 {
		h.width = DefaultTerminalWidth
	}

	h.ctrl = widget.New(widget.Options{
		Completer:          opts.Completer,
		Content:            opts.Store,
		Selector:           opts.Selector,
		Notifier:           widget.NotifierFunc(h.notify),
		Router:             h.history,
		Opener:             opts.Opener,
		Locker:             widget.NopLocker{},
		Logger:             opts.Logger,
		HashChangeDelay:    opts.HashChangeDelay,
		ErrorFlashDuration: lineErrorFlash,
		RequestTimeout:     opts.RequestTimeout,
	})
	h.history.Subscribe(h.showPage)
	return h
}

// start opens the widget and prints the welcome and suggestions.
func (h *lineHost) start() {
	h.ctrl.Open()
	fmt.Fprintln(h.out, TitleStyle.Render(h.ctrl.Copy().Title))
	for _, t := range h.ctrl.Turns() {
		h.printTurn(t)
	}
	h.printSuggestions()
}

// handle processes one line and reports whether the session should end.
func (h *lineHost) handle(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if strings.HasPrefix(input, "/") {
		return h.command(input)
	}
	h.ctrl.SetInput(input)
	h.submit(h.ctrl.SubmitInput())
	return false
}

func (h *lineHost) command(input string) bool {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit", "/q":
		h.ctrl.Unmount()
		return true

	case "/help", "/?":
		fmt.Fprintln(h.out, DimStyle.Render("/suggest  /pick N  /links  /open N  /page  /back  /clear  /quit"))

	case "/clear":
		if h.ctrl.Loading() {
			return false
		}
		h.ctrl.Clear()
		for _, t := range h.ctrl.Turns() {
			h.printTurn(t)
		}
		h.printSuggestions()

	case "/suggest":
		h.printSuggestions()

	case "/pick":
		suggestions := h.visibleSuggestions()
		n, ok := h.index(arg, len(suggestions))
		if !ok {
			return false
		}
		s := suggestions[n]
		fmt.Fprintf(h.out, "%s %s\n", UserSpeakerStyle.Render(model.RoleUser.DisplayName()+":"), s.Full)
		h.submit(h.ctrl.ChooseSuggestion(s))

	case "/links":
		h.printLinks()

	case "/open":
		links := h.lastLinks()
		n, ok := h.index(arg, len(links))
		if !ok {
			return false
		}
		h.run(h.ctrl.ActivateLink(links[n].Target))
		if !h.ctrl.IsOpen() {
			// Internal navigation closes the widget; line mode keeps talking.
			h.ctrl.Open()
		}

	case "/page":
		h.showPage(h.history.Current())

	case "/back":
		if !h.history.Back() {
			fmt.Fprintln(h.out, DimStyle.Render("Already on the first page."))
		}

	default:
		fmt.Fprintf(h.out, "%s unknown command %s (try /help)\n", ErrorStyle.Render("[X]"), name)
	}
	return false
}

// submit runs an accepted submission and prints the reply.
func (h *lineHost) submit(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	before := len(h.ctrl.Turns())
	fmt.Fprintln(h.out, DimStyle.Render(h.ctrl.Copy().LoadingLabel+"..."))

	h.run(cmd)

	turns := h.ctrl.Turns()
	if len(turns) > before {
		h.printTurn(turns[len(turns)-1])
		h.printSuggestions()
	}
}

// run executes cmd and feeds the resulting messages back.
func (h *lineHost) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	case widget.CompletionMsg, widget.ErrorFlashDoneMsg:
		h.run(h.ctrl.Update(msg))
	case widget.HashChangeMsg:
		h.history.DispatchHashChange(msg.Path)
	}
}

// =============================================================================
// OUTPUT
// =============================================================================

func (h *lineHost) printTurn(t model.Turn) {
	if t.IsUser() {
		fmt.Fprintf(h.out, "%s %s\n", UserSpeakerStyle.Render(t.Role.DisplayName()+":"), t.Content)
		return
	}
	fmt.Fprintln(h.out, AssistantSpeakerStyle.Render(h.ctrl.Copy().Title+":"))
	fmt.Fprintln(h.out, h.renderer.RenderMarkdown(t.Content, h.width))
}

func (h *lineHost) visibleSuggestions() []model.Suggestion {
	for _, t := range h.ctrl.Turns() {
		if t.IsUser() {
			if s, ok := h.ctrl.FollowUp(); ok {
				return []model.Suggestion{s}
			}
			return nil
		}
	}
	return h.ctrl.InitialSuggestions()
}

func (h *lineHost) printSuggestions() {
	suggestions := h.visibleSuggestions()
	if len(suggestions) == 0 {
		return
	}
	parts := make([]string, len(suggestions))
	for i, s := range suggestions {
		parts[i] = fmt.Sprintf("[%d] %s", i+1, s.Full)
	}
	fmt.Fprintln(h.out, DimStyle.Render("Try: "+strings.Join(parts, "  ")+"  (/pick N)"))
}

// lastLinks returns the links of the newest assistant turn.
func (h *lineHost) lastLinks() []render.Link {
	turns := h.ctrl.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].IsAssistant() {
			return render.Parse(turns[i].Content).Links()
		}
	}
	return nil
}

func (h *lineHost) printLinks() {
	links := h.lastLinks()
	if len(links) == 0 {
		fmt.Fprintln(h.out, DimStyle.Render("No links in the last reply."))
		return
	}
	for i, l := range links {
		fmt.Fprintf(h.out, "[%d] %s %s\n", i+1, l.Text, DimStyle.Render("("+l.Target.Raw+", "+l.Target.Kind.String()+")"))
	}
}

func (h *lineHost) showPage(path string) {
	page, ok := h.store.Page(path)
	if !ok {
		fmt.Fprintf(h.out, "%s page not found: %s\n", ErrorStyle.Render("[X]"), path)
		return
	}
	fmt.Fprintln(h.out, RenderSeparator(h.width))
	fmt.Fprintf(h.out, "%s %s\n", TitleStyle.Render(page.Title), DimStyle.Render(page.Path))
	fmt.Fprintln(h.out, h.renderer.RenderMarkdown(page.Body, h.width))
	fmt.Fprintln(h.out, RenderSeparator(h.width))
}

func (h *lineHost) notify(n widget.Notice) {
	line := n.Title
	if n.Description != "" {
		line += ": " + n.Description
	}
	switch n.Severity {
	case widget.SeverityError:
		fmt.Fprintln(h.out, ErrorStyle.Render("[X] ")+line)
	case widget.SeveritySuccess:
		fmt.Fprintln(h.out, SuccessStyle.Render("[OK] ")+line)
	default:
		fmt.Fprintln(h.out, "[i] "+line)
	}
}

// index parses a 1-based argument into a 0-based index below n.
func (h *lineHost) index(arg string, n int) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 || i > n {
		if n == 0 {
			fmt.Fprintln(h.out, DimStyle.Render("Nothing to choose from."))
		} else {
			fmt.Fprintf(h.out, "%s choose a number from 1 to %d\n", ErrorStyle.Render("[X]"), n)
		}
		return 0, false
	}
	return i - 1, true
}

// =============================================================================
// REPL
// =============================================================================

func runLineChat(cmd *cobra.Command, st *state) error {
	logger, closeLog := st.logger(false)
	defer closeLog()

	store, err := st.store()
	if err != nil {
		return err
	}
	if err := st.startWatcher(cmd.Context(), store, logger, nil); err != nil {
		logger.Warn("content hot reload disabled", "error", err)
	}

	host := newLineHost(lineHostOptions{
		Completer:       st.completer(store, logger),
		Store:           store,
		Selector:        st.selector(),
		Opener:          navigation.SystemOpener{Logger: logger},
		Out:             cmd.OutOrStdout(),
		Width:           GetTerminalWidth(),
		StartPath:       st.cfg.UI.StartPath,
		HashChangeDelay: st.cfg.Widget.HashChangeDelay(),
		RequestTimeout:  st.cfg.Completion.Timeout(),
		Logger:          logger,
	})

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	historyFile := chatHistoryPath()
	loadHistory(line, historyFile)
	defer func() {
		saveHistory(line, historyFile, logger)
		line.Close()
	}()

	host.start()
	prompt := PromptStyle.Render("> ")
	if !ColorsEnabled() {
		prompt = "> "
	}

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				logger.Warn("read input", "error", err)
			}
			host.ctrl.Unmount()
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if host.handle(input) {
			return nil
		}
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

func chatHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chat_history")
}

func loadHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.ReadHistory(f)
}

// saveHistory writes the history atomically with owner-only permissions.
func saveHistory(line *liner.State, path string, logger *slog.Logger) {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	var buf bytes.Buffer
	if _, err := line.WriteHistory(&buf); err != nil {
		return
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		logger.Warn("save chat history", "error", err)
	}
}
