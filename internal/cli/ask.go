// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/siteassist/internal/model"
	"github.com/jeranaias/siteassist/internal/render"
	"github.com/jeranaias/siteassist/internal/ui/styles"
)

// askOptions are the flags of the ask command.
type askOptions struct {
	raw   bool
	json  bool
	width int
}

// AskResult is the --json output of ask.
type AskResult struct {
	Question string     `json:"question"`
	Reply    string     `json:"reply"`
	Links    []LinkInfo `json:"links,omitempty"`
}

// LinkInfo describes one link of the reply.
type LinkInfo struct {
	Text   string `json:"text"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

func newAskCmd(st *state) *cobra.Command {
	opts := askOptions{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the reply",
		Long: `Send a single question to the assistant and print the reply.

The question is sent after the locale's welcome message, just as it would be
from the widget.

Examples:
  siteassist ask "How much does Rentline cost?"
  siteassist ask --locale es "¿Cuánto cuesta?"
  siteassist ask --json "Do you offer a free trial?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, st, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the reply markdown unrendered")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the reply as JSON")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "wrap width (default: terminal width)")
	return cmd
}

func runAsk(cmd *cobra.Command, st *state, question string, opts askOptions) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question must not be blank")
	}

	logger, closeLog := st.logger(true)
	defer closeLog()

	store, err := st.store()
	if err != nil {
		return err
	}
	completer := st.completer(store, logger)

	conv := model.NewConversation()
	conv.Reset(store.Content().Welcome)
	conv.Append(model.RoleUser, question)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := st.cfg.Completion.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	reply, err := completer.Complete(ctx, conv.Turns())
	if err != nil {
		return fmt.Errorf("%s: %w", store.Content().Copy.ErrorTitle, err)
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.json:
		return writeAskJSON(out, question, reply)
	case opts.raw:
		_, err := fmt.Fprintln(out, reply)
		return err
	}

	width := opts.width
	if width <= 0 {
		width = GetTerminalWidth()
	}
	rendered, err := renderMarkdown(reply, width, st.cfg.UI.Theme)
	if err != nil {
		logger.Debug("glamour render failed, printing raw", "error", err)
		rendered = reply + "\n"
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func writeAskJSON(w io.Writer, question, reply string) error {
	res := AskResult{Question: question, Reply: reply}
	for _, l := range render.Parse(reply).Links() {
		res.Links = append(res.Links, LinkInfo{
			Text:   l.Text,
			Target: l.Target.Raw,
			Kind:   l.Target.Kind.String(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// renderMarkdown renders md with glamour in a style matching theme.
func renderMarkdown(md string, width int, theme string) (string, error) {
	style := glamour.WithAutoStyle()
	switch {
	case !ColorsEnabled():
		style = glamour.WithStandardStyle("notty")
	case theme == styles.ThemeDark:
		style = glamour.WithStandardStyle("dark")
	case theme == styles.ThemeLight:
		style = glamour.WithStandardStyle("light")
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
