// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into styled terminal text.
package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/siteassist/internal/ui/styles"
)

// NoFocus renders every link unfocused.
const NoFocus = -1

const minRenderWidth = 10

// =============================================================================
// STYLES
// =============================================================================

// Styles holds the lipgloss styles used by a Renderer.
type Styles struct {
	Text        lipgloss.Style
	Code        lipgloss.Style
	Heading     lipgloss.Style
	Link        lipgloss.Style
	FocusedLink lipgloss.Style
	LinkMarker  lipgloss.Style
	Bullet      lipgloss.Style
	Quote       lipgloss.Style
	Rule        lipgloss.Style
	CodeGutter  lipgloss.Style
	CodeLang    lipgloss.Style

	// CodeTheme is a chroma style name.
	CodeTheme string
}

// DefaultStyles returns styles built from the shared palette.
func DefaultStyles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(styles.TextPrimary),
		Code:        lipgloss.NewStyle().Foreground(styles.Amber).Background(styles.SurfaceDim),
		Heading:     lipgloss.NewStyle().Foreground(styles.Purple).Bold(true),
		Link:        lipgloss.NewStyle().Foreground(styles.LinkColor).Underline(true),
		FocusedLink: lipgloss.NewStyle().Foreground(styles.TextInverse).Background(styles.Cyan).Bold(true),
		LinkMarker:  lipgloss.NewStyle().Foreground(styles.TextMuted),
		Bullet:      lipgloss.NewStyle().Foreground(styles.Cyan),
		Quote:       lipgloss.NewStyle().Foreground(styles.TextMuted),
		Rule:        lipgloss.NewStyle().Foreground(styles.Overlay),
		CodeGutter:  lipgloss.NewStyle().Foreground(styles.Overlay),
		CodeLang:    lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true),
		CodeTheme:   "monokai",
	}
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer draws Documents as wrapped, styled terminal text.
type Renderer struct {
	styles Styles
}

// NewRenderer creates a Renderer.
func NewRenderer(s Styles) *Renderer {
	return &Renderer{styles: s}
}

// Render draws doc wrapped to width columns. Links are numbered [1], [2], ...
// and the link whose index equals focused is highlighted.
func (r *Renderer) Render(doc Document, width, focused int) string {
	if width < minRenderWidth {
		width = minRenderWidth
	}

	var parts []string
	for _, b := range doc.Blocks {
		lines := r.block(b, width, focused)
		if len(lines) > 0 {
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

// RenderMarkdown parses and draws src with no focused link.
func (r *Renderer) RenderMarkdown(src string, width int) string {
	return r.Render(Parse(src), width, NoFocus)
}

func (r *Renderer) block(b Block, width, focused int) []string {
	switch b.Kind {
	case BlockHeading:
		return r.spans(b.Spans, width, focused, r.styles.Heading)
	case BlockList:
		return r.list(b, width, focused)
	case BlockCode:
		return r.code(b, width)
	case BlockQuote:
		return r.quote(b, width, focused)
	case BlockRule:
		return []string{r.styles.Rule.Render(strings.Repeat("─", width))}
	default:
		return r.spans(b.Spans, width, focused, r.styles.Text)
	}
}

func (r *Renderer) list(b Block, width, focused int) []string {
	var out []string
	for i, item := range b.Items {
		marker := "• "
		if b.Ordered {
			marker = fmt.Sprintf("%d. ", b.Start+i)
		}
		markerWidth := runewidth.StringWidth(marker)
		indent := strings.Repeat(" ", markerWidth)

		var lines []string
		for _, child := range item.Blocks {
			lines = append(lines, r.block(child, width-markerWidth, focused)...)
		}
		if len(lines) == 0 {
			lines = []string{""}
		}

		for j, line := range lines {
			if j == 0 {
				out = append(out, r.styles.Bullet.Render(marker)+line)
			} else {
				out = append(out, indent+line)
			}
		}
	}
	return out
}

func (r *Renderer) quote(b Block, width, focused int) []string {
	bar := r.styles.Quote.Render("│ ")
	var out []string
	for i, child := range b.Children {
		if i > 0 {
			out = append(out, bar)
		}
		for _, line := range r.block(child, width-2, focused) {
			out = append(out, bar+line)
		}
	}
	return out
}

func (r *Renderer) code(b Block, width int) []string {
	gutter := r.styles.CodeGutter.Render("│ ")
	var out []string
	if b.Lang != "" {
		out = append(out, r.styles.CodeLang.Render(b.Lang))
	}
	highlighted := highlightCode(b.Code, b.Lang, r.styles.CodeTheme)
	for _, line := range strings.Split(highlighted, "\n") {
		out = append(out, gutter+line)
	}
	return out
}

// =============================================================================
// INLINE WRAPPING
// =============================================================================

type token struct {
	text  string
	style lipgloss.Style
	space bool
	brk   bool
}

func (r *Renderer) spanStyle(s Span, focused int, base lipgloss.Style) lipgloss.Style {
	st := base
	if s.Code {
		st = r.styles.Code
	}
	if s.Link >= 0 {
		if s.Link == focused {
			st = r.styles.FocusedLink
		} else {
			st = r.styles.Link
		}
	}
	if s.Strong {
		st = st.Bold(true)
	}
	if s.Emphasis {
		st = st.Italic(true)
	}
	if s.Strikethrough {
		st = st.Strikethrough(true)
	}
	return st
}

func (r *Renderer) tokens(spans []Span, focused int, base lipgloss.Style) []token {
	var toks []token
	for i, s := range spans {
		if s.Break {
			toks = append(toks, token{brk: true})
			continue
		}

		st := r.spanStyle(s, focused, base)
		var word strings.Builder
		flush := func() {
			if word.Len() > 0 {
				toks = append(toks, token{text: word.String(), style: st})
				word.Reset()
			}
		}
		for _, c := range s.Text {
			if unicode.IsSpace(c) {
				flush()
				toks = append(toks, token{space: true})
				continue
			}
			word.WriteRune(c)
		}
		flush()

		lastOfLink := s.Link >= 0 && (i+1 == len(spans) || spans[i+1].Link != s.Link)
		if lastOfLink {
			toks = append(toks, token{
				text:  fmt.Sprintf("[%d]", s.Link+1),
				style: r.styles.LinkMarker,
			})
		}
	}
	return toks
}

// wordGroup is a run of tokens with no whitespace between them, such as a
// link label and its [n] marker.
type wordGroup struct {
	toks []token
	brk  bool
}

func groupTokens(toks []token) []wordGroup {
	var groups []wordGroup
	var cur []token
	closeGroup := func() {
		if len(cur) > 0 {
			groups = append(groups, wordGroup{toks: cur})
			cur = nil
		}
	}
	for _, tok := range toks {
		switch {
		case tok.brk:
			closeGroup()
			groups = append(groups, wordGroup{brk: true})
		case tok.space:
			closeGroup()
		default:
			cur = append(cur, tok)
		}
	}
	closeGroup()
	return groups
}

// spans word-wraps inline content to width columns.
func (r *Renderer) spans(spans []Span, width, focused int, base lipgloss.Style) []string {
	var lines []string
	var cur strings.Builder
	curWidth := 0

	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curWidth = 0
	}

	write := func(tok token) {
		text := tok.text
		w := runewidth.StringWidth(text)
		if curWidth > 0 && curWidth+w > width {
			flush()
		}
		// Words longer than a whole line are split.
		for curWidth == 0 && w > width {
			part := runewidth.Truncate(text, width, "")
			if part == "" {
				_, size := utf8.DecodeRuneInString(text)
				part = text[:size]
			}
			cur.WriteString(tok.style.Render(part))
			flush()
			text = text[len(part):]
			w = runewidth.StringWidth(text)
		}
		if text == "" {
			return
		}
		cur.WriteString(tok.style.Render(text))
		curWidth += w
	}

	for _, g := range groupTokens(r.tokens(spans, focused, base)) {
		if g.brk {
			flush()
			continue
		}

		gw := 0
		for _, tok := range g.toks {
			gw += runewidth.StringWidth(tok.text)
		}
		if curWidth > 0 {
			if curWidth+1+gw > width {
				flush()
			} else {
				cur.WriteByte(' ')
				curWidth++
			}
		}
		for _, tok := range g.toks {
			write(tok)
		}
	}
	if cur.Len() > 0 || len(lines) == 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// =============================================================================
// CODE HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma syntax highlighting, returning code unchanged
// when no formatter or lexer output is available.
func highlightCode(code, language, theme string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(theme)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}
