// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

// =============================================================================
// CLASSIFY
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"/pricing", Internal},
		{"/", Internal},
		{"/features#screening", Internal},
		{"  /about  ", Internal},
		{"//evil.example/path", Unknown},
		{"https://help.rentline.example/screening", External},
		{"http://example.com", External},
		{"mailto:sales@rentline.example", External},
		{"tel:+15551234567", External},
		{"pricing", Unknown},
		{"#faq", Unknown},
		{"", Unknown},
		{"http://[::1", Unknown},
	}

	for _, tt := range tests {
		got := Classify(tt.raw)
		if got.Kind != tt.want {
			t.Errorf("Classify(%q).Kind = %v, want %v", tt.raw, got.Kind, tt.want)
		}
		if got.Raw != tt.raw {
			t.Errorf("Classify(%q).Raw = %q, want unmodified", tt.raw, got.Raw)
		}
	}
}

func TestTargetPath(t *testing.T) {
	if got := Classify("  /about ").Path(); got != "/about" {
		t.Errorf("Path() = %q, want /about", got)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "internal", Internal.String())
	assert.Equal(t, "external", External.String())
	assert.Equal(t, "unknown", Unknown.String())
}

// =============================================================================
// PARSE
// =============================================================================

func TestParse_EmphasisAndStrong(t *testing.T) {
	doc := Parse("Hello **world** and *you*.")
	require.Len(t, doc.Blocks, 1)

	b := doc.Blocks[0]
	assert.Equal(t, BlockParagraph, b.Kind)
	require.Len(t, b.Spans, 5)
	assert.Equal(t, Span{Text: "Hello ", Link: -1}, b.Spans[0])
	assert.Equal(t, Span{Text: "world", Strong: true, Link: -1}, b.Spans[1])
	assert.Equal(t, Span{Text: "you", Emphasis: true, Link: -1}, b.Spans[3])
}

func TestParse_Lists(t *testing.T) {
	doc := Parse("- one\n- two\n\n3. three\n4. four")
	require.Len(t, doc.Blocks, 2)

	bullets := doc.Blocks[0]
	assert.Equal(t, BlockList, bullets.Kind)
	assert.False(t, bullets.Ordered)
	require.Len(t, bullets.Items, 2)
	assert.Equal(t, "one", bullets.Items[0].Blocks[0].Spans[0].Text)

	ordered := doc.Blocks[1]
	assert.True(t, ordered.Ordered)
	assert.Equal(t, 3, ordered.Start)
	require.Len(t, ordered.Items, 2)
}

func TestParse_NestedList(t *testing.T) {
	doc := Parse("- outer\n  - inner")
	require.Len(t, doc.Blocks, 1)
	item := doc.Blocks[0].Items[0]
	require.Len(t, item.Blocks, 2)
	assert.Equal(t, BlockList, item.Blocks[1].Kind)
}

func TestParse_LinksInReadingOrder(t *testing.T) {
	doc := Parse("See [pricing](/pricing), then [the docs](https://help.rentline.example) or visit https://rentline.example today.")

	links := doc.Links()
	require.Len(t, links, 3)

	assert.Equal(t, 0, links[0].Index)
	assert.Equal(t, "pricing", links[0].Text)
	assert.Equal(t, Internal, links[0].Target.Kind)
	assert.Equal(t, "/pricing", links[0].Target.Raw)

	assert.Equal(t, "the docs", links[1].Text)
	assert.Equal(t, External, links[1].Target.Kind)

	assert.Equal(t, External, links[2].Target.Kind)
	assert.Equal(t, "https://rentline.example", links[2].Target.Raw)
}

func TestParse_LinkSpansCarryIndex(t *testing.T) {
	doc := Parse("[**Bold** link](/features)")
	spans := doc.Blocks[0].Spans
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, 0, s.Link)
	}
	assert.True(t, spans[0].Strong)
}

func TestParse_LinksReturnsCopy(t *testing.T) {
	doc := Parse("[a](/a)")
	links := doc.Links()
	links[0].Text = "changed"
	assert.Equal(t, "a", doc.Links()[0].Text)
}

func TestParse_CodeHeadingQuoteRule(t *testing.T) {
	src := "## Plans\n\n```go\nfmt.Println(1)\n```\n\n> note\n\n---\n\nUse `rent pay` now ~~later~~."
	doc := Parse(src)
	require.Len(t, doc.Blocks, 5)

	assert.Equal(t, BlockHeading, doc.Blocks[0].Kind)
	assert.Equal(t, 2, doc.Blocks[0].Level)

	assert.Equal(t, BlockCode, doc.Blocks[1].Kind)
	assert.Equal(t, "go", doc.Blocks[1].Lang)
	assert.Equal(t, "fmt.Println(1)", doc.Blocks[1].Code)

	assert.Equal(t, BlockQuote, doc.Blocks[2].Kind)
	require.Len(t, doc.Blocks[2].Children, 1)
	assert.Equal(t, "note", doc.Blocks[2].Children[0].Spans[0].Text)

	assert.Equal(t, BlockRule, doc.Blocks[3].Kind)

	var code, strike bool
	for _, s := range doc.Blocks[4].Spans {
		if s.Code && s.Text == "rent pay" {
			code = true
		}
		if s.Strikethrough && s.Text == "later" {
			strike = true
		}
	}
	assert.True(t, code, "inline code span missing")
	assert.True(t, strike, "strikethrough span missing")
}

func TestParse_LineBreaks(t *testing.T) {
	doc := Parse("line one  \nline two\nline three")
	spans := doc.Blocks[0].Spans

	var breaks int
	for _, s := range spans {
		if s.Break {
			breaks++
		}
	}
	assert.Equal(t, 1, breaks)
	assert.Contains(t, doc.PlainText(), "line two line three")
	assert.Contains(t, doc.PlainText(), "\n")
}

func TestParse_DegradesToText(t *testing.T) {
	doc := Parse("![floor plan](/img/plan.png)\n\n<div>raw block</div>")
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "floor plan", doc.Blocks[0].Spans[0].Text)
	assert.Equal(t, "<div>raw block</div>", doc.Blocks[1].Spans[0].Text)
}

func TestParse_Empty(t *testing.T) {
	doc := Parse("")
	assert.Empty(t, doc.Blocks)
	assert.Empty(t, doc.Links())
}

// =============================================================================
// RENDER
// =============================================================================

func TestRender_WrapsToWidth(t *testing.T) {
	src := "Rentline collects rent online, screens applicants, tracks maintenance requests and sends [owner statements](/features) every month."
	out := stripANSI(NewRenderer(DefaultStyles()).RenderMarkdown(src, 24))

	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 3)
	for _, l := range lines {
		assert.LessOrEqual(t, runewidth.StringWidth(l), 24, "line %q too wide", l)
	}
	assert.Contains(t, out, "statements[1]")
}

func TestRender_SplitsLongWords(t *testing.T) {
	out := stripANSI(NewRenderer(DefaultStyles()).RenderMarkdown(strings.Repeat("a", 25), 10))
	assert.Equal(t, []string{"aaaaaaaaaa", "aaaaaaaaaa", "aaaaa"}, strings.Split(out, "\n"))
}

func TestRender_Lists(t *testing.T) {
	out := stripANSI(NewRenderer(DefaultStyles()).RenderMarkdown("- one\n- two\n\n3. three", 40))
	assert.Equal(t, "• one\n• two\n\n3. three", out)
}

func TestRender_QuoteAndRule(t *testing.T) {
	out := stripANSI(NewRenderer(DefaultStyles()).RenderMarkdown("> note\n\n---", 12))
	assert.Equal(t, "│ note\n\n"+strings.Repeat("─", 12), out)
}

func TestRender_CodeBlockKeepsText(t *testing.T) {
	out := stripANSI(NewRenderer(DefaultStyles()).RenderMarkdown("```go\nx := 1\n```", 40))
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "│ x := 1")
}

func TestRender_FocusedLink(t *testing.T) {
	s := DefaultStyles()
	s.FocusedLink = lipgloss.NewStyle().Transform(strings.ToUpper)
	r := NewRenderer(s)
	doc := Parse("[first](/a) and [second](/b)")

	unfocused := stripANSI(r.Render(doc, 60, NoFocus))
	assert.Equal(t, "first[1] and second[2]", unfocused)

	focused := stripANSI(r.Render(doc, 60, 1))
	assert.Equal(t, "first[1] and SECOND[2]", focused)
}

func TestRender_MinimumWidth(t *testing.T) {
	out := stripANSI(NewRenderer(DefaultStyles()).RenderMarkdown("abcdefghijklmnop", 0))
	assert.Equal(t, "abcdefghij\nklmnop", out)
}

func TestHighlightCode_UnknownLanguage(t *testing.T) {
	out := stripANSI(highlightCode("plain words", "no-such-language", "no-such-theme"))
	assert.Equal(t, "plain words", out)
}
