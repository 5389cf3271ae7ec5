// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into styled terminal text.
package render

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
)

// =============================================================================
// STRATEGY TABLES
// =============================================================================

type blockStrategy func(b *builder, n ast.Node) (Block, bool)

type inlineStrategy func(b *builder, n ast.Node, st inlineStyle) []Span

// Populated in init; the strategies recurse back through the tables.
var (
	blockStrategies  map[ast.NodeKind]blockStrategy
	inlineStrategies map[ast.NodeKind]inlineStrategy
)

func init() {
	blockStrategies = map[ast.NodeKind]blockStrategy{
		ast.KindParagraph:       paragraphBlock,
		ast.KindTextBlock:       paragraphBlock,
		ast.KindHeading:         headingBlock,
		ast.KindList:            listBlock,
		ast.KindFencedCodeBlock: fencedCodeBlock,
		ast.KindCodeBlock:       indentedCodeBlock,
		ast.KindBlockquote:      quoteBlock,
		ast.KindThematicBreak:   ruleBlock,
		ast.KindHTMLBlock:       htmlBlock,
	}

	inlineStrategies = map[ast.NodeKind]inlineStrategy{
		ast.KindText:           textInline,
		ast.KindString:         stringInline,
		ast.KindEmphasis:       emphasisInline,
		east.KindStrikethrough: strikethroughInline,
		ast.KindCodeSpan:       codeSpanInline,
		ast.KindLink:           linkInline,
		ast.KindAutoLink:       autoLinkInline,
		ast.KindImage:          imageInline,
		ast.KindRawHTML:        rawHTMLInline,
	}
}

// =============================================================================
// PARSE
// =============================================================================

// Parse converts markdown into a Document. It never fails; input that
// goldmark cannot structure comes back as plain paragraphs.
func Parse(src string) Document {
	source := []byte(src)
	root := markdown.Parser().Parse(text.NewReader(source))

	b := &builder{src: source}
	return Document{Blocks: b.blocks(root), links: b.links}
}

type builder struct {
	src   []byte
	links []Link
}

type inlineStyle struct {
	emphasis bool
	strong   bool
	strike   bool
	link     int
}

func plainStyle() inlineStyle {
	return inlineStyle{link: -1}
}

func (st inlineStyle) span(s string) []Span {
	if s == "" {
		return nil
	}
	return []Span{{
		Text:          s,
		Emphasis:      st.emphasis,
		Strong:        st.strong,
		Strikethrough: st.strike,
		Link:          st.link,
	}}
}

func (b *builder) addLink(label, dest string) int {
	idx := len(b.links)
	b.links = append(b.links, Link{Index: idx, Text: label, Target: Classify(dest)})
	return idx
}

func (b *builder) blocks(parent ast.Node) []Block {
	var out []Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if blk, ok := b.block(n); ok {
			out = append(out, blk)
		}
	}
	return out
}

func (b *builder) block(n ast.Node) (Block, bool) {
	if fn, ok := blockStrategies[n.Kind()]; ok {
		return fn(b, n)
	}
	txt := strings.TrimSpace(nodeText(n, b.src))
	if txt == "" {
		return Block{}, false
	}
	return Block{Kind: BlockParagraph, Spans: plainStyle().span(txt)}, true
}

func (b *builder) inlines(parent ast.Node, st inlineStyle) []Span {
	var out []Span
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		out = append(out, b.inline(n, st)...)
	}
	return out
}

func (b *builder) inline(n ast.Node, st inlineStyle) []Span {
	if fn, ok := inlineStrategies[n.Kind()]; ok {
		return fn(b, n, st)
	}
	if n.HasChildren() {
		return b.inlines(n, st)
	}
	return st.span(nodeText(n, b.src))
}

// =============================================================================
// BLOCK STRATEGIES
// =============================================================================

func paragraphBlock(b *builder, n ast.Node) (Block, bool) {
	spans := b.inlines(n, plainStyle())
	if len(spans) == 0 {
		return Block{}, false
	}
	return Block{Kind: BlockParagraph, Spans: spans}, true
}

func headingBlock(b *builder, n ast.Node) (Block, bool) {
	h := n.(*ast.Heading)
	return Block{Kind: BlockHeading, Level: h.Level, Spans: b.inlines(n, plainStyle())}, true
}

func listBlock(b *builder, n ast.Node) (Block, bool) {
	l := n.(*ast.List)
	blk := Block{Kind: BlockList, Ordered: l.IsOrdered(), Start: l.Start}
	for item := n.FirstChild(); item != nil; item = item.NextSibling() {
		blk.Items = append(blk.Items, ListItem{Blocks: b.blocks(item)})
	}
	return blk, true
}

func fencedCodeBlock(b *builder, n ast.Node) (Block, bool) {
	fc := n.(*ast.FencedCodeBlock)
	return Block{
		Kind: BlockCode,
		Lang: string(fc.Language(b.src)),
		Code: linesText(n, b.src),
	}, true
}

func indentedCodeBlock(b *builder, n ast.Node) (Block, bool) {
	return Block{Kind: BlockCode, Code: linesText(n, b.src)}, true
}

func quoteBlock(b *builder, n ast.Node) (Block, bool) {
	return Block{Kind: BlockQuote, Children: b.blocks(n)}, true
}

func ruleBlock(_ *builder, _ ast.Node) (Block, bool) {
	return Block{Kind: BlockRule}, true
}

func htmlBlock(b *builder, n ast.Node) (Block, bool) {
	txt := strings.TrimSpace(linesText(n, b.src))
	if txt == "" {
		return Block{}, false
	}
	return Block{Kind: BlockParagraph, Spans: plainStyle().span(txt)}, true
}

// =============================================================================
// INLINE STRATEGIES
// =============================================================================

func textInline(b *builder, n ast.Node, st inlineStyle) []Span {
	t := n.(*ast.Text)
	spans := st.span(string(t.Segment.Value(b.src)))
	switch {
	case t.HardLineBreak():
		spans = append(spans, Span{Break: true, Link: -1})
	case t.SoftLineBreak():
		spans = append(spans, st.span(" ")...)
	}
	return spans
}

func stringInline(_ *builder, n ast.Node, st inlineStyle) []Span {
	return st.span(string(n.(*ast.String).Value))
}

func emphasisInline(b *builder, n ast.Node, st inlineStyle) []Span {
	if n.(*ast.Emphasis).Level >= 2 {
		st.strong = true
	} else {
		st.emphasis = true
	}
	return b.inlines(n, st)
}

func strikethroughInline(b *builder, n ast.Node, st inlineStyle) []Span {
	st.strike = true
	return b.inlines(n, st)
}

func codeSpanInline(b *builder, n ast.Node, st inlineStyle) []Span {
	spans := st.span(nodeText(n, b.src))
	for i := range spans {
		spans[i].Code = true
	}
	return spans
}

func linkInline(b *builder, n ast.Node, st inlineStyle) []Span {
	l := n.(*ast.Link)
	dest := string(l.Destination)
	label := strings.TrimSpace(nodeText(n, b.src))

	st.link = b.addLink(label, dest)
	spans := b.inlines(n, st)
	if len(spans) == 0 {
		spans = st.span(dest)
	}
	return spans
}

func autoLinkInline(b *builder, n ast.Node, st inlineStyle) []Span {
	a := n.(*ast.AutoLink)
	label := string(a.Label(b.src))
	st.link = b.addLink(label, string(a.URL(b.src)))
	return st.span(label)
}

func imageInline(b *builder, n ast.Node, st inlineStyle) []Span {
	return st.span(nodeText(n, b.src))
}

func rawHTMLInline(_ *builder, _ ast.Node, _ inlineStyle) []Span {
	return nil
}

// =============================================================================
// TEXT HELPERS
// =============================================================================

// nodeText returns the concatenated text of n's descendants.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	writeNodeText(&sb, n, src)
	return sb.String()
}

func writeNodeText(sb *strings.Builder, n ast.Node, src []byte) {
	switch t := n.(type) {
	case *ast.Text:
		sb.Write(t.Segment.Value(src))
		if t.SoftLineBreak() || t.HardLineBreak() {
			sb.WriteByte(' ')
		}
		return
	case *ast.String:
		sb.Write(t.Value)
		return
	case *ast.AutoLink:
		sb.Write(t.Label(src))
		return
	}

	if !n.HasChildren() && n.Type() == ast.TypeBlock {
		sb.WriteString(linesText(n, src))
		return
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		writeNodeText(sb, c, src)
	}
}

// linesText joins a block node's raw lines without the trailing newline.
func linesText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}
