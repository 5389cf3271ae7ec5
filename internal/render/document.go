// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into styled terminal text.
package render

import "strings"

// BlockKind identifies a block-level element.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockCode
	BlockQuote
	BlockRule
)

// Span is a run of inline text with uniform styling.
type Span struct {
	Text          string
	Emphasis      bool
	Strong        bool
	Strikethrough bool
	Code          bool
	// Break is a hard line break; Text is empty.
	Break bool
	// Link is the index into Document.Links, or -1.
	Link int
}

// ListItem is one entry of a list block.
type ListItem struct {
	Blocks []Block
}

// Block is a block-level element.
type Block struct {
	Kind BlockKind

	// Spans holds inline content for paragraphs and headings.
	Spans []Span
	// Level is the heading level (1-6).
	Level int

	// Ordered lists number their items from Start.
	Ordered bool
	Start   int
	Items   []ListItem

	// Lang and Code hold fenced or indented code.
	Lang string
	Code string

	// Children holds the contents of a blockquote.
	Children []Block
}

// Link is a hyperlink found in a Document.
type Link struct {
	// Index is the zero-based position in reading order.
	Index  int
	Text   string
	Target Target
}

// Document is a parsed assistant reply.
type Document struct {
	Blocks []Block
	links  []Link
}

// Links returns the document's links in reading order.
func (d Document) Links() []Link {
	out := make([]Link, len(d.links))
	copy(out, d.links)
	return out
}

// PlainText returns the document text without styling, one block per line.
func (d Document) PlainText() string {
	var lines []string
	for _, b := range d.Blocks {
		lines = appendPlain(lines, b, "")
	}
	return strings.Join(lines, "\n")
}

func appendPlain(lines []string, b Block, indent string) []string {
	switch b.Kind {
	case BlockList:
		for _, item := range b.Items {
			for _, child := range item.Blocks {
				lines = appendPlain(lines, child, indent+"  ")
			}
		}
	case BlockQuote:
		for _, child := range b.Children {
			lines = appendPlain(lines, child, indent+"> ")
		}
	case BlockCode:
		for _, l := range strings.Split(b.Code, "\n") {
			lines = append(lines, indent+l)
		}
	case BlockRule:
		lines = append(lines, indent+"---")
	default:
		var sb strings.Builder
		for _, s := range b.Spans {
			if s.Break {
				sb.WriteString("\n")
				continue
			}
			sb.WriteString(s.Text)
		}
		lines = append(lines, indent+sb.String())
	}
	return lines
}
