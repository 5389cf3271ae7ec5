// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns assistant markdown into styled terminal text.
//
// Parsing goes through goldmark's AST. Each node kind maps to a strategy
// function in a table, producing a Document of Blocks of Spans. Node kinds
// without a strategy degrade to their text content.
//
// Every hyperlink is classified once by Classify into a Target:
//
//   - Internal: root-relative path such as /pricing (but not //host)
//   - External: URL with a scheme such as https: or mailto:
//   - Unknown: anything else, passed through unmodified and opened like
//     an external link
//
// # Key Types
//
//   - Document: parsed blocks plus the links in reading order
//   - Target: a classified link destination
//   - Renderer: lipgloss styling, chroma code highlighting and
//     go-runewidth wrapping, with numbered and focusable links
//
// # Usage
//
//	doc := render.Parse(reply)
//	out := render.NewRenderer(render.DefaultStyles()).Render(doc, width, focused)
//	for _, link := range doc.Links() {
//	    fmt.Println(link.Index, link.Target.Kind)
//	}
package render
