// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// overlay draws top over base with its top-left corner at column x, row y.
// Base lines are cut ANSI-aware so styled page text to the left of the
// overlay stays intact. Base text right of the overlay is dropped; callers
// anchor overlays to the right edge.
func overlay(base, top string, x, y int) string {
	if top == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")
	x = max(x, 0)
	y = max(y, 0)

	for len(baseLines) < y+len(topLines) {
		baseLines = append(baseLines, "")
	}

	for i, tl := range topLines {
		row := y + i
		line := baseLines[row]

		left := ansi.Truncate(line, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		baseLines[row] = left + "\x1b[0m" + tl
	}
	return strings.Join(baseLines, "\n")
}
