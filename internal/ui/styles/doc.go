// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the siteassist terminal
host.

All colors are Lip Gloss AdaptiveColor values, so one palette serves light and
dark terminals.

# Color System (colors.go)

	Purple  - Assistant accent and panel border
	Cyan    - Launcher, focus ring and user prompt
	Emerald - Success notices
	Rose    - Error notices
	Amber   - Inline code

Text colors form a hierarchy: TextPrimary, TextSecondary, TextMuted and
TextInverse for text on colored backgrounds.

# Theme System (theme.go)

NewTheme resolves the configured theme ("auto", "dark" or "light"), tells
Lip Gloss which background to assume, and builds the panel styles:

	theme := styles.NewTheme(cfg.UI.Theme)
	header := theme.PanelTitle.Render(copy.Title)

# Animation System (animations.go)

Spinner definitions for the loading indicator and the spring constants of the
scroll-to-latest animation.
*/
package styles
