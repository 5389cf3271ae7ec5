// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the terminal host of the assistant widget. It shows the
// site's pages in a scrollable view, puts the launcher in the status bar and
// draws the panel over the page while the widget is open. The page is the
// controller's scroll lock, the navigation history is its router and the
// toast stack is its notifier.
package app
