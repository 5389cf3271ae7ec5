// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the siteassist
terminal host.

# Components

MessageList (viewport.go) - Scrollable conversation area. ScrollTo moves to a
line with a harmonica spring, or snaps when smooth scrolling is off.

ToastManager (toast.go) - Non-blocking notifications stacked in the corner.
It implements widget.Notifier, so controller notices become toasts.

# Usage

	toasts := components.NewToastManager()
	ctrl := widget.New(widget.Options{Notifier: toasts, ...})

	list := components.NewMessageList(40, 12, cfg.Widget.SmoothScroll)
	list.SetContent(rendered)
	cmd := list.ScrollTo(latestTurnLine)
*/
package components
