// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hostpage renders the host site's pages behind the assistant widget.
//
// A Page shows one catalog page as glamour-rendered markdown in a scrollable
// viewport. While the widget is open the Page is locked: its offset and width
// are frozen and scroll input is ignored. Releasing the lock restores the
// previous offset, width and scroll mode exactly.
//
// # Usage
//
//	page := hostpage.New(store, hostpage.Options{Theme: "auto"})
//	page.SetSize(width, height)
//	page.Show("/pricing")
//	release := page.Lock()
//	defer release()
package hostpage
