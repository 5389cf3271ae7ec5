// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package navigation provides the client-side router and the system link
// opener used by the assistant widget.
//
// # Key Types
//
//   - History: in-app router with a back stack and hash-change subscribers
//   - SystemOpener: launches links in the desktop browser, detached from
//     the terminal session
//
// # Usage
//
//	hist := navigation.NewHistory("/")
//	hist.Subscribe(func(path string) { page.Show(path) })
//	hist.Navigate("/pricing")
//	hist.DispatchHashChange("/pricing")
package navigation
