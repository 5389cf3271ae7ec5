// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content loads the conversation content configuration for the
// assistant widget and the pages of the host site.
//
// A Catalog holds one Content entry per locale (welcome message, candidate
// suggestions, UI copy, canned answers for the stub service) plus the site
// pages the terminal host can show. Catalogs are read from TOML, JSON or
// YAML files, picked by extension, or from the catalog embedded in the
// binary.
//
// # Key Types
//
//   - Catalog: All locales and pages
//   - Content: Per-locale widget content, read on every render pass
//   - UICopy: Titles, placeholder, tooltip and notice texts
//   - Store: Atomically swappable catalog with a fixed locale
//   - Watcher: fsnotify-based reloader that feeds a Store
//
// # Usage
//
//	cat, err := content.LoadFile("site.toml")
//	if err != nil {
//	    return err
//	}
//	store := content.NewStore(cat, "es-MX")
//	c := store.Content() // falls back to the default locale when unmatched
package content
