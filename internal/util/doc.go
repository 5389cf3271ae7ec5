// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across siteassist.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation for log excerpts
//   - TruncateWidth: display-width truncation for labels (CJK aware)
//   - PadRight: pad a string to a display width
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	label := util.TruncateWidth(suggestion.Label(), 30)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
