// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !unix && !windows

package navigation

func launch(string) error {
	return ErrUnsupportedPlatform
}
