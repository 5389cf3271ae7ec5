// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel draws the open assistant widget in the terminal host: the
// header with its clear button, the scrollable conversation, the suggestion
// row and the message input. Tab moves focus through the clear button, every
// link in the conversation, the suggestions and the input; Enter activates
// the focused item.
package panel
