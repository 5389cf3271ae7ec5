// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the assistant conversation.
//
// This package defines the domain types shared by the widget controller,
// the transport adapter and the renderers.
//
// # Key Types
//
//   - Turn: One immutable message with a role, content, ID and timestamp
//   - Conversation: Append-only ordered list of Turns
//   - Suggestion: A pre-written prompt with a full and a short form
//   - Role: Turn role enumeration (user, assistant)
//
// # Usage
//
// Seed a conversation with a welcome message and append to it:
//
//	conv := model.NewConversation()
//	conv.Reset("Hi! How can I help?")
//	conv.Append(model.RoleUser, "What is a lease?")
//
// Turns returns a copy; mutating it does not change the conversation:
//
//	for _, turn := range conv.Turns() {
//	    fmt.Printf("%s: %s\n", turn.Role.DisplayName(), turn.Content)
//	}
package model
