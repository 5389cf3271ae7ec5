// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the assistant conversation.
package model

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered, append-only history of a widget session.
// The only way to remove turns is Reset, which replaces the whole history
// with a single welcome turn.
//
// Conversation is not safe for concurrent use; it is owned by one controller
// running on the UI event loop.
type Conversation struct {
	turns []Turn
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		turns: make([]Turn, 0, 16),
	}
}

// =============================================================================
// TURN MANAGEMENT
// =============================================================================

// Append adds a new turn to the end of the history and returns it.
func (c *Conversation) Append(role Role, content string) Turn {
	turn := NewTurn(role, content)
	c.turns = append(c.turns, turn)
	return turn
}

// Reset discards every turn and seeds a single assistant welcome turn.
func (c *Conversation) Reset(welcome string) Turn {
	c.turns = make([]Turn, 0, 16)
	return c.Append(RoleAssistant, welcome)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// IsEmpty returns true if the conversation has no turns.
func (c *Conversation) IsEmpty() bool {
	return len(c.turns) == 0
}

// Turns returns a copy of the history in chronological order.
func (c *Conversation) Turns() []Turn {
	result := make([]Turn, len(c.turns))
	copy(result, c.turns)
	return result
}

// Last returns the most recent turn, or false if the conversation is empty.
func (c *Conversation) Last() (Turn, bool) {
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

// CountByRole returns how many turns were authored by role.
func (c *Conversation) CountByRole(role Role) int {
	n := 0
	for _, t := range c.turns {
		if t.Role == role {
			n++
		}
	}
	return n
}
