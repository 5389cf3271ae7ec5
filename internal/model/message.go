// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the assistant conversation.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Turn is a single message in the conversation. Turns are values and are
// never edited after creation.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn with a fresh ID and the current time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// IsUser returns true if the turn was authored by the user.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

// IsAssistant returns true if the turn was authored by the assistant.
func (t Turn) IsAssistant() bool {
	return t.Role == RoleAssistant
}

// =============================================================================
// SUGGESTION TYPE
// =============================================================================

// Suggestion is a candidate prompt offered as a one-tap shortcut.
// Full is what gets submitted; Short is what the button shows.
type Suggestion struct {
	Full  string `toml:"full" json:"full" yaml:"full"`
	Short string `toml:"short" json:"short" yaml:"short"`
}

// Label returns the text to display for the suggestion.
func (s Suggestion) Label() string {
	if s.Short != "" {
		return s.Short
	}
	return s.Full
}
