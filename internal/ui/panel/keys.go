// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings of the open panel.
type KeyMap struct {
	Activate key.Binding
	Next     key.Binding
	Prev     key.Binding
	Clear    key.Binding
	Close    key.Binding
	LineUp   key.Binding
	LineDown key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Help     key.Binding
}

// DefaultKeyMap returns the default panel bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send / open"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-Tab", "previous"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "ctrl+g"),
			key.WithHelp("Esc", "close"),
		),
		LineUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "scroll up"),
		),
		LineDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "more keys"),
		),
	}
}

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Activate, k.Next, k.Close, k.Help}
}

// FullHelp returns the bindings shown in the expanded help.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Activate, k.Next, k.Prev},
		{k.LineUp, k.LineDown, k.PageUp, k.PageDown},
		{k.Clear, k.Close, k.Help},
	}
}
