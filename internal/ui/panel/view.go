// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/siteassist/internal/render"
	"github.com/jeranaias/siteassist/internal/util"
)

// Fixed rows around the message list: panel border (2), header with its rule
// (2), suggestion row (3), input box (3) and help (1).
const chromeRows = 2 + 2 + 3 + 3 + 1

// innerWidth is the content width inside the panel border and padding.
func (m Model) innerWidth() int {
	return m.width - 4
}

func (m Model) listHeight() int {
	rows := m.height - chromeRows
	if m.help.ShowAll {
		tallest := 0
		for _, group := range m.keys.FullHelp() {
			tallest = max(tallest, len(group))
		}
		rows -= tallest - 1
	}
	return max(rows, 1)
}

// =============================================================================
// CONVERSATION
// =============================================================================

// redraw renders every turn into the message list and records where each
// turn starts.
func (m *Model) redraw() {
	if m.ctrl == nil {
		return
	}
	width := m.innerWidth()
	bodyWidth := width - 2

	var sb strings.Builder
	lines := 0
	m.turnLines = m.turnLines[:0]

	for i, turn := range m.ctrl.Turns() {
		if i > 0 {
			// Blank line between turns.
			sb.WriteString("\n\n")
			lines++
		}
		m.turnLines = append(m.turnLines, lines)

		var label, body string
		if turn.IsAssistant() {
			label = m.theme.AssistantLabel.Render(m.ctrl.Copy().Title)
			focused := render.NoFocus
			if m.focus.kind == focusLink && m.focus.turn == i {
				focused = m.focus.link
			}
			body = m.theme.AssistantTurn.Render(m.renderer.Render(m.document(turn), bodyWidth, focused))
		} else {
			label = m.theme.UserLabel.Render(turn.Role.DisplayName())
			body = m.theme.UserTurn.Width(bodyWidth).Render(turn.Content)
		}

		block := label + "\n" + body
		sb.WriteString(block)
		lines += strings.Count(block, "\n") + 1
	}

	if m.ctrl.Loading() {
		sb.WriteString("\n\n")
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(m.theme.LoadingText.Render(m.ctrl.Copy().LoadingLabel))
	}

	m.list.SetContent(sb.String())
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the panel.
func (m Model) View() string {
	if m.ctrl == nil {
		return ""
	}
	width := m.innerWidth()

	sections := []string{
		m.headerView(width),
		m.list.View(),
		m.suggestionsView(width),
		m.inputView(width),
		m.help.View(m.keys),
	}

	return m.theme.Panel.
		Width(width + 2).
		MaxHeight(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) headerView(width int) string {
	ui := m.ctrl.Copy()

	button := m.theme.ClearButton.Render("[" + ui.ClearLabel + "]")
	if m.focus.kind == focusClear {
		button = m.theme.ClearFocused.Render("[" + ui.ClearLabel + "]")
	}

	titleWidth := max(width-lipgloss.Width(button)-1, 1)
	title := m.theme.PanelTitle.Render(util.TruncateWidth(ui.Title, titleWidth))
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(button), 1)

	return m.theme.PanelHeader.Width(width).Render(title + strings.Repeat(" ", gap) + button)
}

func (m Model) suggestionsView(width int) string {
	suggestions := m.visibleSuggestions()
	if len(suggestions) == 0 {
		return "\n\n"
	}

	buttons := make([]string, 0, len(suggestions))
	used := 0
	for _, s := range suggestions {
		style := m.theme.Suggestion
		if m.focus.kind == focusSuggestion && m.focus.suggestion == s {
			style = m.theme.SuggestionFocused
		}
		// Border and padding take four columns.
		label := util.TruncateWidth(s.Label(), max(width-used-5, 1))
		btn := style.Render(label)
		used += lipgloss.Width(btn) + 1
		buttons = append(buttons, btn, " ")
	}
	return lipgloss.NewStyle().MaxWidth(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, buttons[:len(buttons)-1]...))
}

func (m Model) inputView(width int) string {
	style := m.theme.InputBox
	if m.focus.kind == focusInput {
		style = m.theme.InputBoxFocused
	}
	return style.Width(width - 2).Render(m.input.View())
}
