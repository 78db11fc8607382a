// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfeed/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the header, the sidebar next to the feed, the composer and
// the status bar. The picker replaces the body while open.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := *m.header
	header.Conversation = m.title()
	header.Messages = len(m.feed.Messages())

	bodyHeight := max(3, m.height-4)
	var body string
	switch {
	case m.picker.Visible():
		body = lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, m.picker.View())
	case m.sidebarShown:
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), m.feed.View())
	default:
		body = m.feed.View()
	}

	status := components.StatusBar{
		Width:     m.width,
		Mode:      m.feed.Mode(),
		Error:     m.lastErr,
		Shortcuts: m.keys.Shortcuts(),
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header.View(m.theme),
		body,
		m.composer.View(),
		status.View(m.theme),
	)
}

// title is the open conversation's title, or its ID before the sidebar
// knows it.
func (m Model) title() string {
	id := m.feed.Conversation()
	if c := m.sidebar.Find(id); c != nil {
		return c.GetTitle()
	}
	return id
}
