// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Shortcut is a key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar shows the anchor mode, an optional error and key hints.
type StatusBar struct {
	Width     int
	Mode      anchor.Mode
	Error     string
	Shortcuts []Shortcut
}

// View renders the status bar on one line. Hints are dropped from the
// right when space runs out.
func (s StatusBar) View(t *styles.Theme) string {
	left := t.ShortcutKey.Render(s.Mode.String())
	if s.Error != "" {
		left += "  " + t.ErrorText.Render(s.Error)
	}

	var hints []string
	room := s.Width - lipgloss.Width(left) - 4
	for _, sc := range s.Shortcuts {
		h := t.ShortcutKey.Render(sc.Key) + " " + t.ShortcutDesc.Render(sc.Desc)
		w := lipgloss.Width(h) + 2
		if w > room {
			break
		}
		room -= w
		hints = append(hints, h)
	}
	right := strings.Join(hints, "  ")

	gap := max(1, s.Width-2-lipgloss.Width(left)-lipgloss.Width(right))
	return t.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}
