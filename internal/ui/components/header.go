// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT - Title bar with the open conversation
// =============================================================================

// Header is the one line title bar above the feed.
type Header struct {
	Brand        string // application name shown on the left
	Conversation string // title of the open conversation
	Messages     int    // loaded message count
	Watching     string // transcript path being followed, if any
	Width        int
	Compact      bool // always use the compact form
}

// NewHeader creates a header with default values.
func NewHeader() *Header {
	return &Header{Brand: "chatfeed", Width: 80}
}

// View renders the header. Narrow terminals get the compact form.
func (h *Header) View(t *styles.Theme) string {
	if h.Compact || t.GetLayoutMode() == styles.LayoutNarrow || h.Width < 60 {
		return h.ViewCompact(t)
	}

	accent := lipgloss.NewStyle().Foreground(styles.Purple)
	brand := accent.Render("< ") +
		lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).Render(h.Brand) +
		accent.Render(" >")

	left := brand
	if h.Conversation != "" {
		left += "  " + t.HeaderTitle.Render(h.Conversation)
	}

	var meta []string
	if h.Conversation != "" {
		meta = append(meta, humanize.Comma(int64(h.Messages))+" loaded")
	}
	if h.Watching != "" {
		meta = append(meta, "following "+h.Watching)
	}
	right := t.HeaderMeta.Render(strings.Join(meta, " | "))

	inner := h.Width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = max(1, inner-lipgloss.Width(left))
	}
	return t.Header.Width(h.Width).MaxWidth(h.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// ViewCompact renders "<chatfeed> | title" for narrow terminals.
func (h *Header) ViewCompact(t *styles.Theme) string {
	accent := lipgloss.NewStyle().Foreground(styles.Purple)
	parts := []string{accent.Render("<") + lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).Render(h.Brand) + accent.Render(">")}
	if h.Conversation != "" {
		parts = append(parts, t.HeaderTitle.Render(h.Conversation))
	}
	sep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	return t.Header.Width(h.Width).MaxWidth(h.Width).Render(strings.Join(parts, sep))
}
