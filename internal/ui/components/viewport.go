// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// VIEWPORT ADAPTER
// =============================================================================

// scrollContainer exposes a bubbles viewport to the anchor controller.
// Units are lines.
type scrollContainer struct {
	m *viewport.Model
}

var _ anchor.Viewport = scrollContainer{}

func (s scrollContainer) ScrollTop() int     { return s.m.YOffset }
func (s scrollContainer) ScrollHeight() int  { return s.m.TotalLineCount() }
func (s scrollContainer) ClientHeight() int  { return s.m.Height }
func (s scrollContainer) SetScrollTop(n int) { s.m.SetYOffset(n) }

// geometry is the live position, for drawing. The controller's own
// Position lags content changes until their growth settles.
func (s scrollContainer) geometry() anchor.Position {
	return anchor.Position{
		ScrollTop:    s.ScrollTop(),
		ScrollHeight: s.ScrollHeight(),
		ClientHeight: s.ClientHeight(),
	}
}

// newFeedViewport returns a viewport whose own key bindings are disabled;
// the host decides which keys scroll the feed.
func newFeedViewport() viewport.Model {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()
	vp.KeyMap = viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithDisabled()),
		PageUp:       key.NewBinding(key.WithDisabled()),
		HalfPageUp:   key.NewBinding(key.WithDisabled()),
		HalfPageDown: key.NewBinding(key.WithDisabled()),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
	return vp
}

// =============================================================================
// SCROLL BAR
// =============================================================================

// renderScrollBar draws a one column scroll bar for pos.
func renderScrollBar(pos anchor.Position, height int) string {
	if height <= 0 {
		return ""
	}
	track := lipgloss.NewStyle().Foreground(styles.Overlay)
	thumb := lipgloss.NewStyle().Foreground(styles.Purple)

	if pos.ScrollHeight <= pos.ClientHeight || pos.ScrollHeight == 0 {
		return track.Render(strings.TrimSuffix(strings.Repeat("|\n", height), "\n"))
	}

	size := height * pos.ClientHeight / pos.ScrollHeight
	if size < 1 {
		size = 1
	}
	room := height - size
	at := 0
	if limit := pos.MaxScrollTop(); limit > 0 {
		at = room * pos.ScrollTop / limit
	}

	var b strings.Builder
	for i := 0; i < height; i++ {
		if i >= at && i < at+size {
			b.WriteString(thumb.Render("#"))
		} else {
			b.WriteString(track.Render("|"))
		}
		if i < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
