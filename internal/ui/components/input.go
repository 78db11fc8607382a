// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// COMPOSER COMPONENT - Message input with character counter
// =============================================================================

// DefaultMaxChars is the composer's character limit.
const DefaultMaxChars = 4096

// Composer is the single line message input below the feed.
type Composer struct {
	input    textinput.Model
	maxChars int
	width    int
	theme    *styles.Theme
}

// NewComposer creates a focused composer.
func NewComposer(theme *styles.Theme) *Composer {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = DefaultMaxChars
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.Cyan)
	ti.Focus()

	return &Composer{
		input:    ti,
		maxChars: DefaultMaxChars,
		width:    80,
		theme:    theme,
	}
}

// SetWidth sets the composer width.
func (c *Composer) SetWidth(width int) {
	c.width = width
	c.input.Width = max(10, width-24)
}

// Value returns the trimmed input.
func (c *Composer) Value() string {
	return strings.TrimSpace(c.input.Value())
}

// Reset clears the input.
func (c *Composer) Reset() {
	c.input.Reset()
}

// Focus focuses the input.
func (c *Composer) Focus() tea.Cmd {
	return c.input.Focus()
}

// Blur removes focus from the input.
func (c *Composer) Blur() {
	c.input.Blur()
}

// Focused reports whether the input has focus.
func (c *Composer) Focused() bool {
	return c.input.Focused()
}

// Update forwards key and blink messages to the text input.
func (c *Composer) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// View renders the input with its counter right aligned.
func (c *Composer) View() string {
	counter := c.renderCounter(len([]rune(c.input.Value())))
	gap := max(1, c.width-2-lipgloss.Width(c.input.View())-lipgloss.Width(counter))
	return c.theme.InputContainer.
		Width(c.width).
		Render(c.input.View() + strings.Repeat(" ", gap) + counter)
}

// renderCounter shows "1,234 / 4,096" colored by how full the input is.
func (c *Composer) renderCounter(count int) string {
	if count == 0 {
		return ""
	}
	style := c.theme.Timestamp
	if c.maxChars > 0 {
		switch pct := count * 100 / c.maxChars; {
		case pct >= 90:
			style = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
		case pct >= 75:
			style = lipgloss.NewStyle().Foreground(styles.Amber)
		}
	}
	return style.Render(humanize.Comma(int64(count)) + " / " + humanize.Comma(int64(c.maxChars)))
}
