// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatfeed/internal/cluster"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar             lipgloss.Style
	SidebarItem         lipgloss.Style
	SidebarItemSelected lipgloss.Style
	SidebarPreview      lipgloss.Style
	SidebarUnread       lipgloss.Style

	// ==========================================================================
	// FEED STYLES
	// ==========================================================================

	OutgoingBubble lipgloss.Style
	IncomingBubble lipgloss.Style
	SenderName     lipgloss.Style
	Avatar         lipgloss.Style
	Timestamp      lipgloss.Style
	MediaLabel     lipgloss.Style
	EmptyState     lipgloss.Style
	Typing         lipgloss.Style
	Spinner        lipgloss.Style

	ReceiptSent   lipgloss.Style
	ReceiptSeen   lipgloss.Style
	ReceiptFailed lipgloss.Style

	// ==========================================================================
	// COMPOSER AND STATUS BAR STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	StatusBar        lipgloss.Style
	ShortcutKey      lipgloss.Style
	ShortcutDesc     lipgloss.Style
	ErrorText        lipgloss.Style
}

// NewTheme creates a theme for the given mode: "dark", "light", or "auto"
// to follow the terminal background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch mode {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextPrimary).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Padding(0, 1)

	t.SidebarItemSelected = lipgloss.NewStyle().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)

	t.SidebarPreview = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(1)

	t.SidebarUnread = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Message bubbles. Borders are replaced per message by Bubble.
	t.OutgoingBubble = lipgloss.NewStyle().
		Foreground(OutgoingBubbleFg).
		BorderForeground(OutgoingBubbleBorder).
		Padding(0, 1)

	t.IncomingBubble = lipgloss.NewStyle().
		Foreground(IncomingBubbleFg).
		BorderForeground(IncomingBubbleBorder).
		Padding(0, 1)

	t.SenderName = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Avatar = lipgloss.NewStyle().
		Background(AvatarBg).
		Foreground(AvatarFg).
		Bold(true).
		Width(4).
		Align(lipgloss.Center)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.MediaLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Typing = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	// Receipts
	t.ReceiptSent = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ReceiptSeen = lipgloss.NewStyle().
		Foreground(SuccessHighContrast)

	t.ReceiptFailed = lipgloss.NewStyle().
		Foreground(ErrorHighContrast).
		Bold(true)

	// Composer
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(ErrorHighContrast)
}

// =============================================================================
// BUBBLE BORDERS
// =============================================================================

// BubbleBorder returns a border whose corners are rounded where c says so
// and square elsewhere.
func BubbleBorder(c cluster.Corners) lipgloss.Border {
	b := lipgloss.RoundedBorder()
	sq := lipgloss.NormalBorder()
	if !c.TopLeft {
		b.TopLeft = sq.TopLeft
	}
	if !c.TopRight {
		b.TopRight = sq.TopRight
	}
	if !c.BottomLeft {
		b.BottomLeft = sq.BottomLeft
	}
	if !c.BottomRight {
		b.BottomRight = sq.BottomRight
	}
	return b
}

// Bubble returns the bubble style for a message with the given direction
// and corner rounding.
func (t *Theme) Bubble(dir cluster.Direction, c cluster.Corners) lipgloss.Style {
	base := t.IncomingBubble
	if dir == cluster.Outgoing {
		base = t.OutgoingBubble
	}
	return base.BorderStyle(BubbleBorder(c))
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, sidebar hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
