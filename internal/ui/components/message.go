// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jeranaias/chatfeed/internal/cluster"
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
	"github.com/jeranaias/chatfeed/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE
// =============================================================================

// avatarGutter is the column reserved left of incoming bubbles.
const avatarGutter = 5

// MessageView renders one message of the feed.
type MessageView struct {
	Message      *model.Message
	Presentation cluster.Presentation

	// Body is the pre-rendered content; when empty the text is wrapped
	// plainly.
	Body string

	Width         int
	ShowTimestamp bool
	Now           time.Time

	// PendingFrame is the spinner frame shown on a pending receipt.
	PendingFrame string
}

// BubbleContentWidth returns the text width available inside a bubble for
// a feed of the given width.
func BubbleContentWidth(feedWidth int) int {
	w := feedWidth*3/4 - avatarGutter - 4
	if w < 10 {
		w = 10
	}
	return w
}

// Render renders the message with its header, avatar and receipt as the
// presentation dictates.
func (v MessageView) Render(t *styles.Theme) string {
	p := v.Presentation
	bubble := t.Bubble(p.Direction, p.Corners).Render(v.content(t))

	if p.Direction == cluster.Outgoing {
		lines := []string{bubble}
		if p.ShowReceipt {
			lines = append(lines, v.receipt(t))
		}
		block := lipgloss.JoinVertical(lipgloss.Right, lines...)
		return lipgloss.PlaceHorizontal(v.Width, lipgloss.Right, block)
	}

	gutter := strings.Repeat(" ", avatarGutter)
	avatar := gutter
	if p.ShowAvatar {
		avatar = t.Avatar.Render(v.Message.Sender.Initials()) + " "
	}
	row := lipgloss.JoinHorizontal(lipgloss.Bottom, avatar, bubble)

	if !p.ShowHeader {
		return row
	}
	header := gutter + t.SenderName.Render(v.Message.Sender.DisplayName())
	if ts := v.timestamp(t); ts != "" {
		header += "  " + ts
	}
	return header + "\n" + row
}

func (v MessageView) content(t *styles.Theme) string {
	m := v.Message
	width := BubbleContentWidth(v.Width)

	var parts []string
	switch {
	case v.Body != "":
		parts = append(parts, v.Body)
	case strings.Contains(m.Text, "```"):
		parts = append(parts, RenderCodeBlocks(m.Text, width))
	case m.Text != "":
		parts = append(parts, strings.Join(util.Wrap(m.Text, width), "\n"))
	}
	if m.Media != nil {
		parts = append(parts, t.MediaLabel.Render(util.Truncate("["+m.Media.Label()+"]", width)))
	}
	if len(parts) == 0 {
		return " "
	}
	return strings.Join(parts, "\n")
}

func (v MessageView) receipt(t *styles.Theme) string {
	m := v.Message
	var text string
	switch {
	case m.Status == model.StatusPending:
		return t.Spinner.Render(v.PendingFrame) + t.ReceiptSent.Render(" sending")
	case m.Status == model.StatusFailed:
		return t.ReceiptFailed.Render(styles.ReceiptIndicators.Failed)
	case m.Seen:
		text = t.ReceiptSeen.Render(styles.ReceiptIndicators.Seen)
	default:
		text = t.ReceiptSent.Render(styles.ReceiptIndicators.Sent)
	}
	if ts := v.timestamp(t); ts != "" {
		text += t.Timestamp.Render(" · ") + ts
	}
	return text
}

func (v MessageView) timestamp(t *styles.Theme) string {
	if !v.ShowTimestamp || v.Message.CreatedAt.IsZero() {
		return ""
	}
	now := v.Now
	if now.IsZero() {
		now = time.Now()
	}
	return t.Timestamp.Render(FormatTimestamp(v.Message.CreatedAt, now))
}

// FormatTimestamp renders a message time relative to now: "just now"
// under a minute, humanized within a day, and a date beyond that.
func FormatTimestamp(ts, now time.Time) string {
	d := now.Sub(ts)
	switch {
	case d < time.Minute && d > -time.Minute:
		return "just now"
	case d < 24*time.Hour && d > 0:
		return humanize.RelTime(ts, now, "ago", "from now")
	case ts.Year() == now.Year():
		return ts.Format("Jan 2, 3:04 PM")
	default:
		return ts.Format("Jan 2 2006, 3:04 PM")
	}
}

// =============================================================================
// TYPING INDICATOR
// =============================================================================

// TypingText describes who is typing, or "" when nobody is.
func TypingText(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0] + " is typing..."
	case 2:
		return names[0] + " and " + names[1] + " are typing..."
	default:
		return humanize.Comma(int64(len(names))) + " people are typing..."
	}
}
