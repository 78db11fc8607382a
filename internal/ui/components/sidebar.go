// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
	"github.com/jeranaias/chatfeed/internal/util"
)

// =============================================================================
// SIDEBAR COMPONENT - Conversation list
// =============================================================================

// SidebarReachedBottomMsg asks the host for the next page of
// conversations, starting at Offset.
type SidebarReachedBottomMsg struct {
	Offset int
}

// sidebarPrefetch is how close to the end of the loaded list the cursor
// may get before the next page is requested.
const sidebarPrefetch = 2

// Sidebar lists conversations most recent first.
type Sidebar struct {
	theme *styles.Theme

	items    []*model.Conversation
	selected int
	offset   int

	hasMore bool
	loading bool

	width, height int
}

// NewSidebar creates an empty sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme, width: 28, height: 20}
}

// SetSize sets the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width, s.height = width, height
	s.clampOffset()
}

// SetConversations replaces the list with the first page.
func (s *Sidebar) SetConversations(items []*model.Conversation, hasMore bool) {
	s.items = append([]*model.Conversation(nil), items...)
	s.hasMore = hasMore
	s.loading = false
	if s.selected >= len(s.items) {
		s.selected = max(0, len(s.items)-1)
	}
	s.clampOffset()
}

// AppendPage adds the next page below the loaded conversations. Items
// already listed are skipped.
func (s *Sidebar) AppendPage(items []*model.Conversation, hasMore bool) {
	seen := make(map[string]bool, len(s.items))
	for _, c := range s.items {
		seen[c.ID] = true
	}
	for _, c := range items {
		if !seen[c.ID] {
			s.items = append(s.items, c)
		}
	}
	s.hasMore = hasMore
	s.loading = false
}

// Upsert updates a conversation's summary and moves it to the top, keeping
// the cursor on the same conversation.
func (s *Sidebar) Upsert(c *model.Conversation) {
	if c == nil {
		return
	}
	current := s.Selected()
	for i, it := range s.items {
		if it.ID == c.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.items = append([]*model.Conversation{c}, s.items...)
	if current != nil {
		s.Select(current.ID)
	}
}

// Len returns the number of loaded conversations.
func (s *Sidebar) Len() int { return len(s.items) }

// HasMore reports whether more conversations can be loaded.
func (s *Sidebar) HasMore() bool { return s.hasMore }

// Items returns the loaded conversations.
func (s *Sidebar) Items() []*model.Conversation { return s.items }

// Find returns the loaded conversation with the given ID, or nil.
func (s *Sidebar) Find(id string) *model.Conversation {
	for _, c := range s.items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Selected returns the highlighted conversation, or nil.
func (s *Sidebar) Selected() *model.Conversation {
	if s.selected < 0 || s.selected >= len(s.items) {
		return nil
	}
	return s.items[s.selected]
}

// Select moves the cursor to the conversation with the given ID.
func (s *Sidebar) Select(id string) bool {
	for i, c := range s.items {
		if c.ID == id {
			s.selected = i
			s.clampOffset()
			return true
		}
	}
	return false
}

// MarkRead clears the unread count of a conversation.
func (s *Sidebar) MarkRead(id string) {
	for _, c := range s.items {
		if c.ID == id {
			c.Unread = 0
		}
	}
}

// MoveUp moves the cursor up.
func (s *Sidebar) MoveUp() {
	if s.selected > 0 {
		s.selected--
		s.clampOffset()
	}
}

// MoveDown moves the cursor down and returns a page request when the cursor
// nears the end of the loaded list.
func (s *Sidebar) MoveDown() tea.Cmd {
	if s.selected < len(s.items)-1 {
		s.selected++
		s.clampOffset()
	}
	return s.reachedBottom()
}

func (s *Sidebar) reachedBottom() tea.Cmd {
	if !s.hasMore || s.loading || s.selected < len(s.items)-1-sidebarPrefetch {
		return nil
	}
	s.loading = true
	offset := len(s.items)
	return func() tea.Msg { return SidebarReachedBottomMsg{Offset: offset} }
}

// rows is the number of conversations that fit; each takes two lines.
func (s *Sidebar) rows() int {
	return max(1, (s.height-1)/2)
}

func (s *Sidebar) clampOffset() {
	rows := s.rows()
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+rows {
		s.offset = s.selected - rows + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// View renders the visible part of the list.
func (s *Sidebar) View() string {
	inner := max(4, s.width-3)
	var lines []string
	lines = append(lines, s.theme.HeaderTitle.Render(util.Truncate("Conversations", inner)))

	if len(s.items) == 0 {
		lines = append(lines, s.theme.SidebarPreview.Render("none yet"))
	}
	end := min(len(s.items), s.offset+s.rows())
	for i := s.offset; i < end; i++ {
		c := s.items[i]
		title := c.GetTitle()
		badge := ""
		if c.Unread > 0 {
			badge = " " + s.theme.SidebarUnread.Render("("+strconv.Itoa(c.Unread)+")")
		}
		title = util.Truncate(title, inner-lipgloss.Width(badge))
		style := s.theme.SidebarItem
		if i == s.selected {
			style = s.theme.SidebarItemSelected
		}
		lines = append(lines, style.Render(title)+badge)

		preview := c.LastPreview
		if c.LastSender != "" && preview != "" {
			preview = c.LastSender + ": " + preview
		}
		lines = append(lines, s.theme.SidebarPreview.Render(util.Truncate(preview, inner)))
	}
	if s.loading {
		lines = append(lines, s.theme.SidebarPreview.Render("loading..."))
	}

	return s.theme.Sidebar.
		Width(s.width - 1).
		Height(s.height).
		Render(strings.Join(lines, "\n"))
}
