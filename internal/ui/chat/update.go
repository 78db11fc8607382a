// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/storage"
	"github.com/jeranaias/chatfeed/internal/ui/components"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles window, key and mouse events, store results and the
// feed's threshold notifications. Anchor timers and render results fall
// through to the feed.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.layout()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.feed.Update(msg)

	case ConversationsLoadedMsg:
		return m.handleConversations(msg)

	case ConversationUpdatedMsg:
		if msg.Err != nil {
			m.setErr(msg.Err)
			return m, nil
		}
		if msg.Conversation == nil {
			return m, nil
		}
		m.sidebar.Upsert(msg.Conversation)
		if m.feed.Conversation() == "" {
			m.sidebar.Select(msg.Conversation.ID)
			return m, m.open(msg.Conversation.ID)
		}
		return m, nil

	case conversationCreatedMsg:
		m.sidebar.Upsert(msg.Conversation)
		m.sidebar.Select(msg.Conversation.ID)
		return m, m.open(msg.Conversation.ID)

	case PageLoadedMsg:
		return m.handlePage(msg)

	case SentMsg:
		if msg.Err != nil {
			m.setErr(fmt.Errorf("send failed: %w", msg.Err))
		}
		return m, tea.Batch(
			m.feed.Upsert(msg.Conversation, msg.Message),
			m.refreshConversation(msg.Conversation),
		)

	case SeenMsg:
		if msg.Err != nil {
			m.setErr(msg.Err)
			return m, nil
		}
		m.sidebar.MarkRead(msg.Conversation)
		return m, nil

	case TranscriptBatchMsg:
		return m.handleTranscript(storage.Batch(msg))

	case transcriptClosedMsg:
		return m, nil

	case components.ReachedTopMsg:
		return m, m.requestOlder(msg.Conversation)

	case components.ReachedBottomMsg:
		if msg.Conversation == "" || msg.Conversation != m.feed.Conversation() {
			return m, nil
		}
		return m, m.markSeen(msg.Conversation)

	case components.SidebarReachedBottomMsg:
		return m, m.loadConversations(msg.Offset)

	case components.PickedMsg:
		m.sidebar.Select(msg.ID)
		return m, m.open(msg.ID)
	}

	cmds := []tea.Cmd{m.feed.Update(msg), m.composer.Update(msg)}
	if m.picker.Visible() {
		cmds = append(cmds, m.picker.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		m.Close()
		return m, tea.Quit
	}
	if m.picker.Visible() {
		cmd := m.picker.Update(msg)
		if !m.picker.Visible() && m.focus == FocusComposer {
			cmd = tea.Batch(cmd, m.composer.Focus())
		}
		return m, cmd
	}
	m.lastErr = ""

	switch {
	case key.Matches(msg, m.keys.Jump):
		m.composer.Blur()
		return m, m.picker.Open(m.sidebar.Items())
	case key.Matches(msg, m.keys.Focus):
		if m.focus == FocusComposer && m.sidebarShown {
			m.focus = FocusSidebar
			m.composer.Blur()
			return m, nil
		}
		m.focus = FocusComposer
		return m, m.composer.Focus()
	case key.Matches(msg, m.keys.PageUp):
		return m, m.feed.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		return m, m.feed.PageDown()
	case key.Matches(msg, m.keys.Top):
		return m, m.feed.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		return m, m.feed.GotoBottom()
	}

	if m.focus == FocusSidebar {
		switch {
		case key.Matches(msg, m.keys.Up) || msg.String() == "k":
			m.sidebar.MoveUp()
		case key.Matches(msg, m.keys.Down) || msg.String() == "j":
			return m, m.sidebar.MoveDown()
		case key.Matches(msg, m.keys.Send):
			c := m.sidebar.Selected()
			if c == nil {
				return m, nil
			}
			m.focus = FocusComposer
			return m, tea.Batch(m.open(c.ID), m.composer.Focus())
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		return m, m.feed.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		return m, m.feed.LineDown(1)
	case key.Matches(msg, m.keys.Send):
		return m.submit()
	}
	return m, m.composer.Update(msg)
}

// submit sends the composer text, or runs it as a slash command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.composer.Value()
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}
	conv := m.feed.Conversation()
	if conv == "" {
		m.lastErr = "no conversation open, create one with /new <title>"
		return m, nil
	}
	m.composer.Reset()

	msg := model.NewMessage(m.opts.Self, text)
	return m, tea.Batch(
		m.feed.Upsert(conv, msg),
		m.feed.GotoBottom(),
		m.send(conv, msg),
	)
}

// =============================================================================
// STORE RESULTS
// =============================================================================

func (m Model) handleConversations(msg ConversationsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setErr(msg.Err)
		return m, nil
	}
	if msg.Offset == 0 {
		m.sidebar.SetConversations(msg.Items, msg.HasMore)
	} else {
		m.sidebar.AppendPage(msg.Items, msg.HasMore)
	}

	if m.feed.Conversation() != "" {
		return m, nil
	}
	target := m.opts.Open
	if target == "" && len(msg.Items) > 0 {
		target = msg.Items[0].ID
	}
	if target == "" {
		return m, nil
	}
	m.sidebar.Select(target)
	return m, m.open(target)
}

func (m Model) handlePage(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	conv := msg.Conversation
	if conv != m.feed.Conversation() {
		return m, nil
	}
	if msg.Err != nil {
		m.setErr(fmt.Errorf("load history: %w", msg.Err))
		if msg.Older {
			return m, m.feed.SetLoadingOlder(false)
		}
		return m, m.feed.SetMessages(conv, nil, false)
	}

	page := msg.Page
	var cmds []tea.Cmd
	if msg.Older {
		cmds = append(cmds, m.feed.Prepend(conv, page.Messages, page.HasMore))
	} else {
		cmds = append(cmds, m.feed.SetMessages(conv, page.Messages, page.HasMore), m.markSeen(conv))
	}
	if len(page.Messages) > 0 {
		m.cursor = page.Cursor
	}

	// With everything on one screen the top can never be scrolled to, so
	// keep filling until the screen overflows or history runs out.
	if m.feed.Fits() {
		cmds = append(cmds, m.requestOlder(conv))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleTranscript(b storage.Batch) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.waitForTranscript(), m.refreshConversation(b.ConversationID)}
	if b.ConversationID == m.feed.Conversation() {
		cmds = append(cmds, m.feed.Upsert(b.ConversationID, b.Messages...))
		if m.feed.Mode() == anchor.ModeBottom {
			cmds = append(cmds, m.markSeen(b.ConversationID))
		}
	}
	return m, tea.Batch(cmds...)
}

// =============================================================================
// HELPERS
// =============================================================================

// open switches the feed to conversation and fetches its newest page.
func (m *Model) open(conversation string) tea.Cmd {
	if conversation == "" || conversation == m.feed.Conversation() {
		return nil
	}
	m.cursor = storage.Cursor{}
	if m.opts.Recorder != nil {
		m.opts.Recorder.Switched()
	}
	m.log.Debug("open conversation", "conversation", conversation)
	return tea.Batch(m.feed.Load(conversation), m.fetchLatest(conversation))
}

// requestOlder starts loading the page before the oldest loaded message,
// unless one is already loading or history is exhausted.
func (m *Model) requestOlder(conversation string) tea.Cmd {
	if conversation == "" || conversation != m.feed.Conversation() ||
		m.feed.Loading() || m.feed.LoadingOlder() || !m.feed.HasMore() || m.cursor.IsZero() {
		return nil
	}
	return tea.Batch(m.feed.SetLoadingOlder(true), m.fetchOlder(conversation, m.cursor))
}

// layout sizes every pane for the current window.
func (m *Model) layout() tea.Cmd {
	m.theme.SetSize(m.width, m.height)
	m.sidebarShown = m.theme.GetLayoutMode() != styles.LayoutNarrow
	if !m.sidebarShown && m.focus == FocusSidebar {
		m.focus = FocusComposer
	}

	bodyHeight := max(3, m.height-4)
	feedWidth := m.width
	if m.sidebarShown {
		sw := min(m.opts.SidebarWidth, m.width/3)
		m.sidebar.SetSize(sw, bodyHeight)
		feedWidth -= sw
	}
	m.header.Width = m.width
	m.composer.SetWidth(m.width)
	return m.feed.SetSize(feedWidth, bodyHeight)
}

func (m *Model) setErr(err error) {
	m.lastErr = err.Error()
	m.log.Warn("chat error", "err", err)
}
