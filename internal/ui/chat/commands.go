// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/storage"
)

// storeTimeout bounds a single store call.
const storeTimeout = 5 * time.Second

// =============================================================================
// STORE COMMANDS
// =============================================================================

// loadConversations fetches a page of the conversation list. One extra row
// is requested to learn whether another page exists.
func (m Model) loadConversations(offset int) tea.Cmd {
	store, self, limit, parent := m.opts.Store, m.opts.Self.ID, m.opts.PageSize, m.bg.context()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		items, err := store.ListConversations(ctx, self, offset, limit+1)
		if err != nil {
			return ConversationsLoadedMsg{Offset: offset, Err: err}
		}
		hasMore := len(items) > limit
		if hasMore {
			items = items[:limit]
		}
		return ConversationsLoadedMsg{Offset: offset, Items: items, HasMore: hasMore}
	}
}

// refreshConversation reloads one sidebar summary.
func (m Model) refreshConversation(id string) tea.Cmd {
	store, self, parent := m.opts.Store, m.opts.Self.ID, m.bg.context()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		c, err := store.Conversation(ctx, id, self)
		return ConversationUpdatedMsg{Conversation: c, Err: err}
	}
}

// fetchLatest loads the newest page of a conversation.
func (m Model) fetchLatest(conversation string) tea.Cmd {
	store, limit, rec, parent := m.opts.Store, m.opts.PageSize, m.opts.Recorder, m.bg.context()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		start := time.Now()
		page, err := store.Latest(ctx, conversation, limit)
		if err == nil && rec != nil {
			rec.PageLoaded(len(page.Messages), time.Since(start))
		}
		return PageLoadedMsg{Conversation: conversation, Page: page, Err: err}
	}
}

// fetchOlder loads the page before cursor. Requests are spaced by the
// page limiter; the wait happens off the event loop.
func (m Model) fetchOlder(conversation string, cursor storage.Cursor) tea.Cmd {
	store, limit, rec, limiter, parent := m.opts.Store, m.opts.PageSize, m.opts.Recorder, m.limiter, m.bg.context()
	return func() tea.Msg {
		if err := limiter.Wait(parent); err != nil {
			return PageLoadedMsg{Conversation: conversation, Older: true, Err: err}
		}
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		start := time.Now()
		page, err := store.Older(ctx, conversation, cursor, limit)
		if err == nil && rec != nil {
			rec.PageLoaded(len(page.Messages), time.Since(start))
		}
		return PageLoadedMsg{Conversation: conversation, Older: true, Page: page, Err: err}
	}
}

// send stores a pending message and then marks it sent. On failure the
// message comes back marked failed.
func (m Model) send(conversation string, msg *model.Message) tea.Cmd {
	store, parent := m.opts.Store, m.bg.context()
	pending := *msg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		if err := store.Append(ctx, conversation, &pending); err != nil {
			return SentMsg{Conversation: conversation, Message: pending.WithStatus(model.StatusFailed), Err: err}
		}
		if err := store.UpdateStatus(ctx, pending.ID, model.StatusSent); err != nil {
			return SentMsg{Conversation: conversation, Message: pending.WithStatus(model.StatusFailed), Err: err}
		}
		return SentMsg{Conversation: conversation, Message: pending.WithStatus(model.StatusSent)}
	}
}

// markSeen marks the incoming messages of a conversation as seen.
func (m Model) markSeen(conversation string) tea.Cmd {
	store, self, parent := m.opts.Store, m.opts.Self.ID, m.bg.context()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		n, err := store.MarkSeen(ctx, conversation, self)
		return SeenMsg{Conversation: conversation, Changed: n, Err: err}
	}
}

// waitForTranscript blocks until the next transcript batch. It is
// re-issued after every batch.
func (m Model) waitForTranscript() tea.Cmd {
	ch := m.opts.Transcripts
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return transcriptClosedMsg{}
		}
		return TranscriptBatchMsg(b)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// CommandHandler handles one slash command typed into the composer.
type CommandHandler func(m Model, args []string) (Model, tea.Cmd)

var commandHandlers = map[string]CommandHandler{
	"new":    handleNewCommand,
	"n":      handleNewCommand,
	"rename": handleRenameCommand,
	"quit":   handleQuitCommand,
	"q":      handleQuitCommand,
}

// errUnknownCommand is shown for slash commands without a handler.
var errUnknownCommand = errors.New("unknown command")

// handleCommand runs a "/name args" line from the composer.
func (m Model) handleCommand(line string) (Model, tea.Cmd) {
	m.composer.Reset()
	parts := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(parts) == 0 {
		return m, nil
	}
	handler, ok := commandHandlers[strings.ToLower(parts[0])]
	if !ok {
		m.lastErr = fmt.Sprintf("%v: /%s", errUnknownCommand, parts[0])
		return m, nil
	}
	return handler(m, parts[1:])
}

func handleNewCommand(m Model, args []string) (Model, tea.Cmd) {
	conv := model.NewConversation(strings.Join(args, " "))
	store, parent := m.opts.Store, m.bg.context()
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		if err := store.CreateConversation(ctx, conv); err != nil {
			return ConversationUpdatedMsg{Err: fmt.Errorf("create conversation: %w", err)}
		}
		return conversationCreatedMsg{Conversation: conv}
	}
}

func handleRenameCommand(m Model, args []string) (Model, tea.Cmd) {
	id := m.feed.Conversation()
	title := strings.Join(args, " ")
	if id == "" || title == "" {
		m.lastErr = "usage: /rename <title>"
		return m, nil
	}
	store, parent := m.opts.Store, m.bg.context()
	refresh := m.refreshConversation(id)
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storeTimeout)
		defer cancel()
		if err := store.RenameConversation(ctx, id, title); err != nil {
			return ConversationUpdatedMsg{Err: fmt.Errorf("rename conversation: %w", err)}
		}
		return refresh()
	}
}

func handleQuitCommand(m Model, _ []string) (Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

// conversationCreatedMsg opens a conversation created with /new.
type conversationCreatedMsg struct {
	Conversation *model.Conversation
}
