// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/storage"
)

// =============================================================================
// CONVERSATION LIST MESSAGES
// =============================================================================

// ConversationsLoadedMsg delivers a page of the conversation list.
type ConversationsLoadedMsg struct {
	Offset  int
	Items   []*model.Conversation
	HasMore bool
	Err     error
}

// ConversationUpdatedMsg carries a refreshed sidebar summary.
type ConversationUpdatedMsg struct {
	Conversation *model.Conversation
	Err          error
}

// =============================================================================
// HISTORY MESSAGES
// =============================================================================

// PageLoadedMsg delivers a page of history. Older is false for the newest
// page of a conversation that was just opened.
type PageLoadedMsg struct {
	Conversation string
	Older        bool
	Page         storage.Page
	Err          error
}

// SeenMsg reports that a conversation's incoming messages were marked seen.
type SeenMsg struct {
	Conversation string
	Changed      int64
	Err          error
}

// =============================================================================
// SEND MESSAGES
// =============================================================================

// SentMsg reports the outcome of storing an outgoing message. Message has
// its final status, sent or failed.
type SentMsg struct {
	Conversation string
	Message      *model.Message
	Err          error
}

// =============================================================================
// LIVE TRANSCRIPT MESSAGES
// =============================================================================

// TranscriptBatchMsg carries messages appended to a watched transcript.
type TranscriptBatchMsg storage.Batch

// transcriptClosedMsg is delivered once the transcript event channel closes.
type transcriptClosedMsg struct{}
