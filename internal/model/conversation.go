// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a chat thread shown in the sidebar. Messages are loaded
// page by page and are not held here.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sidebar metadata
	LastPreview string `json:"last_preview,omitempty"`
	LastSender  string `json:"last_sender,omitempty"`
	Unread      int    `json:"unread,omitempty"`
}

// NewConversation creates a new conversation with a generated ID.
func NewConversation(title string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetTitle returns the title, or a placeholder for untitled conversations.
func (c *Conversation) GetTitle() string {
	if c.Title == "" {
		return "Untitled conversation"
	}
	return c.Title
}

// Touch records a new last message on the conversation.
func (c *Conversation) Touch(msg *Message) {
	if msg == nil {
		return
	}
	c.LastPreview = msg.Preview(60)
	c.LastSender = msg.Sender.DisplayName()
	if msg.CreatedAt.After(c.UpdatedAt) {
		c.UpdatedAt = msg.CreatedAt
	}
}
