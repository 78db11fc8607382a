// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the domain types shared by the feed widget, the
// cluster classifier and the message store.
//
// # Key Types
//
//   - Message: Single chat message with sender, content, status and seen flag
//   - Sender: Identity used for clustering and headers
//   - Media: Attachment descriptor (image, video, file, gif)
//   - Conversation: Sidebar entry for a chat thread
//
// # Usage
//
//	msg := model.NewMessage(model.Sender{ID: "u1", Name: "Ada"}, "Hello!")
//	msg = msg.WithStatus(model.StatusSent)
//
// Messages must carry a stable ID. Key falls back to the list position for
// records without one, which is only correct while the list is append-only.
package model
