// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations and their message history.
//
// Messages live in SQLite (modernc.org/sqlite, no cgo) and are read back in
// pages, newest first, using a Cursor so that an older page can be fetched
// when the feed reaches its top.
//
// # Key Types
//
//   - Store: conversations and messages
//   - Page, Cursor: history paging
//   - TranscriptWatcher: tails *.jsonl transcripts into the store
//
// # Usage
//
//	store, err := storage.Open(path)
//	page, err := store.Latest(ctx, convID, 30)
//	older, err := store.Older(ctx, convID, page.Cursor, 30)
//
// Transcripts are JSON Lines, one message per line, in the same shape the
// feed uses (id, user{id,name}, createdAt, text, media, status, seen).
package storage
