// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jeranaias/chatfeed/internal/model"
)

// =============================================================================
// PAGING
// =============================================================================

// Cursor marks a position in a conversation's history. The zero Cursor
// means "after the newest message".
type Cursor struct {
	CreatedAt int64 // unix nanoseconds
	Seq       int64
}

// IsZero reports whether c is the end-of-history cursor.
func (c Cursor) IsZero() bool { return c == Cursor{} }

// Page is a contiguous run of history, oldest message first.
type Page struct {
	Messages []*model.Message
	// Cursor points at the oldest message in the page; pass it to Older for
	// the page before this one.
	Cursor Cursor
	// HasMore reports whether older messages exist before Cursor.
	HasMore bool
}

// Latest returns the newest limit messages of a conversation.
func (s *Store) Latest(ctx context.Context, conversationID string, limit int) (Page, error) {
	return s.Older(ctx, conversationID, Cursor{}, limit)
}

// Older returns up to limit messages strictly before the cursor.
func (s *Store) Older(ctx context.Context, conversationID string, before Cursor, limit int) (Page, error) {
	db, err := s.conn()
	if err != nil {
		return Page{}, err
	}
	if limit <= 0 {
		limit = 30
	}
	if err := s.requireConversation(ctx, db, conversationID); err != nil {
		return Page{}, err
	}

	query := messageSelect + ` WHERE conversation_id = ?`
	args := []any{conversationID}
	if !before.IsZero() {
		query += ` AND (created_at < ? OR (created_at = ? AND seq < ?))`
		args = append(args, before.CreatedAt, before.CreatedAt, before.Seq)
	}
	query += ` ORDER BY created_at DESC, seq DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()

	var (
		msgs    []*model.Message
		cursors []Cursor
	)
	for rows.Next() {
		m, cur, err := scanMessage(rows)
		if err != nil {
			return Page{}, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
		cursors = append(cursors, cur)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	page := Page{Cursor: before}
	if len(msgs) > limit {
		page.HasMore = true
		msgs, cursors = msgs[:limit], cursors[:limit]
	}
	if len(msgs) > 0 {
		page.Cursor = cursors[len(cursors)-1]
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	page.Messages = msgs
	return page, nil
}

// =============================================================================
// WRITES
// =============================================================================

// Append stores messages in a conversation. Messages without an ID get a
// generated one, a zero CreatedAt becomes now and an empty Status becomes
// sent. A message whose ID already exists is updated in place and keeps
// its position. The conversation's last-message summary follows the
// newest appended message when no stored message is newer.
func (s *Store) Append(ctx context.Context, conversationID string, msgs ...*model.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, conversationID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConversationNotFound
		}
		if err != nil {
			return fmt.Errorf("load conversation: %w", err)
		}

		var newest *model.Message
		for _, m := range msgs {
			if m == nil {
				continue
			}
			m.EnsureID()
			if m.CreatedAt.IsZero() {
				m.CreatedAt = time.Now()
			}
			if m.Status == "" {
				m.Status = model.StatusSent
			}
			if err := upsertMessage(ctx, tx, conversationID, m); err != nil {
				return err
			}
			if newest == nil || !m.CreatedAt.Before(newest.CreatedAt) {
				newest = m
			}
		}

		if newest == nil {
			return nil
		}
		var latest int64
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(created_at), 0) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&latest)
		if err != nil {
			return fmt.Errorf("load newest message: %w", err)
		}
		if newest.CreatedAt.UnixNano() < latest {
			return nil
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE conversations SET updated_at = ?, last_preview = ?, last_sender = ? WHERE id = ?`,
			newest.CreatedAt.UnixNano(), newest.Preview(60), newest.Sender.DisplayName(), conversationID)
		if err != nil {
			return fmt.Errorf("update conversation: %w", err)
		}
		return nil
	})
}

func upsertMessage(ctx context.Context, tx *sql.Tx, conversationID string, m *model.Message) error {
	var media any
	if m.Media != nil {
		data, err := json.Marshal(m.Media)
		if err != nil {
			return fmt.Errorf("encode media: %w", err)
		}
		media = string(data)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, sender_name, created_at, text, media, status, seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			media = excluded.media,
			status = excluded.status,
			seen = excluded.seen`,
		m.ID, conversationID, m.Sender.ID, m.Sender.Name, m.CreatedAt.UnixNano(),
		m.Text, media, string(m.Status), m.Seen)
	if err != nil {
		return fmt.Errorf("insert message %s: %w", m.ID, err)
	}
	return nil
}

// Message loads a single message by ID.
func (s *Store) Message(ctx context.Context, id string) (*model.Message, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	m, _, err := scanMessage(db.QueryRowContext(ctx, messageSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load message: %w", err)
	}
	return m, nil
}

// UpdateStatus sets the delivery status of a message.
func (s *Store) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE messages SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireAffected(res, ErrMessageNotFound)
}

// MarkSeen marks every message in the conversation not sent by self as
// seen and returns how many changed.
func (s *Store) MarkSeen(ctx context.Context, conversationID, self string) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx,
		`UPDATE messages SET seen = 1 WHERE conversation_id = ? AND seen = 0 AND sender_id != ?`,
		conversationID, self)
	if err != nil {
		return 0, fmt.Errorf("mark seen: %w", err)
	}
	return res.RowsAffected()
}

// CountMessages returns the number of messages in a conversation.
func (s *Store) CountMessages(ctx context.Context, conversationID string) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE conversation_id = ?`, conversationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// =============================================================================
// HELPERS
// =============================================================================

const messageSelect = `
	SELECT seq, id, sender_id, sender_name, created_at, text, media, status, seen
	  FROM messages`

func scanMessage(row scanner) (*model.Message, Cursor, error) {
	var (
		m       model.Message
		cur     Cursor
		media   sql.NullString
		status  string
		created int64
	)
	err := row.Scan(&cur.Seq, &m.ID, &m.Sender.ID, &m.Sender.Name, &created, &m.Text, &media, &status, &m.Seen)
	if err != nil {
		return nil, Cursor{}, err
	}
	cur.CreatedAt = created
	m.CreatedAt = time.Unix(0, created)
	m.Status = model.ParseStatus(status)
	if media.Valid && media.String != "" {
		var md model.Media
		if err := json.Unmarshal([]byte(media.String), &md); err != nil {
			return nil, Cursor{}, fmt.Errorf("decode media: %w", err)
		}
		m.Media = &md
	}
	return &m, cur, nil
}

func (s *Store) requireConversation(ctx context.Context, db *sql.DB, id string) error {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM conversations WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	return nil
}
