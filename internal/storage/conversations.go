// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/util"
)

// =============================================================================
// CONVERSATIONS
// =============================================================================

// CreateConversation inserts c. An existing conversation with the same ID
// keeps its stored fields.
func (s *Store) CreateConversation(ctx context.Context, c *model.Conversation) error {
	if c == nil || c.ID == "" {
		return errors.New("conversation id is required")
	}
	db, err := s.conn()
	if err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	_, err = db.ExecContext(ctx, `
		INSERT OR IGNORE INTO conversations (id, title, created_at, updated_at, last_preview, last_sender)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano(), c.LastPreview, c.LastSender)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

// RenameConversation changes the title.
func (s *Store) RenameConversation(ctx context.Context, id, title string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE conversations SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return fmt.Errorf("rename conversation: %w", err)
	}
	return requireAffected(res, ErrConversationNotFound)
}

// Conversation loads one conversation. Unread counts messages not from self
// that have not been marked seen.
func (s *Store) Conversation(ctx context.Context, id, self string) (*model.Conversation, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, conversationSelect+` WHERE c.id = ?`, self, id)
	c, err := scanConversation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return c, nil
}

// ListConversations returns conversations, most recently updated first.
func (s *Store) ListConversations(ctx context.Context, self string, offset, limit int) ([]*model.Conversation, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx,
		conversationSelect+` ORDER BY c.updated_at DESC, c.id LIMIT ? OFFSET ?`,
		self, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []*model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountConversations returns the number of stored conversations.
func (s *Store) CountConversations(ctx context.Context) (int, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}

// SearchConversations matches titles and message text, case-insensitively.
func (s *Store) SearchConversations(ctx context.Context, self, query string, limit int) ([]*model.Conversation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListConversations(ctx, self, 0, limit)
	}
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	like := "%" + escapeLike(query) + "%"
	rows, err := db.QueryContext(ctx, conversationSelect+`
		WHERE c.title LIKE ? ESCAPE '\'
		   OR EXISTS (SELECT 1 FROM messages m WHERE m.conversation_id = c.id AND m.text LIKE ? ESCAPE '\')
		ORDER BY c.updated_at DESC, c.id LIMIT ?`,
		self, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search conversations: %w", err)
	}
	defer rows.Close()

	var out []*model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteConversation removes a conversation and its messages.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return requireAffected(res, ErrConversationNotFound)
}

// FormatConversationList formats conversations as a plain-text table.
func FormatConversationList(convs []*model.Conversation) string {
	if len(convs) == 0 {
		return "No conversations found."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("ID", 14) + " " + util.PadRight("Updated", 17) + " " +
		util.PadRight("Unread", 6) + " Title\n")
	sb.WriteString(strings.Repeat("-", 64) + "\n")
	for _, c := range convs {
		unread := ""
		if c.Unread > 0 {
			unread = fmt.Sprint(c.Unread)
		}
		sb.WriteString(util.PadRight(util.Truncate(c.ID, 14), 14) + " " +
			util.PadRight(c.UpdatedAt.Local().Format("2006-01-02 15:04"), 17) + " " +
			util.PadRight(unread, 6) + " " +
			util.Truncate(c.GetTitle(), 30) + "\n")
	}
	return sb.String()
}

// =============================================================================
// HELPERS
// =============================================================================

const conversationSelect = `
	SELECT c.id, c.title, c.created_at, c.updated_at, c.last_preview, c.last_sender,
	       (SELECT COUNT(*) FROM messages m
	         WHERE m.conversation_id = c.id AND m.seen = 0 AND m.sender_id != ?) AS unread
	  FROM conversations c`

type scanner interface {
	Scan(dest ...any) error
}

func scanConversation(row scanner) (*model.Conversation, error) {
	var (
		c                model.Conversation
		created, updated int64
	)
	if err := row.Scan(&c.ID, &c.Title, &created, &updated, &c.LastPreview, &c.LastSender, &c.Unread); err != nil {
		return nil, err
	}
	c.CreatedAt = time.Unix(0, created)
	c.UpdatedAt = time.Unix(0, updated)
	return &c, nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
