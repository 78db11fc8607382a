// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the delivery state of a message.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a stored status string, defaulting to sent.
func ParseStatus(s string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending
	case StatusFailed:
		return StatusFailed
	default:
		return StatusSent
	}
}

// =============================================================================
// MEDIA TYPE
// =============================================================================

// MediaKind identifies the kind of attached media.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaFile  MediaKind = "file"
	MediaGIF   MediaKind = "gif"
)

// Media describes an attachment. Loading and decoding happen elsewhere;
// the feed only renders the descriptor.
type Media struct {
	Kind MediaKind `json:"type"`
	URL  string    `json:"url"`
	Size string    `json:"size,omitempty"`
	Name string    `json:"name,omitempty"`
}

// Label returns a short human-readable description of the attachment.
func (m *Media) Label() string {
	if m == nil {
		return ""
	}
	name := m.Name
	if name == "" {
		name = m.URL
	}
	if m.Size != "" {
		return string(m.Kind) + ": " + name + " (" + m.Size + ")"
	}
	return string(m.Kind) + ": " + name
}

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// DisplayName returns the name to show in a cluster header.
func (s Sender) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.ID != "" {
		return s.ID
	}
	return "Unknown"
}

// Initials returns up to two letters used for the avatar badge.
func (s Sender) Initials() string {
	fields := strings.Fields(s.DisplayName())
	var b strings.Builder
	for _, f := range fields {
		r := []rune(f)
		if len(r) == 0 {
			continue
		}
		b.WriteString(strings.ToUpper(string(r[0])))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single chat message. Messages are treated as immutable once
// they are handed to the feed; status changes replace the record.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"user"`
	CreatedAt time.Time `json:"createdAt"`

	// Content
	Text  string `json:"text,omitempty"`
	Media *Media `json:"media,omitempty"`

	// Delivery
	Status Status `json:"status,omitempty"`
	Seen   bool   `json:"seen,omitempty"`
}

// NewMessage creates a pending outgoing message with a generated ID.
func NewMessage(sender Sender, text string) *Message {
	return &Message{
		ID:        NewID(),
		Sender:    sender,
		CreatedAt: time.Now(),
		Text:      text,
		Status:    StatusPending,
	}
}

// NewID returns a fresh stable message identifier.
func NewID() string {
	return "msg_" + uuid.NewString()
}

// SenderID returns the sender identity used for clustering.
func (m *Message) SenderID() string {
	if m == nil {
		return ""
	}
	return m.Sender.ID
}

// EnsureID assigns a generated ID when the message has none.
func (m *Message) EnsureID() {
	if m.ID == "" {
		m.ID = NewID()
	}
}

// WithStatus returns a copy of the message with the given status.
func (m *Message) WithStatus(s Status) *Message {
	cp := *m
	cp.Status = s
	return &cp
}

// IsEmpty returns true if the message has neither text nor media.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Text) == "" && m.Media == nil
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.Text
	if content == "" && m.Media != nil {
		content = "[" + m.Media.Label() + "]"
	}
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if maxLen <= 3 || len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// Key returns the render key for the message at position i. A stable ID is
// the contract; the positional fallback is only safe for append-only lists.
func Key(m *Message, i int) string {
	if m != nil && m.ID != "" {
		return m.ID
	}
	return "#" + strconv.Itoa(i)
}
