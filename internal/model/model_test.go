// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessage(t *testing.T) {
	msg := NewMessage(Sender{ID: "u1", Name: "Ada"}, "hello")

	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
	if msg.Status != StatusPending {
		t.Errorf("Status = %q, want %q", msg.Status, StatusPending)
	}
	if msg.SenderID() != "u1" {
		t.Errorf("SenderID() = %q, want %q", msg.SenderID(), "u1")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestMessage_WithStatusCopies(t *testing.T) {
	orig := NewMessage(Sender{ID: "u1"}, "hi")
	sent := orig.WithStatus(StatusSent)

	if orig.Status != StatusPending {
		t.Errorf("original Status = %q, want pending", orig.Status)
	}
	if sent.Status != StatusSent {
		t.Errorf("copy Status = %q, want sent", sent.Status)
	}
	if sent.ID != orig.ID {
		t.Errorf("copy ID = %q, want %q", sent.ID, orig.ID)
	}
}

func TestMessage_EnsureID(t *testing.T) {
	msg := &Message{Text: "x"}
	msg.EnsureID()
	if msg.ID == "" {
		t.Fatal("EnsureID left ID empty")
	}
	id := msg.ID
	msg.EnsureID()
	if msg.ID != id {
		t.Errorf("EnsureID replaced existing ID %q with %q", id, msg.ID)
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		max  int
		want string
	}{
		{"short", Message{Text: "hello"}, 10, "hello"},
		{"collapses whitespace", Message{Text: "a\n\nb   c"}, 10, "a b c"},
		{"truncates", Message{Text: "abcdefghij"}, 6, "abc..."},
		{"unicode", Message{Text: "日本語のテキスト"}, 5, "日本..."},
		{"media only", Message{Media: &Media{Kind: MediaImage, Name: "cat.png"}}, 40, "[image: cat.png]"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.Preview(tc.max); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.max, got, tc.want)
			}
		})
	}
}

func TestKeyFallsBackToPosition(t *testing.T) {
	if got := Key(&Message{ID: "abc"}, 3); got != "abc" {
		t.Errorf("Key = %q, want abc", got)
	}
	if got := Key(&Message{}, 3); got != "#3" {
		t.Errorf("Key = %q, want #3", got)
	}
	if got := Key(nil, 0); got != "#0" {
		t.Errorf("Key(nil) = %q, want #0", got)
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"pending": StatusPending,
		"FAILED":  StatusFailed,
		"sent":    StatusSent,
		"":        StatusSent,
		"bogus":   StatusSent,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSender_InitialsAndName(t *testing.T) {
	s := Sender{ID: "u1", Name: "ada lovelace"}
	if got := s.Initials(); got != "AL" {
		t.Errorf("Initials() = %q, want AL", got)
	}
	if got := (Sender{}).DisplayName(); got != "Unknown" {
		t.Errorf("DisplayName() = %q, want Unknown", got)
	}
	if got := (Sender{ID: "bot"}).DisplayName(); got != "bot" {
		t.Errorf("DisplayName() = %q, want bot", got)
	}
}

func TestMedia_Label(t *testing.T) {
	m := &Media{Kind: MediaFile, URL: "https://x/report.pdf", Size: "2 MB"}
	if got := m.Label(); got != "file: https://x/report.pdf (2 MB)" {
		t.Errorf("Label() = %q", got)
	}
	var nilMedia *Media
	if got := nilMedia.Label(); got != "" {
		t.Errorf("nil Label() = %q, want empty", got)
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_Touch(t *testing.T) {
	conv := NewConversation("")
	if conv.GetTitle() != "Untitled conversation" {
		t.Errorf("GetTitle() = %q", conv.GetTitle())
	}

	later := conv.UpdatedAt.Add(time.Minute)
	conv.Touch(&Message{Sender: Sender{Name: "Bob"}, Text: "see you", CreatedAt: later})

	if conv.LastPreview != "see you" {
		t.Errorf("LastPreview = %q", conv.LastPreview)
	}
	if conv.LastSender != "Bob" {
		t.Errorf("LastSender = %q", conv.LastSender)
	}
	if !conv.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", conv.UpdatedAt, later)
	}

	conv.Touch(nil)
}
