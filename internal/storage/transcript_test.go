// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfeed/internal/model"
)

const sampleTranscript = `{"id":"t1","user":{"id":"alice","name":"Alice"},"createdAt":"2025-03-01T12:00:00Z","text":"hello"}

{"id":"t2","user":{"id":"me"},"createdAt":"2025-03-01T12:01:00Z","text":"hi","status":"sent","seen":true}
{"id":"t3","user":{"id":"alice"},"createdAt":"2025-03-01T12:02:00Z","media":{"type":"image","url":"https://x/y.png"}}
`

func TestReadTranscript(t *testing.T) {
	msgs, err := ReadTranscript(strings.NewReader(sampleTranscript))
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, "alice", msgs[0].SenderID())
	assert.Equal(t, "Alice", msgs[0].Sender.Name)
	assert.True(t, msgs[0].CreatedAt.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.True(t, msgs[1].Seen)
	require.NotNil(t, msgs[2].Media)
	assert.Equal(t, model.MediaImage, msgs[2].Media.Kind)
}

func TestReadTranscript_ReportsLine(t *testing.T) {
	_, err := ReadTranscript(strings.NewReader("{\"id\":\"a\"}\n{not json}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteTranscriptRoundTrip(t *testing.T) {
	in, err := ReadTranscript(strings.NewReader(sampleTranscript))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTranscript(&buf, append(in, nil)))
	out, err := ReadTranscript(&buf)
	require.NoError(t, err)
	assert.Equal(t, ids(in), ids(out))
}

func TestTranscriptConversation_StableID(t *testing.T) {
	dir := t.TempDir()
	a := TranscriptConversation(filepath.Join(dir, "standup.jsonl"))
	b := TranscriptConversation(filepath.Join(dir, "standup.jsonl"))
	c := TranscriptConversation(filepath.Join(dir, "other.jsonl"))

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, "standup", a.Title)
	assert.True(t, strings.HasPrefix(a.ID, "conv_"))
}

func TestStore_ImportAndExport(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "team.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleTranscript), 0o600))

	id, n, err := s.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// Importing again updates the same conversation in place.
	id2, _, err := s.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, id, id2)
	count, err := s.CountMessages(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	conv, err := s.Conversation(ctx, id, "me")
	require.NoError(t, err)
	assert.Equal(t, "team", conv.Title)
	assert.Equal(t, "[image: https://x/y.png]", conv.LastPreview)

	out := filepath.Join(dir, "export.jsonl")
	written, err := s.ExportFile(ctx, id, out)
	require.NoError(t, err)
	assert.Equal(t, 3, written)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	back, err := ReadTranscript(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(back))
}

func TestStore_ImportDatesConversationFromTranscript(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(sampleTranscript), 0o600))

	fresh := model.NewConversation("fresh")
	require.NoError(t, s.CreateConversation(ctx, fresh))
	id, _, err := s.ImportFile(ctx, path)
	require.NoError(t, err)

	conv, err := s.Conversation(ctx, id, "me")
	require.NoError(t, err)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, conv.CreatedAt.Equal(start), "created %s", conv.CreatedAt)
	assert.True(t, conv.UpdatedAt.Equal(start.Add(2*time.Minute)), "updated %s", conv.UpdatedAt)

	list, err := s.ListConversations(ctx, "me", 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, fresh.ID, list[0].ID, "an old transcript sorts by its own messages")
	assert.Equal(t, id, list[1].ID)
}

func TestStore_AppendHistoryToNewConversation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := model.NewConversation("today")
	require.NoError(t, s.CreateConversation(ctx, c))

	require.NoError(t, s.Append(ctx, c.ID, msgAt("", alice, 1, "from last year")))

	got, err := s.Conversation(ctx, c.ID, "me")
	require.NoError(t, err)
	assert.Equal(t, "from last year", got.LastPreview)
}

func TestStore_ImportMissingFile(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
