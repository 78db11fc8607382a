// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/util"
)

// TranscriptExt is the extension of transcript files.
const TranscriptExt = ".jsonl"

// maxLineSize bounds a single transcript line.
const maxLineSize = 4 * 1024 * 1024

// ParseTranscriptLine decodes one JSONL record. Blank lines yield nil.
func ParseTranscriptLine(line []byte) (*model.Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}
	var m model.Message
	if err := json.Unmarshal(line, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadTranscript decodes a JSONL stream of messages, one per line.
func ReadTranscript(r io.Reader) ([]*model.Message, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)

	var out []*model.Message
	for n := 1; sc.Scan(); n++ {
		m, err := ParseTranscriptLine(sc.Bytes())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if m != nil {
			out = append(out, m)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return out, nil
}

// WriteTranscript encodes messages as JSONL.
func WriteTranscript(w io.Writer, msgs []*model.Message) error {
	enc := json.NewEncoder(w)
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

// TranscriptConversation returns the conversation a transcript file maps
// to. The ID is derived from the absolute path, so importing the same file
// twice updates one conversation.
func TranscriptConversation(path string) *model.Conversation {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &model.Conversation{
		ID:    "conv_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(abs))).String(),
		Title: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
}

// datedFrom stamps c with the time of the oldest message so historical
// transcripts sort by their own activity, not by when they were read.
func datedFrom(c *model.Conversation, msgs []*model.Message) *model.Conversation {
	for _, m := range msgs {
		if m == nil || m.CreatedAt.IsZero() {
			continue
		}
		if c.CreatedAt.IsZero() || m.CreatedAt.Before(c.CreatedAt) {
			c.CreatedAt = m.CreatedAt
		}
	}
	c.UpdatedAt = c.CreatedAt
	return c
}

// ImportFile loads a transcript file into its conversation and returns the
// conversation ID and the number of messages stored.
func (s *Store) ImportFile(ctx context.Context, path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	msgs, err := ReadTranscript(f)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", path, err)
	}
	conv := datedFrom(TranscriptConversation(path), msgs)
	if err := s.CreateConversation(ctx, conv); err != nil {
		return "", 0, err
	}
	if err := s.Append(ctx, conv.ID, msgs...); err != nil {
		return "", 0, err
	}
	s.log.Info("transcript imported", "path", path, "conversation", conv.ID, "messages", len(msgs))
	return conv.ID, len(msgs), nil
}

// ExportFile writes a conversation's full history as JSONL.
func (s *Store) ExportFile(ctx context.Context, conversationID, path string) (int, error) {
	var all []*model.Message
	page, err := s.Latest(ctx, conversationID, 500)
	for ; err == nil; page, err = s.Older(ctx, conversationID, page.Cursor, 500) {
		all = append(page.Messages, all...)
		if !page.HasMore {
			break
		}
	}
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := WriteTranscript(&buf, all); err != nil {
		return 0, err
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0o600); err != nil {
		return 0, err
	}
	return len(all), nil
}
