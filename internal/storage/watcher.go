// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/chatfeed/internal/logging"
	"github.com/jeranaias/chatfeed/internal/model"
)

// Batch is a set of messages appended to one transcript since the last
// batch.
type Batch struct {
	ConversationID string
	Path           string
	Messages       []*model.Message
}

// TranscriptWatcher tails *.jsonl transcripts in a directory. Complete new
// lines are stored and published on Events; a trailing partial line waits
// for its newline.
type TranscriptWatcher struct {
	store    *Store
	dir      string
	debounce time.Duration
	log      *slog.Logger

	watcher *fsnotify.Watcher
	events  chan Batch
	cancel  context.CancelFunc
	done    chan struct{}

	mu      sync.Mutex
	offsets map[string]int64     // path -> bytes consumed
	pending map[string]time.Time // path -> last change
}

// NewTranscriptWatcher creates a watcher for dir. Call Start to begin.
func NewTranscriptWatcher(store *Store, dir string, debounce time.Duration) (*TranscriptWatcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("transcript dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("transcript dir %s: not a directory", dir)
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &TranscriptWatcher{
		store:    store,
		dir:      dir,
		debounce: debounce,
		log:      logging.For("transcripts"),
		events:   make(chan Batch, 16),
		offsets:  make(map[string]int64),
		pending:  make(map[string]time.Time),
	}, nil
}

// Events delivers new messages. It is closed after Close.
func (w *TranscriptWatcher) Events() <-chan Batch {
	return w.events
}

// Start imports every existing transcript, then watches for changes until
// ctx is cancelled or Close is called.
func (w *TranscriptWatcher) Start(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(w.dir, "*"+TranscriptExt))
	if err != nil {
		return err
	}
	for _, path := range matches {
		if _, err := w.ingest(ctx, path); err != nil {
			w.log.Warn("initial import failed", "path", path, "error", err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = fw

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); w.processEvents(ctx) }()
	go func() { defer wg.Done(); w.processPending(ctx) }()
	go func() {
		wg.Wait()
		close(w.events)
		close(w.done)
	}()
	return nil
}

// Close stops watching and waits for the goroutines to exit.
func (w *TranscriptWatcher) Close() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	err := w.watcher.Close()
	<-w.done
	w.cancel = nil
	return err
}

func (w *TranscriptWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != TranscriptExt {
				continue
			}
			switch {
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				w.mu.Lock()
				delete(w.offsets, event.Name)
				delete(w.pending, event.Name)
				w.mu.Unlock()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}

// processPending ingests files once they have been quiet for the debounce
// interval.
func (w *TranscriptWatcher) processPending(ctx context.Context) {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			var due []string
			w.mu.Lock()
			for path, changed := range w.pending {
				if now.Sub(changed) >= w.debounce {
					due = append(due, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range due {
				batch, err := w.ingest(ctx, path)
				if err != nil {
					w.log.Warn("ingest failed", "path", path, "error", err)
					continue
				}
				if len(batch.Messages) == 0 {
					continue
				}
				select {
				case w.events <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// ingest stores the complete lines appended to path since the last call.
// A file that shrank is read again from the start.
func (w *TranscriptWatcher) ingest(ctx context.Context, path string) (Batch, error) {
	conv := TranscriptConversation(path)
	batch := Batch{ConversationID: conv.ID, Path: path}

	f, err := os.Open(path)
	if err != nil {
		return batch, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return batch, err
	}

	w.mu.Lock()
	offset := w.offsets[path]
	w.mu.Unlock()
	if info.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return batch, err
	}
	data, err := io.ReadAll(io.LimitReader(f, info.Size()-offset))
	if err != nil {
		return batch, err
	}
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return batch, nil
	}
	data = data[:end+1]

	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		line := data[:i]
		data = data[i+1:]
		m, err := ParseTranscriptLine(line)
		if err != nil {
			w.log.Warn("skipping malformed line", "path", path, "error", err)
			continue
		}
		if m != nil {
			batch.Messages = append(batch.Messages, m)
		}
	}

	if err := w.store.CreateConversation(ctx, datedFrom(conv, batch.Messages)); err != nil {
		return batch, err
	}
	if err := w.store.Append(ctx, conv.ID, batch.Messages...); err != nil {
		return batch, err
	}

	w.mu.Lock()
	w.offsets[path] = offset + int64(end+1)
	w.mu.Unlock()
	w.log.Debug("transcript ingested", "path", path, "messages", len(batch.Messages))
	return batch, nil
}
