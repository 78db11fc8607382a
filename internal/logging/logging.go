// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the process-wide structured logger.
//
// The TUI owns stdout, so the default sink discards records. Use "stderr"
// or "file:<path>" to capture them.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu   sync.RWMutex
	root = slog.New(slog.NewTextHandler(io.Discard, nil))
	sink io.Closer
)

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init installs the root logger. sink is "" (discard), "stderr" or
// "file:<path>".
func Init(level, target string) error {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var (
		w      io.Writer = io.Discard
		closer io.Closer
	)
	switch {
	case target == "":
	case target == "stderr":
		w = os.Stderr
	case strings.HasPrefix(target, "file:"):
		path := strings.TrimPrefix(target, "file:")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", path, err)
		}
		w, closer = f, f
	default:
		return fmt.Errorf("unknown log sink %q", target)
	}

	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		sink.Close()
	}
	sink = closer
	root = slog.New(slog.NewTextHandler(w, opts))
	return nil
}

// Close releases the file sink, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if sink != nil {
		sink.Close()
		sink = nil
	}
	root = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// For returns a logger tagged with the component name.
func For(component string) *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return root.With(slog.String("component", component))
}
