// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anchor

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// WATCHER INTERFACE
// =============================================================================

// Watcher notifies subscribers that rendered content height may have
// changed. Each notification is a growth event; the returned command is
// what the subscriber wants the event loop to run.
type Watcher interface {
	// Observe registers notify and returns a function that removes it.
	Observe(notify func() tea.Cmd) (unsubscribe func())

	// Disconnect removes every subscriber.
	Disconnect()
}

// =============================================================================
// LAYOUT WATCHER
// =============================================================================

// LayoutWatcher is the Bubble Tea Watcher. The host calls Changed after
// every content or layout mutation; subscribers are notified only when the
// rendered content or its dimensions actually differ from the last call.
//
// It is not safe for concurrent use; call it from Update only.
type LayoutWatcher struct {
	subs   map[int]func() tea.Cmd
	nextID int

	lastHash string
	changes  uint64
	skips    uint64
}

// NewLayoutWatcher creates a watcher with no subscribers.
func NewLayoutWatcher() *LayoutWatcher {
	return &LayoutWatcher{subs: make(map[int]func() tea.Cmd)}
}

// Observe registers notify. The returned unsubscribe is idempotent.
func (w *LayoutWatcher) Observe(notify func() tea.Cmd) func() {
	if notify == nil {
		return func() {}
	}
	id := w.nextID
	w.nextID++
	w.subs[id] = notify
	return func() {
		delete(w.subs, id)
	}
}

// Disconnect removes every subscriber.
func (w *LayoutWatcher) Disconnect() {
	for id := range w.subs {
		delete(w.subs, id)
	}
}

// Subscribers returns the number of active subscriptions.
func (w *LayoutWatcher) Subscribers() int {
	return len(w.subs)
}

// Changed records the current rendered content and dimensions and returns
// the subscribers' commands if anything changed. The signature is recorded
// even without subscribers, so a later subscriber only hears about later
// mutations.
func (w *LayoutWatcher) Changed(content string, width, height int) tea.Cmd {
	h := layoutHash(content, width, height)
	if h == w.lastHash {
		w.skips++
		return nil
	}
	w.lastHash = h
	w.changes++

	if len(w.subs) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(w.subs))
	for _, notify := range w.subs {
		cmds = append(cmds, notify())
	}
	return tea.Batch(cmds...)
}

// Reset forgets the last signature so the next Changed always notifies.
func (w *LayoutWatcher) Reset() {
	w.lastHash = ""
}

// Stats returns the number of observed changes and skipped no-op calls.
func (w *LayoutWatcher) Stats() (changes, skipped uint64) {
	return w.changes, w.skips
}

// layoutHash fingerprints the rendered content together with the box it is
// laid out in.
func layoutHash(content string, width, height int) string {
	sum := sha256.New()
	sum.Write([]byte(strconv.Itoa(width)))
	sum.Write([]byte{'x'})
	sum.Write([]byte(strconv.Itoa(height)))
	sum.Write([]byte{0})
	sum.Write([]byte(content))
	return hex.EncodeToString(sum.Sum(nil))
}
