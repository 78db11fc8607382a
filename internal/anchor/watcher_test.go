// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anchor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func counter(n *int) func() tea.Cmd {
	return func() tea.Cmd {
		*n++
		return func() tea.Msg { return "grew" }
	}
}

func TestLayoutWatcher_NotifiesOnlyOnChange(t *testing.T) {
	w := NewLayoutWatcher()
	calls := 0
	w.Observe(counter(&calls))

	assert.Equal(t, []tea.Msg{"grew"}, run(w.Changed("hello", 80, 24)))
	assert.Nil(t, w.Changed("hello", 80, 24))
	assert.Equal(t, 1, calls)

	w.Changed("hello world", 80, 24)
	assert.Equal(t, 2, calls)

	// Same content, new box.
	w.Changed("hello world", 60, 24)
	w.Changed("hello world", 60, 30)
	assert.Equal(t, 4, calls)

	changes, skipped := w.Stats()
	assert.Equal(t, uint64(4), changes)
	assert.Equal(t, uint64(1), skipped)
}

func TestLayoutWatcher_Unsubscribe(t *testing.T) {
	w := NewLayoutWatcher()
	a, b := 0, 0
	unsubA := w.Observe(counter(&a))
	w.Observe(counter(&b))
	assert.Equal(t, 2, w.Subscribers())

	assert.Len(t, run(w.Changed("1", 10, 10)), 2)

	unsubA()
	unsubA()
	assert.Equal(t, 1, w.Subscribers())

	w.Changed("2", 10, 10)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestLayoutWatcher_NilNotify(t *testing.T) {
	w := NewLayoutWatcher()
	unsub := w.Observe(nil)
	assert.Equal(t, 0, w.Subscribers())
	unsub()
}

func TestLayoutWatcher_DisconnectAndReset(t *testing.T) {
	w := NewLayoutWatcher()
	calls := 0
	w.Observe(counter(&calls))
	w.Changed("x", 10, 10)

	w.Disconnect()
	assert.Equal(t, 0, w.Subscribers())
	assert.Nil(t, w.Changed("y", 10, 10))

	// A fresh subscriber is not told about mutations it missed.
	w.Observe(counter(&calls))
	assert.Nil(t, w.Changed("y", 10, 10))

	w.Reset()
	w.Changed("y", 10, 10)
	assert.Equal(t, 2, calls)
}

func TestLayoutHash_SeparatesDimensions(t *testing.T) {
	assert.NotEqual(t, layoutHash("a", 1, 23), layoutHash("a", 12, 3))
	assert.Equal(t, layoutHash("a", 1, 2), layoutHash("a", 1, 2))
}
