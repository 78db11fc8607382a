// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cluster

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCornersFor(t *testing.T) {
	first := Flags{First: true}
	middle := Flags{}
	last := Flags{Last: true}
	only := Flags{First: true, Last: true, Only: true}

	tests := []struct {
		name string
		dir  Direction
		f    Flags
		want Corners
	}{
		{"outgoing first", Outgoing, first, Corners{TopLeft: true, BottomLeft: true}},
		{"outgoing middle", Outgoing, middle, Corners{TopLeft: true, BottomLeft: true}},
		{"outgoing last", Outgoing, last, Corners{TopLeft: true, BottomLeft: true, BottomRight: true}},
		{"outgoing only", Outgoing, only, Corners{TopLeft: true, BottomLeft: true, TopRight: true}},
		{"incoming first", Incoming, first, Corners{TopRight: true, BottomRight: true}},
		{"incoming last", Incoming, last, Corners{TopRight: true, BottomRight: true, BottomLeft: true, TopLeft: true}},
		{"incoming only", Incoming, only, Corners{TopRight: true, BottomRight: true, BottomLeft: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CornersFor(tc.dir, tc.f))
		})
	}
}

func TestPresent(t *testing.T) {
	in := msgs("me", "me", "Bob", "Bob", "ME")
	got := Present(in, "Me")

	assert.Equal(t, Outgoing, got[0].Direction)
	assert.Equal(t, Incoming, got[2].Direction)
	assert.Equal(t, Outgoing, got[4].Direction, "sender match is case-insensitive")

	// Outgoing messages never show header/avatar; only the tail shows a receipt.
	assert.False(t, got[0].ShowHeader)
	assert.False(t, got[1].ShowReceipt)
	assert.True(t, got[4].ShowReceipt)

	// Incoming cluster: header on first, avatar on last.
	assert.True(t, got[2].ShowHeader)
	assert.False(t, got[2].ShowAvatar)
	assert.False(t, got[3].ShowHeader)
	assert.True(t, got[3].ShowAvatar)
}

func TestPresent_IncomingTailHasNoReceipt(t *testing.T) {
	got := Present(msgs("me", "Bob"), "me")
	assert.False(t, got[1].ShowReceipt)
	assert.True(t, got[1].Tail)
}

func TestSameUser(t *testing.T) {
	assert.True(t, SameUser("Alice", "alice"))
	assert.False(t, SameUser("", ""))
	assert.False(t, SameUser("alice", "bob"))
}

func TestSameUser_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.True(t, SameUser("Zoë", "ZOË"))
				assert.False(t, SameUser("zoe", "ZOË"))
			}
		}()
	}
	wg.Wait()
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "outgoing", Outgoing.String())
	assert.Equal(t, "incoming", Incoming.String())
}
