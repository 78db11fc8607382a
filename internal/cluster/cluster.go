// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cluster groups consecutive messages from the same sender.
package cluster

import (
	"strconv"

	"github.com/jeranaias/chatfeed/internal/model"
)

// =============================================================================
// FLAGS
// =============================================================================

// Flags are the per-message presentation flags derived from sender
// adjacency. A cluster is a maximal run of consecutive messages sharing a
// sender.
type Flags struct {
	First bool // first message of its cluster (shows the header)
	Last  bool // last message of its cluster (shows the avatar)
	Only  bool // cluster of length one
	Tail  bool // last message of the whole sequence
}

// anonymousPrefix cannot collide with a real sender ID because the NUL byte
// is never part of one.
const anonymousPrefix = "\x00anon:"

// =============================================================================
// CLASSIFIER
// =============================================================================

// Classify computes cluster flags for an ordered, oldest-first sequence of
// messages. The result has the same length as the input and is never nil.
func Classify(msgs []*model.Message) []Flags {
	return ClassifyFunc(msgs, (*model.Message).SenderID)
}

// ClassifyFunc computes cluster flags for any ordered sequence given a
// function that extracts the sender identity. An empty identity is replaced
// by a placeholder unique to its position, so such items always form their
// own cluster.
func ClassifyFunc[T any](items []T, sender func(T) string) []Flags {
	n := len(items)
	flags := make([]Flags, n)
	if n == 0 {
		return flags
	}

	keys := make([]string, n)
	for i, it := range items {
		keys[i] = senderKey(sender, it, i)
	}

	for i := range keys {
		f := &flags[i]
		f.First = i == 0 || keys[i-1] != keys[i]
		f.Last = i == n-1 || keys[i+1] != keys[i]
		f.Only = f.First && f.Last
		f.Tail = i == n-1
	}
	return flags
}

// senderKey extracts the identity for item i, recovering from a nil item or
// a panicking extractor with the positional placeholder.
func senderKey[T any](sender func(T) string, item T, i int) (key string) {
	defer func() {
		if r := recover(); r != nil {
			key = anonymousPrefix + strconv.Itoa(i)
		}
	}()
	if id := sender(item); id != "" {
		return id
	}
	return anonymousPrefix + strconv.Itoa(i)
}

// Runs returns the [start, end) bounds of every cluster in flags.
func Runs(flags []Flags) [][2]int {
	var runs [][2]int
	start := 0
	for i, f := range flags {
		if f.First {
			start = i
		}
		if f.Last {
			runs = append(runs, [2]int{start, i + 1})
		}
	}
	return runs
}
