// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cluster groups consecutive messages from the same sender.
//
// Classify is a pure function of sender adjacency: for every maximal run of
// messages sharing a sender it marks exactly one First and one Last message,
// and a run of one is First, Last and Only at once. Present layers the
// rendering decisions on top (direction, header, avatar, receipt and bubble
// corner rounding).
//
//	flags := cluster.Classify(messages)
//	for i, f := range flags {
//	    if f.First {
//	        // draw the sender header above messages[i]
//	    }
//	}
package cluster
