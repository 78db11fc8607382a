// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared across chatfeed.
//
// Text helpers measure in terminal cells (via go-runewidth), not bytes or
// runes, so CJK and emoji line up in the feed:
//
//	util.Width("你好")         // 4
//	util.Truncate(title, 24)   // "A very long conversat..."
//	util.Wrap(body, 40)        // []string, one per rendered line
//
// AtomicWriteFile writes through a synced temp file and a rename, so a
// crash leaves either the old or the new file.
package util
