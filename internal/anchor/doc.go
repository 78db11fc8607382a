// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package anchor keeps a growing message feed visually stable.
//
// The rendered height of a chat feed is only known after layout settles,
// and it changes whenever messages stream in, an older page is prepended,
// markdown finishes rendering, or the typing indicator toggles. The
// Controller decides, for every coalesced batch of such changes, where the
// viewport should be.
//
// # Anchor modes
//
//   - ModeBottom: snap to the end (initial mode, and whenever the user
//     scrolls back within BottomTolerance of the end)
//   - ModePreserveTop: the user reached the top and an older page is on its
//     way; after the page lands, ScrollTop = newHeight - previousHeight so
//     the same content stays under the viewport top
//   - ModeFree: the user is somewhere in the middle; ScrollTop moves by the
//     growth delta
//
// The very first correction after mount or reset always snaps to the end.
//
// # Event flow
//
// A Watcher (LayoutWatcher for Bubble Tea hosts) calls Controller.Notify on
// every mutation, which yields a GrowthMsg. The first GrowthMsg of a batch
// schedules a SettleMsg after SettleDelay; later ones are absorbed. Handling
// the SettleMsg applies one correction using the height measured at that
// moment. Reaching the top opens a PreserveWindow that either closes early
// on the next GrowthMsg or expires into ModeFree.
//
// Every scheduled message carries the controller's epoch. Switcher bumps the
// epoch on conversation change, after unsubscribing from the watcher, so a
// growth event from the previous conversation can never move the new one.
//
// # Usage
//
//	ctrl := anchor.New(anchor.DefaultOptions())
//	ctrl.Mount(viewportAdapter)
//	watcher := anchor.NewLayoutWatcher()
//	switcher := anchor.NewSwitcher(ctrl, watcher)
//
//	// in Update:
//	cmds = append(cmds, ctrl.Update(msg), switcher.Update(msg))
//	cmds = append(cmds, watcher.Changed(content, width, height))
package anchor
