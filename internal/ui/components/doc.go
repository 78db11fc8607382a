// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI components of the chatfeed terminal client.

Components are built on Bubble Tea and Lip Gloss and styled through a shared
styles.Theme. Most of them are plain structs with a View method; the stateful
ones expose an Update that returns a tea.Cmd.

# Feed

Feed (feed.go) is the scrollable message list. It owns a bubbles viewport
and an anchor.Controller mounted on it. Every content change is reported to
an anchor.LayoutWatcher, which turns real layout changes into growth events;
the controller then corrects the scroll position once the burst settles:

  - at the bottom, new messages keep the newest one in view
  - at the top, a prepended older page keeps the previous first line on top
  - anywhere else, the position shifts by the growth delta

Switching conversations goes through anchor.Switcher so no event of the old
conversation can move the new one.

# Messages

MessageView (message.go) renders one bubble. Cluster position decides the
corners, the sender header, the avatar and the delivery receipt. Message
bodies with markdown are rendered asynchronously by Markdown (markdown.go)
and fenced code blocks are highlighted with Chroma (codeblock.go).

# Chrome

Header (header.go), Sidebar (sidebar.go), Composer (input.go), StatusBar
(statusbar.go) and Picker (picker.go) make up the rest of the screen.

# Usage

	feed := components.NewFeed(theme, components.FeedOptions{Self: "me"})
	cmd := feed.SetMessages(conv.ID, page.Messages, page.HasMore)
*/
package components
