// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat screen of the chatfeed terminal client.

Model is a Bubble Tea model composed of the conversation sidebar, the message
feed of the open conversation and the composer. All persistence goes through
the Store interface, implemented by storage.Store; every store call runs as a
tea.Cmd and reports back with a message.

# History paging

Opening a conversation loads its newest page. When the user scrolls to the
top, the feed emits components.ReachedTopMsg and the model fetches the page
before the oldest loaded message. Requests are spaced by a rate.Limiter. If
the loaded messages fit on one screen, older pages are fetched right away.

# Sending

Enter inserts a pending message, jumps to the bottom and stores it. The
result replaces the message with a sent or failed copy.

# Live transcripts

When Options.Transcripts is set, batches from storage.TranscriptWatcher are
appended to the open conversation and refresh the sidebar.

# Slash commands

	/new <title>      create a conversation and open it
	/rename <title>   rename the open conversation
	/quit             exit
*/
package chat
