// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/logging"
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/storage"
	"github.com/jeranaias/chatfeed/internal/ui/components"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence the chat screen reads from and writes to.
// *storage.Store implements it.
type Store interface {
	CreateConversation(ctx context.Context, c *model.Conversation) error
	RenameConversation(ctx context.Context, id, title string) error
	ListConversations(ctx context.Context, self string, offset, limit int) ([]*model.Conversation, error)
	Conversation(ctx context.Context, id, self string) (*model.Conversation, error)
	Latest(ctx context.Context, conversationID string, limit int) (storage.Page, error)
	Older(ctx context.Context, conversationID string, before storage.Cursor, limit int) (storage.Page, error)
	Append(ctx context.Context, conversationID string, msgs ...*model.Message) error
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	MarkSeen(ctx context.Context, conversationID, self string) (int64, error)
}

var _ Store = (*storage.Store)(nil)

// PageRecorder receives history paging and switching events.
// *telemetry.Metrics implements it.
type PageRecorder interface {
	PageLoaded(messages int, took time.Duration)
	Switched()
}

// =============================================================================
// OPTIONS
// =============================================================================

// Focus is the pane that receives keys.
type Focus int

const (
	FocusComposer Focus = iota
	FocusSidebar
)

// Options configure the chat screen.
type Options struct {
	Store Store
	Self  model.Sender

	// Open is the conversation shown first; empty opens the most recent.
	Open string

	Theme          string
	Markdown       bool
	ShowTimestamps bool
	SidebarWidth   int
	Compact        bool

	Anchor       anchor.Options
	PageSize     int
	PageInterval time.Duration

	// Transcripts delivers live transcript batches, if watching.
	Transcripts <-chan storage.Batch
	WatchLabel  string

	Recorder      PageRecorder
	AnchorOptions []anchor.Option
	Context       context.Context
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model of the chat screen: the conversation
// sidebar, the feed of the open conversation and the composer.
type Model struct {
	opts  Options
	theme *styles.Theme
	keys  KeyMap
	log   *slog.Logger

	header   *components.Header
	sidebar  *components.Sidebar
	feed     *components.Feed
	composer *components.Composer
	picker   *components.Picker

	focus   Focus
	cursor  storage.Cursor // oldest loaded message of the open conversation
	limiter *rate.Limiter
	bg      *cancelManager

	width, height int
	sidebarShown  bool
	lastErr       string
	quitting      bool
}

// New creates the chat screen.
func New(opts Options) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 30
	}
	if opts.SidebarWidth <= 0 {
		opts.SidebarWidth = 28
	}
	if opts.Self.ID == "" {
		opts.Self.ID = "me"
	}
	theme := styles.NewTheme(opts.Theme)

	anchorOpts := opts.AnchorOptions
	if r, ok := opts.Recorder.(anchor.Recorder); ok {
		anchorOpts = append([]anchor.Option{anchor.WithRecorder(r)}, anchorOpts...)
	}
	anchorOpts = append([]anchor.Option{anchor.WithLogger(logging.For("anchor"))}, anchorOpts...)

	feed := components.NewFeed(theme, components.FeedOptions{
		Self:           opts.Self.ID,
		Anchor:         opts.Anchor,
		Markdown:       opts.Markdown,
		ShowTimestamps: opts.ShowTimestamps,
	}, anchorOpts...)

	header := components.NewHeader()
	header.Watching = opts.WatchLabel
	header.Compact = opts.Compact

	limit := rate.Inf
	if opts.PageInterval > 0 {
		limit = rate.Every(opts.PageInterval)
	}

	return Model{
		opts:         opts,
		theme:        theme,
		keys:         DefaultKeyMap(),
		log:          logging.For("chat"),
		header:       header,
		sidebar:      components.NewSidebar(theme),
		feed:         feed,
		composer:     components.NewComposer(theme),
		picker:       components.NewPicker(theme),
		limiter:      rate.NewLimiter(limit, 1),
		bg:           newCancelManager(opts.Context),
		width:        80,
		height:       24,
		sidebarShown: true,
	}
}

// Init loads the conversation list and starts following transcripts.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadConversations(0),
		m.waitForTranscript(),
		m.composer.Focus(),
	)
}

// Feed exposes the message feed.
func (m Model) Feed() *components.Feed { return m.feed }

// Sidebar exposes the conversation list.
func (m Model) Sidebar() *components.Sidebar { return m.sidebar }

// Focused returns the pane that receives keys.
func (m Model) Focused() Focus { return m.focus }

// Err returns the error shown in the status bar, if any.
func (m Model) Err() string { return m.lastErr }

// Close cancels running store commands and detaches the feed.
func (m Model) Close() {
	m.bg.stop()
	m.feed.Close()
}
