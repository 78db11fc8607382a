// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/cluster"
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
	"github.com/jeranaias/chatfeed/internal/util"
)

// =============================================================================
// FEED MESSAGES
// =============================================================================

// ReachedTopMsg asks the host for the next older page.
type ReachedTopMsg struct {
	Conversation string
}

// ReachedBottomMsg reports that the user is reading the newest messages.
type ReachedBottomMsg struct {
	Conversation string
}

// =============================================================================
// FEED COMPONENT
// =============================================================================

// FeedOptions configure a Feed.
type FeedOptions struct {
	// Self is the current user's ID; their messages render as outgoing.
	Self string

	Anchor         anchor.Options
	Markdown       bool
	ShowTimestamps bool
}

// Feed is the scrollable message list of one conversation. Content changes
// go through the layout watcher so the anchor controller can keep the
// viewport stable while pages, renders and new messages arrive.
type Feed struct {
	theme *styles.Theme
	opts  FeedOptions

	vp       viewport.Model
	ctrl     *anchor.Controller
	watcher  *anchor.LayoutWatcher
	switcher *anchor.Switcher
	markdown *Markdown

	spin     spinner.Model
	spinning bool

	conversation string
	messages     []*model.Message
	index        map[string]int
	bodies       map[string]renderedBody
	requested    map[string]string

	loading      bool
	loadingOlder bool
	hasMore      bool
	typing       []string
	newBelow     int

	width, height int
	now           func() time.Time
}

type renderedBody struct {
	width  int
	digest string
	body   string
}

// NewFeed creates a mounted feed. Anchor options such as a test scheduler
// are passed through to the controller.
func NewFeed(theme *styles.Theme, opts FeedOptions, anchorOpts ...anchor.Option) *Feed {
	f := &Feed{
		theme:     theme,
		opts:      opts,
		vp:        newFeedViewport(),
		watcher:   anchor.NewLayoutWatcher(),
		index:     make(map[string]int),
		bodies:    make(map[string]renderedBody),
		requested: make(map[string]string),
		now:       time.Now,
		width:     80,
		height:    20,
	}
	f.spin = spinner.New(
		spinner.WithSpinner(styles.LineSpinner.Spinner()),
		spinner.WithStyle(theme.Spinner),
	)
	if opts.Markdown {
		f.markdown = NewMarkdown(theme.IsDark)
	}

	f.ctrl = anchor.New(opts.Anchor, anchorOpts...)
	f.ctrl.OnReachedTop = func() tea.Cmd {
		conv := f.conversation
		return func() tea.Msg { return ReachedTopMsg{Conversation: conv} }
	}
	f.ctrl.OnReachedBottom = func() tea.Cmd {
		f.newBelow = 0
		conv := f.conversation
		return func() tea.Msg { return ReachedBottomMsg{Conversation: conv} }
	}
	f.ctrl.Mount(scrollContainer{m: &f.vp})
	f.switcher = anchor.NewSwitcher(f.ctrl, f.watcher)
	return f
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Conversation returns the ID of the conversation on screen.
func (f *Feed) Conversation() string { return f.conversation }

// Messages returns the loaded messages, oldest first.
func (f *Feed) Messages() []*model.Message { return f.messages }

// Controller exposes the anchor controller.
func (f *Feed) Controller() *anchor.Controller { return f.ctrl }

// Watcher exposes the layout watcher.
func (f *Feed) Watcher() *anchor.LayoutWatcher { return f.watcher }

// Mode returns the current anchor mode.
func (f *Feed) Mode() anchor.Mode { return f.ctrl.Mode() }

// Loading reports whether the whole list is loading.
func (f *Feed) Loading() bool { return f.loading }

// LoadingOlder reports whether an older page is being fetched.
func (f *Feed) LoadingOlder() bool { return f.loadingOlder }

// HasMore reports whether older messages exist beyond the loaded ones.
func (f *Feed) HasMore() bool { return f.hasMore }

// NewBelow returns how many messages arrived while scrolled away from the
// bottom.
func (f *Feed) NewBelow() int { return f.newBelow }

// Fits reports whether all loaded content fits on screen, in which case the
// user cannot scroll to the top to request older messages.
func (f *Feed) Fits() bool {
	return f.vp.TotalLineCount() <= f.vp.Height
}

// =============================================================================
// MUTATIONS
// =============================================================================

// SetSize lays the feed out in width x height cells. One line is reserved
// for the status line and two columns for the scroll bar.
func (f *Feed) SetSize(width, height int) tea.Cmd {
	f.width, f.height = width, height
	f.vp.Width = max(1, width-2)
	f.vp.Height = max(1, height-1)
	return tea.Batch(f.refresh(), f.renderCmds(f.messages))
}

// Load switches to conversation and shows the loading state until
// SetMessages delivers its first page.
func (f *Feed) Load(conversation string) tea.Cmd {
	switched := f.switchTo(conversation)
	f.loading = true
	return tea.Batch(switched, f.refresh(), f.startSpinner())
}

// SetMessages replaces the list with the newest page of conversation.
func (f *Feed) SetMessages(conversation string, msgs []*model.Message, hasMore bool) tea.Cmd {
	var switched tea.Cmd
	if conversation != f.conversation {
		switched = f.switchTo(conversation)
	}
	f.loading = false
	f.hasMore = hasMore
	f.messages = f.messages[:0]
	f.index = make(map[string]int)
	f.insert(msgs, false)
	return tea.Batch(switched, f.refresh(), f.renderCmds(msgs), f.startSpinner())
}

// SetLoadingOlder toggles the older-page indicator.
func (f *Feed) SetLoadingOlder(loading bool) tea.Cmd {
	f.loadingOlder = loading
	if loading {
		return f.startSpinner()
	}
	return nil
}

// Prepend inserts an older page above the loaded messages. Pages for
// another conversation are ignored.
func (f *Feed) Prepend(conversation string, msgs []*model.Message, hasMore bool) tea.Cmd {
	if conversation != f.conversation {
		return nil
	}
	f.loadingOlder = false
	f.hasMore = hasMore
	f.insert(msgs, true)
	return tea.Batch(f.refresh(), f.renderCmds(msgs))
}

// Upsert appends new messages and replaces known ones in place, matched by
// ID. Updates for another conversation are ignored.
func (f *Feed) Upsert(conversation string, msgs ...*model.Message) tea.Cmd {
	if conversation != f.conversation || len(msgs) == 0 {
		return nil
	}
	added := f.insert(msgs, false)
	if added > 0 && f.ctrl.Mode() != anchor.ModeBottom {
		f.newBelow += added
	}
	return tea.Batch(f.refresh(), f.renderCmds(msgs), f.startSpinner())
}

// SetTyping sets the names shown in the typing indicator.
func (f *Feed) SetTyping(names []string) tea.Cmd {
	f.typing = append(f.typing[:0], names...)
	return f.refresh()
}

// Close detaches the controller from the viewport.
func (f *Feed) Close() {
	f.switcher.Close()
	f.ctrl.Unmount()
}

func (f *Feed) switchTo(conversation string) tea.Cmd {
	cmd := f.switcher.OnConversationChange(conversation)
	f.conversation = conversation
	f.messages = nil
	f.index = make(map[string]int)
	f.bodies = make(map[string]renderedBody)
	f.requested = make(map[string]string)
	f.typing = nil
	f.newBelow = 0
	f.hasMore = false
	f.loadingOlder = false
	return cmd
}

// insert adds msgs at the front or back, replacing messages whose key is
// already present. It returns the number of messages that were new.
func (f *Feed) insert(msgs []*model.Message, front bool) int {
	var fresh []*model.Message
	for _, m := range msgs {
		if m == nil {
			continue
		}
		if i, ok := f.index[m.ID]; ok && m.ID != "" {
			f.messages[i] = m
			continue
		}
		fresh = append(fresh, m)
	}
	if len(fresh) == 0 {
		return 0
	}
	if front {
		f.messages = append(fresh, f.messages...)
	} else {
		f.messages = append(f.messages, fresh...)
	}
	f.reindex()
	return len(fresh)
}

func (f *Feed) reindex() {
	f.index = make(map[string]int, len(f.messages))
	for i, m := range f.messages {
		if m.ID != "" {
			f.index[m.ID] = i
		}
	}
}

// =============================================================================
// SCROLLING
// =============================================================================

// LineUp scrolls up n lines.
func (f *Feed) LineUp(n int) tea.Cmd {
	f.vp.LineUp(n)
	return f.ctrl.Scrolled()
}

// LineDown scrolls down n lines.
func (f *Feed) LineDown(n int) tea.Cmd {
	f.vp.LineDown(n)
	return f.ctrl.Scrolled()
}

// PageUp scrolls up one screen.
func (f *Feed) PageUp() tea.Cmd {
	f.vp.ViewUp()
	return f.ctrl.Scrolled()
}

// PageDown scrolls down one screen.
func (f *Feed) PageDown() tea.Cmd {
	f.vp.ViewDown()
	return f.ctrl.Scrolled()
}

// GotoTop jumps to the oldest loaded message.
func (f *Feed) GotoTop() tea.Cmd {
	f.vp.GotoTop()
	return f.ctrl.Scrolled()
}

// GotoBottom jumps to the newest message.
func (f *Feed) GotoBottom() tea.Cmd {
	f.vp.GotoBottom()
	return f.ctrl.Scrolled()
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes anchor timers, finished renders, spinner ticks and mouse
// wheel events.
func (f *Feed) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case anchor.GrowthMsg, anchor.SettleMsg, anchor.PreserveExpiredMsg:
		return f.ctrl.Update(msg)

	case anchor.SwitchSettledMsg:
		return f.switcher.Update(msg)

	case RenderedMsg:
		if msg.Conversation != f.conversation {
			return nil
		}
		delete(f.requested, msg.Key)
		if _, ok := f.index[msg.Key]; !ok {
			return nil
		}
		f.bodies[msg.Key] = renderedBody{width: msg.Width, digest: msg.Digest, body: msg.Body}
		return f.refresh()

	case spinner.TickMsg:
		if msg.ID != f.spin.ID() {
			return nil
		}
		if !f.animating() {
			f.spinning = false
			return nil
		}
		var cmd tea.Cmd
		f.spin, cmd = f.spin.Update(msg)
		return tea.Batch(cmd, f.refresh())

	case tea.MouseMsg:
		if !tea.MouseEvent(msg).IsWheel() {
			return nil
		}
		before := f.vp.YOffset
		f.vp, _ = f.vp.Update(msg)
		if f.vp.YOffset == before && !f.vp.AtTop() {
			return nil
		}
		return f.ctrl.Scrolled()
	}
	return nil
}

func (f *Feed) animating() bool {
	if f.loading || f.loadingOlder {
		return true
	}
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].Status == model.StatusPending {
			return true
		}
	}
	return false
}

func (f *Feed) startSpinner() tea.Cmd {
	if f.spinning || !f.animating() {
		return nil
	}
	f.spinning = true
	return f.spin.Tick
}

// =============================================================================
// RENDERING
// =============================================================================

// refresh re-renders the content and reports the mutation to the watcher.
func (f *Feed) refresh() tea.Cmd {
	content := f.renderContent()
	f.vp.SetContent(content)
	return f.watcher.Changed(content, f.vp.Width, f.vp.Height)
}

// renderCmds requests markdown renders for messages that need one at the
// current width.
func (f *Feed) renderCmds(msgs []*model.Message) tea.Cmd {
	if f.markdown == nil {
		return nil
	}
	width := BubbleContentWidth(f.vp.Width)
	var cmds []tea.Cmd
	for _, m := range msgs {
		if m == nil || m.ID == "" || !looksLikeMarkdown(m.Text) {
			continue
		}
		digest := Digest(m.Text)
		stamp := digest + "@" + strconv.Itoa(width)
		if b, ok := f.bodies[m.ID]; ok && b.width == width && b.digest == digest {
			continue
		}
		if f.requested[m.ID] == stamp {
			continue
		}
		f.requested[m.ID] = stamp
		cmds = append(cmds, f.markdown.RenderCmd(f.conversation, m.ID, m.Text, width))
	}
	return tea.Batch(cmds...)
}

func (f *Feed) bodyFor(m *model.Message, width int) string {
	b, ok := f.bodies[m.ID]
	if !ok || b.width != width || b.digest != Digest(m.Text) {
		return ""
	}
	return b.body
}

func (f *Feed) renderContent() string {
	width := f.vp.Width
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	if f.loading {
		return center.Render(f.spin.View() + " " + f.theme.EmptyState.Render("Loading conversation"))
	}
	if len(f.messages) == 0 {
		out := center.Render(f.theme.EmptyState.Render("No messages yet..."))
		if t := TypingText(f.typing); t != "" {
			out += "\n\n" + f.theme.Typing.Render(t)
		}
		return out
	}

	pres := cluster.Present(f.messages, f.opts.Self)
	contentWidth := BubbleContentWidth(width)
	now := f.now()

	var b strings.Builder
	for i, m := range f.messages {
		if i > 0 {
			b.WriteString("\n")
			if pres[i].First {
				b.WriteString("\n")
			}
		}
		b.WriteString(MessageView{
			Message:       m,
			Presentation:  pres[i],
			Body:          f.bodyFor(m, contentWidth),
			Width:         width,
			ShowTimestamp: f.opts.ShowTimestamps,
			Now:           now,
			PendingFrame:  f.spin.View(),
		}.Render(f.theme))
	}
	if t := TypingText(f.typing); t != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.Repeat(" ", avatarGutter))
		b.WriteString(f.theme.Typing.Render(t))
	}
	return b.String()
}

// statusLine is drawn above the viewport and is not part of the anchored
// content.
func (f *Feed) statusLine() string {
	width := f.width
	var left string
	switch {
	case f.loadingOlder:
		left = f.spin.View() + " " + f.theme.Timestamp.Render("Loading earlier messages")
	case f.loading || len(f.messages) == 0:
	case !f.vp.AtTop():
		left = f.theme.Timestamp.Render("^ more above")
	case !f.hasMore:
		left = f.theme.Timestamp.Render("Beginning of conversation")
	}

	var right string
	if f.newBelow > 0 {
		label := "new message"
		if f.newBelow > 1 {
			label += "s"
		}
		right = f.theme.SidebarUnread.Render("v " + strconv.Itoa(f.newBelow) + " " + label)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return util.Truncate(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

// View renders the status line, the viewport and the scroll bar.
func (f *Feed) View() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(f.vp.Width).Height(f.vp.Height).Render(f.vp.View()),
		" ",
		renderScrollBar(scrollContainer{m: &f.vp}.geometry(), f.vp.Height),
	)
	return f.statusLine() + "\n" + body
}
