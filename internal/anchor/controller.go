// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anchor

import (
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options tune the controller thresholds and timers.
type Options struct {
	// BottomTolerance is how far from the end a scroll still counts as
	// "at bottom".
	BottomTolerance int
	// PreserveWindow is how long reaching the top keeps ModePreserveTop
	// waiting for an older page.
	PreserveWindow time.Duration
	// SettleDelay is how long growth events are collected before a single
	// correction is applied.
	SettleDelay time.Duration
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		BottomTolerance: 1,
		PreserveWindow:  time.Second,
		SettleDelay:     16 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.BottomTolerance < 0 {
		o.BottomTolerance = d.BottomTolerance
	}
	if o.PreserveWindow <= 0 {
		o.PreserveWindow = d.PreserveWindow
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = d.SettleDelay
	}
	return o
}

// =============================================================================
// MESSAGES
// =============================================================================

// GrowthMsg reports that content height may have changed.
type GrowthMsg struct {
	ID    int
	Epoch int
}

// SettleMsg fires once the layout for a batch of growth events has settled.
type SettleMsg struct {
	ID    int
	Epoch int
	Tag   int
}

// PreserveExpiredMsg ends the preserve-top window opened by reaching the top.
type PreserveExpiredMsg struct {
	ID    int
	Epoch int
	Tag   int
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder receives correction and drop events, typically for metrics.
type Recorder interface {
	Correction(mode Mode, delta int)
	Dropped(kind string)
}

type nopRecorder struct{}

func (nopRecorder) Correction(Mode, int) {}
func (nopRecorder) Dropped(string)       {}

// =============================================================================
// CONTROLLER
// =============================================================================

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// Controller keeps the viewport anchored while content grows. It is driven
// entirely from the Bubble Tea Update loop and holds no locks.
type Controller struct {
	id   int
	opts Options

	vp     Viewport
	pos    *Position
	epoch  int
	primed bool

	settleTag     int
	settleArmed   bool
	preserveTag   int
	preserveArmed bool

	// OnReachedTop and OnReachedBottom are invoked when a user scroll
	// crosses a threshold. The host usually wires them to pagination.
	OnReachedTop    func() tea.Cmd
	OnReachedBottom func() tea.Cmd

	schedule Scheduler
	recorder Recorder
	log      *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the tea.Tick based scheduler.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.schedule = s
		}
	}
}

// WithRecorder reports corrections to r.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates an unmounted controller.
func New(opts Options, options ...Option) *Controller {
	c := &Controller{
		id:       nextID(),
		opts:     opts.withDefaults(),
		schedule: TickScheduler,
		recorder: nopRecorder{},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// ID returns the controller's unique identifier.
func (c *Controller) ID() int { return c.id }

// Epoch returns the current generation. It changes on mount, unmount and
// reset; messages from older generations are dropped.
func (c *Controller) Epoch() int { return c.epoch }

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// Mounted reports whether a viewport is attached.
func (c *Controller) Mounted() bool { return c.vp != nil }

// Mount attaches the viewport and starts in ModeBottom.
func (c *Controller) Mount(vp Viewport) {
	c.vp = vp
	c.Reset()
}

// Unmount detaches the viewport. Every operation is a no-op until the next
// Mount.
func (c *Controller) Unmount() {
	c.vp = nil
	c.pos = nil
	c.epoch++
	c.settleArmed = false
	c.preserveArmed = false
}

// Reset discards the position state and replaces it with a fresh one in
// ModeBottom. The next correction snaps to the end.
func (c *Controller) Reset() {
	c.epoch++
	c.primed = false
	c.settleArmed = false
	c.preserveArmed = false
	c.pos = nil
	if c.vp != nil {
		c.pos = positionOf(c.vp, ModeBottom)
	}
}

// Mode returns the current anchor mode.
func (c *Controller) Mode() Mode {
	if c.pos == nil {
		return ModeBottom
	}
	return c.pos.Mode
}

// Position returns a copy of the last known position. ScrollHeight is the
// content height at the last correction, not the live height.
func (c *Controller) Position() Position {
	if c.pos == nil {
		return Position{}
	}
	return *c.pos
}

// Notify is the Watcher callback. It turns a mutation into a GrowthMsg
// stamped with the current generation.
func (c *Controller) Notify() tea.Cmd {
	if c.vp == nil {
		return nil
	}
	msg := GrowthMsg{ID: c.id, Epoch: c.epoch}
	return func() tea.Msg { return msg }
}

// Update handles the controller's own messages.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case GrowthMsg:
		if msg.ID == c.id {
			return c.handleGrowth(msg)
		}
	case SettleMsg:
		if msg.ID == c.id {
			c.handleSettle(msg)
		}
	case PreserveExpiredMsg:
		if msg.ID == c.id {
			c.handlePreserveExpired(msg)
		}
	}
	return nil
}

// Scrolled records a user scroll and updates the mode from the thresholds.
// It returns the threshold notifications, if any. The height baseline is
// left alone: content may already have changed while its growth event is
// still queued.
func (c *Controller) Scrolled() tea.Cmd {
	if c.vp == nil {
		return nil
	}
	top, height, client := c.vp.ScrollTop(), c.vp.ScrollHeight(), c.vp.ClientHeight()
	c.pos.ScrollTop = top
	c.pos.ClientHeight = client

	var cmds []tea.Cmd
	switch {
	case atBottom(top, height, client, c.opts.BottomTolerance):
		c.cancelPreserve()
		c.pos.Mode = ModeBottom
		if c.OnReachedBottom != nil {
			cmds = append(cmds, c.OnReachedBottom())
		}
	case top <= 0:
		c.pos.Mode = ModePreserveTop
		c.preserveArmed = true
		c.preserveTag++
		cmds = append(cmds, c.schedule(c.opts.PreserveWindow, PreserveExpiredMsg{
			ID: c.id, Epoch: c.epoch, Tag: c.preserveTag,
		}))
		if c.OnReachedTop != nil {
			cmds = append(cmds, c.OnReachedTop())
		}
	default:
		c.cancelPreserve()
		c.pos.Mode = ModeFree
	}
	return tea.Batch(cmds...)
}

// ScrollToBottom snaps to the end and enters ModeBottom.
func (c *Controller) ScrollToBottom() {
	if c.vp == nil {
		return
	}
	c.cancelPreserve()
	height, client := c.vp.ScrollHeight(), c.vp.ClientHeight()
	c.vp.SetScrollTop(maxScroll(height, client))
	c.primed = true
	c.pos.ScrollTop = c.vp.ScrollTop()
	c.pos.ScrollHeight = height
	c.pos.ClientHeight = client
	c.pos.Mode = ModeBottom
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (c *Controller) current(epoch int) bool {
	return c.vp != nil && epoch == c.epoch
}

func (c *Controller) drop(kind string, epoch int) {
	c.recorder.Dropped(kind)
	c.log.Debug("dropped stale event", "kind", kind, "epoch", epoch, "current", c.epoch)
}

func (c *Controller) handleGrowth(msg GrowthMsg) tea.Cmd {
	if !c.current(msg.Epoch) {
		c.drop("growth", msg.Epoch)
		return nil
	}

	// Growth while waiting at the top is the older page arriving. The
	// window closes, but this batch is still corrected in ModePreserveTop.
	if c.pos.Mode == ModePreserveTop {
		c.cancelPreserve()
	}

	if c.settleArmed {
		return nil
	}
	c.settleArmed = true
	c.settleTag++
	return c.schedule(c.opts.SettleDelay, SettleMsg{ID: c.id, Epoch: c.epoch, Tag: c.settleTag})
}

func (c *Controller) handleSettle(msg SettleMsg) {
	if !c.current(msg.Epoch) || !c.settleArmed || msg.Tag != c.settleTag {
		c.drop("settle", msg.Epoch)
		return
	}
	c.settleArmed = false
	c.correct()
}

func (c *Controller) handlePreserveExpired(msg PreserveExpiredMsg) {
	if !c.current(msg.Epoch) || !c.preserveArmed || msg.Tag != c.preserveTag {
		c.drop("preserve", msg.Epoch)
		return
	}
	c.preserveArmed = false
	if c.pos.Mode == ModePreserveTop {
		c.pos.Mode = c.restingMode()
	}
}

// correct applies exactly one scroll adjustment using the latest measured
// height.
func (c *Controller) correct() {
	height, client, top := c.vp.ScrollHeight(), c.vp.ClientHeight(), c.vp.ScrollTop()
	delta := height - c.pos.ScrollHeight
	mode := c.pos.Mode

	var target int
	switch {
	case !c.primed, mode == ModeBottom:
		target = height - client
	case mode == ModePreserveTop:
		target = height - c.pos.ScrollHeight
	default:
		target = top + delta
	}
	target = clamp(target, 0, maxScroll(height, client))
	c.vp.SetScrollTop(target)

	c.primed = true
	c.pos.ScrollTop = c.vp.ScrollTop()
	c.pos.ScrollHeight = height
	c.pos.ClientHeight = client
	if mode == ModePreserveTop && !c.preserveArmed {
		c.pos.Mode = c.restingMode()
	}

	c.recorder.Correction(mode, delta)
	c.log.Debug("scroll correction",
		"mode", mode.String(),
		"delta", delta,
		"scroll_top", c.pos.ScrollTop,
		"scroll_height", height,
		"client_height", client)
}

func (c *Controller) cancelPreserve() {
	if c.preserveArmed {
		c.preserveArmed = false
		c.preserveTag++
	}
}

// restingMode is the mode to fall back to once a preserve window ends.
func (c *Controller) restingMode() Mode {
	if atBottom(c.vp.ScrollTop(), c.vp.ScrollHeight(), c.vp.ClientHeight(), c.opts.BottomTolerance) {
		return ModeBottom
	}
	return ModeFree
}
