// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anchor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeViewport clamps like a real scroll container.
type fakeViewport struct {
	top, height, client int
}

func (v *fakeViewport) ScrollTop() int    { return v.top }
func (v *fakeViewport) ScrollHeight() int { return v.height }
func (v *fakeViewport) ClientHeight() int { return v.client }
func (v *fakeViewport) SetScrollTop(n int) {
	v.top = clamp(n, 0, maxScroll(v.height, v.client))
}

// timers records scheduled messages instead of sleeping.
type timers struct {
	pending []scheduled
}

type scheduled struct {
	delay time.Duration
	msg   tea.Msg
}

func (tm *timers) schedule(d time.Duration, msg tea.Msg) tea.Cmd {
	tm.pending = append(tm.pending, scheduled{delay: d, msg: msg})
	return nil
}

// fire delivers every pending message matching keep to handle and leaves
// the others pending.
func (tm *timers) fire(keep func(tea.Msg) bool, handle func(tea.Msg) tea.Cmd) int {
	var rest []scheduled
	fired := 0
	due := tm.pending
	tm.pending = nil
	for _, s := range due {
		if keep(s.msg) {
			handle(s.msg)
			fired++
			continue
		}
		rest = append(rest, s)
	}
	tm.pending = append(rest, tm.pending...)
	return fired
}

func (tm *timers) count(keep func(tea.Msg) bool) int {
	n := 0
	for _, s := range tm.pending {
		if keep(s.msg) {
			n++
		}
	}
	return n
}

func isSettle(m tea.Msg) bool   { _, ok := m.(SettleMsg); return ok }
func isPreserve(m tea.Msg) bool { _, ok := m.(PreserveExpiredMsg); return ok }
func isSwitch(m tea.Msg) bool   { _, ok := m.(SwitchSettledMsg); return ok }

// run executes cmd and flattens batches into their messages.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

type countingRecorder struct {
	corrections []Mode
	drops       map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{drops: make(map[string]int)}
}

func (r *countingRecorder) Correction(m Mode, _ int) { r.corrections = append(r.corrections, m) }
func (r *countingRecorder) Dropped(kind string)      { r.drops[kind]++ }

type harness struct {
	t    *testing.T
	vp   *fakeViewport
	ctrl *Controller
	tm   *timers
	rec  *countingRecorder
}

func newHarness(t *testing.T, height, client int) *harness {
	t.Helper()
	h := &harness{
		t:   t,
		vp:  &fakeViewport{height: height, client: client},
		tm:  &timers{},
		rec: newCountingRecorder(),
	}
	h.ctrl = New(DefaultOptions(), WithScheduler(h.tm.schedule), WithRecorder(h.rec))
	h.ctrl.Mount(h.vp)
	return h
}

// growTo sets the content height, delivers one growth event and lets the
// batch settle.
func (h *harness) growTo(height int) {
	h.t.Helper()
	h.vp.height = height
	h.deliver(h.ctrl.Notify())
	h.settle()
}

func (h *harness) deliver(cmd tea.Cmd) {
	for _, m := range run(cmd) {
		h.ctrl.Update(m)
	}
}

func (h *harness) settle() int {
	return h.tm.fire(isSettle, h.ctrl.Update)
}

func (h *harness) scrollTo(top int) tea.Cmd {
	h.vp.top = top
	return h.ctrl.Scrolled()
}
