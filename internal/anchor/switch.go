// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anchor

import (
	tea "github.com/charmbracelet/bubbletea"
)

// SwitchSettledMsg fires after the first paint of a newly selected
// conversation.
type SwitchSettledMsg struct {
	ID           int
	Epoch        int
	Conversation string
}

// Switcher resets the controller when the message source changes identity.
// It owns the controller's watcher subscription.
type Switcher struct {
	ctrl         *Controller
	watcher      Watcher
	unsubscribe  func()
	conversation string
}

// NewSwitcher creates a switcher and subscribes ctrl to w.
func NewSwitcher(ctrl *Controller, w Watcher) *Switcher {
	s := &Switcher{ctrl: ctrl, watcher: w}
	s.subscribe()
	return s
}

// Conversation returns the identity of the active message source.
func (s *Switcher) Conversation() string {
	return s.conversation
}

// Subscribed reports whether growth events currently reach the controller.
func (s *Switcher) Subscribed() bool {
	return s.unsubscribe != nil
}

// OnConversationChange switches to a new message source. The watcher is
// disconnected first, then the position state is replaced in ModeBottom.
// The returned command delivers SwitchSettledMsg once the new list's first
// paint has settled.
func (s *Switcher) OnConversationChange(conversation string) tea.Cmd {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.ctrl.Reset()
	s.conversation = conversation
	s.ctrl.log.Debug("conversation switched", "conversation", conversation, "epoch", s.ctrl.epoch)

	return s.ctrl.schedule(s.ctrl.opts.SettleDelay, SwitchSettledMsg{
		ID:           s.ctrl.id,
		Epoch:        s.ctrl.epoch,
		Conversation: conversation,
	})
}

// Update handles SwitchSettledMsg: snap to the end, then resubscribe.
func (s *Switcher) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(SwitchSettledMsg)
	if !ok || m.ID != s.ctrl.id {
		return nil
	}
	if !s.ctrl.current(m.Epoch) || m.Conversation != s.conversation {
		s.ctrl.drop("switch", m.Epoch)
		return nil
	}
	s.ctrl.ScrollToBottom()
	s.subscribe()
	return nil
}

// Close removes the subscription, typically on unmount.
func (s *Switcher) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

func (s *Switcher) subscribe() {
	if s.unsubscribe == nil && s.watcher != nil {
		s.unsubscribe = s.watcher.Observe(s.ctrl.Notify)
	}
}
