// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anchor

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler returns a command that delivers msg to the event loop after d.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

// TickScheduler is the default Scheduler backed by tea.Tick.
func TickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}
