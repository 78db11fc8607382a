// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chatfeed TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection; NewTheme can force either background.

# Message Bubbles

Bubbles are drawn with a rounded border whose individual corners are
squared off inside a sender cluster:

	p := cluster.Present(msgs, me)[i]
	style := theme.Bubble(p.Direction, p.Corners)
	view := style.Render(body)

# Spinners

SpinnerConfig values convert to bubbles spinners:

	s := spinner.New(spinner.WithSpinner(styles.LineSpinner.Spinner()))
*/
package styles
