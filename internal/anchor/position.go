// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package anchor

// =============================================================================
// ANCHOR MODE
// =============================================================================

// Mode is the policy used to correct the scroll position after content
// height changes.
type Mode int

const (
	// ModeBottom keeps the newest content in view.
	ModeBottom Mode = iota
	// ModePreserveTop keeps the content under the viewport top pinned while
	// an older page is prepended above it.
	ModePreserveTop
	// ModeFree shifts the scroll offset by the growth delta.
	ModeFree
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeBottom:
		return "bottom"
	case ModePreserveTop:
		return "preserve-top"
	case ModeFree:
		return "free"
	default:
		return "unknown"
	}
}

// =============================================================================
// VIEWPORT
// =============================================================================

// Viewport is the scroll primitive of the host view. Units are whatever the
// host measures in (terminal lines for the bubbles viewport).
type Viewport interface {
	ScrollTop() int
	ScrollHeight() int
	ClientHeight() int
	SetScrollTop(top int)
}

// =============================================================================
// POSITION
// =============================================================================

// Position is the last known viewport geometry plus the anchor mode. It is
// owned by a single Controller and replaced, never reused, on conversation
// switch. ScrollHeight only advances when a correction is applied, so it is
// the H0 of the next growth delta.
type Position struct {
	ScrollTop    int
	ScrollHeight int
	ClientHeight int
	Mode         Mode
}

// MaxScrollTop returns the largest valid scroll offset.
func (p Position) MaxScrollTop() int {
	return maxScroll(p.ScrollHeight, p.ClientHeight)
}

// AtBottom reports whether the viewport is within tolerance of the end.
func (p Position) AtBottom(tolerance int) bool {
	return atBottom(p.ScrollTop, p.ScrollHeight, p.ClientHeight, tolerance)
}

// AtTop reports whether the viewport shows the first line.
func (p Position) AtTop() bool {
	return p.ScrollTop <= 0
}

func positionOf(vp Viewport, mode Mode) *Position {
	return &Position{
		ScrollTop:    vp.ScrollTop(),
		ScrollHeight: vp.ScrollHeight(),
		ClientHeight: vp.ClientHeight(),
		Mode:         mode,
	}
}

func maxScroll(height, client int) int {
	if height <= client {
		return 0
	}
	return height - client
}

func atBottom(top, height, client, tolerance int) bool {
	return maxScroll(height, client)-top <= tolerance
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
