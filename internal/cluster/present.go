// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cluster

import (
	"golang.org/x/text/cases"

	"github.com/jeranaias/chatfeed/internal/model"
)

// =============================================================================
// DIRECTION
// =============================================================================

// Direction tells whether a message was sent by the current user.
type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// =============================================================================
// CORNERS
// =============================================================================

// Corners reports which bubble corners are rounded.
type Corners struct {
	TopLeft     bool
	TopRight    bool
	BottomLeft  bool
	BottomRight bool
}

// CornersFor returns the corner rounding for a bubble. The side facing the
// sender's edge of the screen stays square inside a cluster so consecutive
// bubbles read as one block.
func CornersFor(dir Direction, f Flags) Corners {
	// "last" only applies to multi-message clusters; singletons round
	// through the single flag instead.
	last := f.Last && !f.Only
	single := f.Only

	if dir == Outgoing {
		return Corners{
			TopLeft:     true,
			BottomLeft:  true,
			BottomRight: last,
			TopRight:    !last && single,
		}
	}
	return Corners{
		TopRight:    true,
		BottomRight: true,
		BottomLeft:  single || last,
		TopLeft:     last,
	}
}

// =============================================================================
// PRESENTATION
// =============================================================================

// Presentation is everything the renderer needs to lay out one message.
type Presentation struct {
	Flags
	Direction   Direction
	Corners     Corners
	ShowHeader  bool // sender name above the cluster
	ShowAvatar  bool // avatar badge next to the cluster's last bubble
	ShowReceipt bool // delivery/seen indicator on the true last message
}

// SameUser compares sender identities case-insensitively. Casers keep
// state, so each call folds with its own.
func SameUser(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

// Present classifies msgs and derives the per-message presentation for the
// given current user.
func Present(msgs []*model.Message, currentUserID string) []Presentation {
	flags := Classify(msgs)
	out := make([]Presentation, len(flags))
	for i, f := range flags {
		dir := Incoming
		if SameUser(msgs[i].SenderID(), currentUserID) {
			dir = Outgoing
		}
		p := Presentation{
			Flags:     f,
			Direction: dir,
			Corners:   CornersFor(dir, f),
		}
		if dir == Incoming {
			p.ShowHeader = f.First
			p.ShowAvatar = f.Last
		} else {
			p.ShowReceipt = f.Tail
		}
		out[i] = p
	}
	return out
}
