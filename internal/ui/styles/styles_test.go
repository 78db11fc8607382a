// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfeed/internal/cluster"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	for _, mode := range []string{"dark", "light", "auto"} {
		theme := NewTheme(mode)
		if theme == nil {
			t.Fatalf("NewTheme(%q) returned nil", mode)
		}
		if theme.OutgoingBubble.Render("x") == "" {
			t.Errorf("NewTheme(%q) should initialize bubble styles", mode)
		}
	}
	if !NewTheme("dark").IsDark {
		t.Error("dark theme should report IsDark")
	}
	if NewTheme("light").IsDark {
		t.Error("light theme should not report IsDark")
	}
}

func TestThemeLayoutMode(t *testing.T) {
	theme := NewTheme("dark")
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: got %v, want %v", tt.width, got, tt.want)
		}
	}
}

// =============================================================================
// BUBBLE BORDER TESTS
// =============================================================================

func TestBubbleBorderCorners(t *testing.T) {
	round := lipgloss.RoundedBorder()
	square := lipgloss.NormalBorder()

	b := BubbleBorder(cluster.Corners{TopLeft: true, BottomRight: true})
	if b.TopLeft != round.TopLeft || b.BottomRight != round.BottomRight {
		t.Errorf("rounded corners not kept: %q %q", b.TopLeft, b.BottomRight)
	}
	if b.TopRight != square.TopRight || b.BottomLeft != square.BottomLeft {
		t.Errorf("square corners not applied: %q %q", b.TopRight, b.BottomLeft)
	}
	if b.Top != round.Top || b.Left != round.Left {
		t.Error("edges should be unchanged")
	}
}

func TestBubbleRendersOutgoingCluster(t *testing.T) {
	theme := NewTheme("dark")

	// Middle of an outgoing cluster: right side square.
	f := cluster.Flags{}
	out := theme.Bubble(cluster.Outgoing, cluster.CornersFor(cluster.Outgoing, f)).Render("hi")
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected a three line bubble, got %d", len(lines))
	}
	if !strings.Contains(lines[0], lipgloss.RoundedBorder().TopLeft) {
		t.Errorf("top-left should be rounded: %q", lines[0])
	}
	if !strings.Contains(lines[0], lipgloss.NormalBorder().TopRight) {
		t.Errorf("top-right should be square: %q", lines[0])
	}
}

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinnerConfig(t *testing.T) {
	if got := LineSpinner.Duration(); got != 100*time.Millisecond {
		t.Errorf("LineSpinner.Duration() = %v", got)
	}
	if got := (SpinnerConfig{}).Duration(); got != time.Second {
		t.Errorf("zero FPS should fall back to one second, got %v", got)
	}
	s := DotsSpinner.Spinner()
	if len(s.Frames) != len(DotsSpinner.Frames) || s.FPS != DotsSpinner.Duration() {
		t.Errorf("Spinner() = %+v", s)
	}
}

func TestRenderHelpers(t *testing.T) {
	if !strings.Contains(RenderError("boom"), "boom") {
		t.Error("RenderError should contain the message")
	}
	if !strings.Contains(RenderInfo("hi"), "[i] hi") {
		t.Error("RenderInfo should prefix the indicator")
	}
}
