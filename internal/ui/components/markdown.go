// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// RenderedMsg delivers a message body rendered off the event loop.
type RenderedMsg struct {
	Conversation string
	Key          string
	Width        int
	Digest       string
	Body         string
}

// Markdown renders message text through glamour. Renderers are created
// lazily per wrap width and shared by concurrent commands.
type Markdown struct {
	mu        sync.Mutex
	config    ansi.StyleConfig
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer using the dark or light glamour style
// without the document margin.
func NewMarkdown(dark bool) *Markdown {
	cfg := glamourstyles.LightStyleConfig
	if dark {
		cfg = glamourstyles.DarkStyleConfig
	}
	var zero uint
	cfg.Document.Margin = &zero
	return &Markdown{
		config:    cfg,
		renderers: make(map[int]*glamour.TermRenderer),
	}
}

// Render renders text wrapped at width. Leading and trailing blank lines
// are removed.
func (m *Markdown) Render(text string, width int) (string, error) {
	if width < 1 {
		width = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStyles(m.config),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		m.renderers[width] = r
	}

	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return trimBlankLines(out), nil
}

// RenderCmd returns a command that renders text and reports a RenderedMsg.
// When rendering fails the plain text is delivered instead.
func (m *Markdown) RenderCmd(conversation, key, text string, width int) tea.Cmd {
	digest := Digest(text)
	return func() tea.Msg {
		body, err := m.Render(text, width)
		if err != nil {
			body = text
		}
		return RenderedMsg{
			Conversation: conversation,
			Key:          key,
			Width:        width,
			Digest:       digest,
			Body:         body,
		}
	}
}

// Digest fingerprints message text so a late render of an edited message
// is not applied.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}

func trimBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	blank := func(l string) bool { return strings.TrimSpace(xansi.Strip(l)) == "" }
	start, end := 0, len(lines)
	for start < end && blank(lines[start]) {
		start++
	}
	for end > start && blank(lines[end-1]) {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// looksLikeMarkdown reports whether text has any markdown syntax worth a
// glamour pass. Plain sentences are wrapped directly.
func looksLikeMarkdown(text string) bool {
	if strings.ContainsAny(text, "*_`#>[|~") {
		return true
	}
	for _, line := range strings.Split(text, "\n") {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "- ") || strings.HasPrefix(l, "+ ") || orderedItem(l) {
			return true
		}
	}
	return false
}

func orderedItem(line string) bool {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	return i > 0 && strings.HasPrefix(line[i:], ". ")
}
