// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sort"
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// FUZZY MATCHING
// =============================================================================

// FuzzyMatch matches query against target case-insensitively. Every query
// rune must appear in order; consecutive runs, word starts and the start
// of the target score higher. Shorter targets win ties.
func FuzzyMatch(query, target string) (score int, matched bool) {
	if query == "" {
		return 0, true
	}
	q := []rune(strings.ToLower(query))
	tr := []rune(strings.ToLower(target))
	if len(q) > len(tr) {
		return 0, false
	}

	qi, last := 0, -1
	for ti := 0; ti < len(tr) && qi < len(q); ti++ {
		if tr[ti] != q[qi] {
			continue
		}
		s := 1
		if last == ti-1 {
			s += 5
		}
		if ti == 0 {
			s += 10
		}
		if isWordBoundary(tr, ti) {
			s += 7
		}
		score += s
		last = ti
		qi++
	}
	if qi != len(q) {
		return 0, false
	}
	return score - len(tr)/4, true
}

func isWordBoundary(runes []rune, pos int) bool {
	if pos == 0 {
		return true
	}
	if pos >= len(runes) {
		return false
	}
	prev := runes[pos-1]
	return prev == ' ' || prev == '/' || prev == '-' || prev == '_' ||
		(unicode.IsLower(prev) && unicode.IsUpper(runes[pos]))
}

// =============================================================================
// CONVERSATION PICKER
// =============================================================================

// PickedMsg is emitted when a conversation is chosen in the picker.
type PickedMsg struct {
	ID string
}

type scoredConversation struct {
	conv  *model.Conversation
	score int
}

// Picker is an overlay for jumping to a loaded conversation by title.
type Picker struct {
	input    textinput.Model
	items    []*model.Conversation
	filtered []scoredConversation
	selected int
	visible  bool
	maxItems int
	width    int
	theme    *styles.Theme
}

// NewPicker creates a hidden picker.
func NewPicker(theme *styles.Theme) *Picker {
	ti := textinput.New()
	ti.Placeholder = "Jump to conversation..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.Width = 40
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	return &Picker{input: ti, maxItems: 8, width: 56, theme: theme}
}

// Open shows the picker over items with an empty query.
func (p *Picker) Open(items []*model.Conversation) tea.Cmd {
	p.items = items
	p.visible = true
	p.input.Reset()
	p.filter()
	return p.input.Focus()
}

// Close hides the picker.
func (p *Picker) Close() {
	p.visible = false
	p.input.Blur()
}

// Visible reports whether the picker is open.
func (p *Picker) Visible() bool { return p.visible }

// Matches returns the titles currently listed, best first.
func (p *Picker) Matches() []string {
	out := make([]string, len(p.filtered))
	for i, s := range p.filtered {
		out[i] = s.conv.GetTitle()
	}
	return out
}

// Update handles keys while the picker is open.
func (p *Picker) Update(msg tea.Msg) tea.Cmd {
	if !p.visible {
		return nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEsc:
			p.Close()
			return nil
		case tea.KeyEnter:
			if p.selected < len(p.filtered) {
				id := p.filtered[p.selected].conv.ID
				p.Close()
				return func() tea.Msg { return PickedMsg{ID: id} }
			}
			return nil
		case tea.KeyUp, tea.KeyCtrlP:
			if p.selected > 0 {
				p.selected--
			}
			return nil
		case tea.KeyDown, tea.KeyCtrlN:
			if p.selected < len(p.filtered)-1 {
				p.selected++
			}
			return nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.filter()
	}
	return cmd
}

func (p *Picker) filter() {
	query := strings.TrimSpace(p.input.Value())
	p.filtered = p.filtered[:0]
	for _, c := range p.items {
		if score, ok := FuzzyMatch(query, c.GetTitle()); ok {
			p.filtered = append(p.filtered, scoredConversation{conv: c, score: score})
		}
	}
	if query != "" {
		sort.SliceStable(p.filtered, func(i, j int) bool {
			return p.filtered[i].score > p.filtered[j].score
		})
	}
	p.selected = 0
}

// View renders the picker box.
func (p *Picker) View() string {
	if !p.visible {
		return ""
	}
	lines := []string{p.input.View(), ""}
	if len(p.filtered) == 0 {
		lines = append(lines, p.theme.SidebarPreview.Render("no matches"))
	}
	for i, s := range p.filtered {
		if i == p.maxItems {
			lines = append(lines, p.theme.SidebarPreview.Render("..."))
			break
		}
		style := p.theme.SidebarItem
		if i == p.selected {
			style = p.theme.SidebarItemSelected
		}
		lines = append(lines, style.Render(s.conv.GetTitle()))
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Purple).
		Padding(0, 1).
		Width(p.width).
		Render(strings.Join(lines, "\n"))
}
