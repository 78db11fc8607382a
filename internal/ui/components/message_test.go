// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/cluster"
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"seconds ago", now.Add(-20 * time.Second), "just now"},
		{"slightly in the future", now.Add(10 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours ago", now.Add(-3 * time.Hour), "3 hours ago"},
		{"same year", time.Date(2025, 1, 2, 9, 5, 0, 0, time.UTC), "Jan 2, 9:05 AM"},
		{"other year", time.Date(2023, 12, 24, 18, 30, 0, 0, time.UTC), "Dec 24 2023, 6:30 PM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.ts, now))
		})
	}
}

func TestTypingText(t *testing.T) {
	assert.Equal(t, "", TypingText(nil))
	assert.Equal(t, "Ann is typing...", TypingText([]string{"Ann"}))
	assert.Equal(t, "Ann and Bob are typing...", TypingText([]string{"Ann", "Bob"}))
	assert.Equal(t, "3 people are typing...", TypingText([]string{"Ann", "Bob", "Cy"}))
}

func TestBubbleContentWidth(t *testing.T) {
	assert.Equal(t, 51, BubbleContentWidth(80))
	assert.Equal(t, 10, BubbleContentWidth(10))
}

func presentationFor(t *testing.T, msgs []*model.Message, self string, i int) cluster.Presentation {
	t.Helper()
	pres := cluster.Present(msgs, self)
	require.Len(t, pres, len(msgs))
	return pres[i]
}

func TestMessageView_OutgoingReceipts(t *testing.T) {
	theme := styles.NewTheme("dark")
	now := time.Now()
	msg := &model.Message{ID: "m1", Sender: model.Sender{ID: "me"}, Text: "hi", CreatedAt: now, Status: model.StatusSent}

	tests := []struct {
		name   string
		mutate func(m *model.Message)
		want   string
	}{
		{"pending", func(m *model.Message) { m.Status = model.StatusPending }, "sending"},
		{"sent", func(m *model.Message) {}, styles.ReceiptIndicators.Sent},
		{"seen", func(m *model.Message) { m.Seen = true }, styles.ReceiptIndicators.Seen},
		{"failed", func(m *model.Message) { m.Status = model.StatusFailed }, styles.ReceiptIndicators.Failed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := *msg
			tt.mutate(&m)
			msgs := []*model.Message{&m}
			out := MessageView{
				Message:       &m,
				Presentation:  presentationFor(t, msgs, "me", 0),
				Width:         60,
				ShowTimestamp: true,
				Now:           now,
				PendingFrame:  "|",
			}.Render(theme)
			plain := xansi.Strip(out)
			assert.Contains(t, plain, tt.want)
			assert.Contains(t, plain, "hi")
			for _, line := range strings.Split(plain, "\n") {
				assert.Equal(t, 60, xansi.StringWidth(line), "outgoing rows are right aligned to the feed width")
			}
		})
	}
}

func TestMessageView_ReceiptOnlyOnTail(t *testing.T) {
	theme := styles.NewTheme("dark")
	msgs := []*model.Message{
		{ID: "a", Sender: model.Sender{ID: "me"}, Text: "one", Status: model.StatusSent},
		{ID: "b", Sender: model.Sender{ID: "me"}, Text: "two", Status: model.StatusSent},
	}
	first := MessageView{Message: msgs[0], Presentation: presentationFor(t, msgs, "me", 0), Width: 60}.Render(theme)
	last := MessageView{Message: msgs[1], Presentation: presentationFor(t, msgs, "me", 1), Width: 60}.Render(theme)
	assert.NotContains(t, xansi.Strip(first), styles.ReceiptIndicators.Sent)
	assert.Contains(t, xansi.Strip(last), styles.ReceiptIndicators.Sent)
}

func TestMessageView_IncomingHeaderAndAvatar(t *testing.T) {
	theme := styles.NewTheme("dark")
	ann := model.Sender{ID: "ann", Name: "Ann Lee"}
	msgs := []*model.Message{
		{ID: "a", Sender: ann, Text: "first"},
		{ID: "b", Sender: ann, Text: "second", Media: &model.Media{Kind: model.MediaImage}},
	}

	first := xansi.Strip(MessageView{Message: msgs[0], Presentation: presentationFor(t, msgs, "me", 0), Width: 60}.Render(theme))
	assert.True(t, strings.HasPrefix(first, strings.Repeat(" ", avatarGutter)+"Ann Lee"))
	assert.NotContains(t, first, "AL")

	last := xansi.Strip(MessageView{Message: msgs[1], Presentation: presentationFor(t, msgs, "me", 1), Width: 60}.Render(theme))
	assert.NotContains(t, last, "Ann Lee")
	assert.Contains(t, last, "AL")
	assert.Contains(t, last, "second")
	assert.Contains(t, last, "[")
}

func TestMessageView_PrefersRenderedBody(t *testing.T) {
	theme := styles.NewTheme("dark")
	msgs := []*model.Message{{ID: "a", Sender: model.Sender{ID: "ann"}, Text: "**raw**"}}
	out := MessageView{
		Message:      msgs[0],
		Presentation: presentationFor(t, msgs, "me", 0),
		Body:         "pretty",
		Width:        60,
	}.Render(theme)
	assert.Contains(t, out, "pretty")
	assert.NotContains(t, out, "**raw**")
}

func TestRenderCodeBlocks(t *testing.T) {
	text := "look:\n```go\nfunc main() {}\n```\ndone"
	plain := xansi.Strip(RenderCodeBlocks(text, 60))
	assert.Contains(t, plain, "look:")
	assert.Contains(t, plain, "go")
	assert.Contains(t, plain, "1 func main() {}")
	assert.Contains(t, plain, "done")
	assert.NotContains(t, plain, "```")

	unclosed := xansi.Strip(RenderCodeBlocks("```\nx := 1\ny := 2", 60))
	assert.Contains(t, unclosed, "2 y := 2")

	assert.Equal(t, "no fences", RenderCodeBlocks("no fences", 60))
}

func TestHighlightCode_KeepsText(t *testing.T) {
	code := "package main\n\nfunc main() {}"
	assert.Equal(t, code, strings.TrimSpace(xansi.Strip(HighlightCode(code, "go"))))
	assert.Equal(t, "plain words", strings.TrimSpace(xansi.Strip(HighlightCode("plain words", "not-a-language"))))
}

func TestLooksLikeMarkdown(t *testing.T) {
	assert.True(t, looksLikeMarkdown("some **bold**"))
	assert.True(t, looksLikeMarkdown("# title"))
	assert.True(t, looksLikeMarkdown("list:\n- one\n- two"))
	assert.True(t, looksLikeMarkdown("steps:\n1. first"))
	assert.False(t, looksLikeMarkdown("just a sentence, nothing more."))
	assert.False(t, looksLikeMarkdown("3.5 apples"))
}

func TestMarkdown_Render(t *testing.T) {
	md := NewMarkdown(true)
	out, err := md.Render("# Title\n\nsome *words*", 40)
	require.NoError(t, err)
	plain := xansi.Strip(out)
	assert.Contains(t, plain, "Title")
	assert.Contains(t, plain, "words")
	assert.NotEqual(t, "", strings.TrimSpace(strings.SplitN(plain, "\n", 2)[0]), "leading blank lines are trimmed")

	assert.Equal(t, Digest("a"), Digest("a"))
	assert.NotEqual(t, Digest("a"), Digest("b"))
}

func TestRenderScrollBar(t *testing.T) {
	assert.Equal(t, "", renderScrollBar(anchor.Position{}, 0))

	fits := xansi.Strip(renderScrollBar(anchor.Position{ScrollHeight: 5, ClientHeight: 10}, 4))
	assert.Equal(t, "|\n|\n|\n|", fits)

	top := xansi.Strip(renderScrollBar(anchor.Position{ScrollTop: 0, ScrollHeight: 40, ClientHeight: 10}, 4))
	assert.Equal(t, "#\n|\n|\n|", top)

	bottom := xansi.Strip(renderScrollBar(anchor.Position{ScrollTop: 30, ScrollHeight: 40, ClientHeight: 10}, 4))
	assert.Equal(t, "|\n|\n|\n#", bottom)
}
