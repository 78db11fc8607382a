// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatfeed/internal/cluster"
	"github.com/jeranaias/chatfeed/internal/config"
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/storage"
	"github.com/jeranaias/chatfeed/internal/ui/components"
	"github.com/jeranaias/chatfeed/internal/ui/styles"
)

// =============================================================================
// PLAIN COMMAND
// =============================================================================

type plainOptions struct {
	root    *rootOptions
	conv    string
	message string
}

func newPlainCmd(ro *rootOptions) *cobra.Command {
	o := &plainOptions{root: ro}
	cmd := &cobra.Command{
		Use:   "plain",
		Short: "Line mode client: print a conversation and reply",
		Long: `plain prints the newest page of a conversation with sender headers
and highlighted code blocks, then reads replies line by line.

Commands at the prompt:
  /older         print the previous page
  /open <id>     switch conversation
  /list          list conversations
  /quit          exit

Without a terminal on stdin, plain prints the page (and sends --message,
if given) and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&o.conv, "conversation", "C", "", "conversation id or prefix (default most recent)")
	cmd.Flags().StringVarP(&o.message, "message", "m", "", "send this message and exit")
	return cmd
}

func (o *plainOptions) run(ctx context.Context, out io.Writer) error {
	store, err := o.root.openStore()
	if err != nil {
		return commandError("plain", "open store", err)
	}
	defer store.Close()

	s := newPlainSession(store, o.root.self(), out, o.root.cfg.Feed.PageSize, GetTerminalWidth())
	if err := s.openRef(ctx, o.conv); err != nil {
		return err
	}

	if o.message != "" {
		return s.send(ctx, o.message)
	}
	if !IsTTY() {
		return nil
	}
	return s.repl(ctx)
}

// =============================================================================
// SESSION
// =============================================================================

// plainSession prints one conversation at a time and keeps the paging
// cursor for /older.
type plainSession struct {
	store    *storage.Store
	self     model.Sender
	out      io.Writer
	pageSize int
	width    int
	now      func() time.Time

	conv    *model.Conversation
	cursor  storage.Cursor
	hasMore bool
	// last is the newest printed message, so a reply continues its cluster.
	last *model.Message
}

func newPlainSession(store *storage.Store, self model.Sender, out io.Writer, pageSize, width int) *plainSession {
	if pageSize <= 0 {
		pageSize = 30
	}
	return &plainSession{
		store:    store,
		self:     self,
		out:      out,
		pageSize: pageSize,
		width:    width,
		now:      time.Now,
	}
}

// openRef opens the referenced conversation, or the most recent one when
// ref is empty.
func (s *plainSession) openRef(ctx context.Context, ref string) error {
	if ref == "" {
		convs, err := s.store.ListConversations(ctx, s.self.ID, 0, 1)
		if err != nil {
			return commandError("plain", "list conversations", err)
		}
		if len(convs) == 0 {
			fmt.Fprintln(s.out, DimStyle.Render("No conversations yet. Try \"chatfeed seed\" or \"chatfeed import\"."))
			return nil
		}
		return s.open(ctx, convs[0])
	}
	conv, err := resolveConversation(ctx, s.store, s.self.ID, ref)
	if err != nil {
		return err
	}
	return s.open(ctx, conv)
}

// open prints the conversation title and its newest page, and marks it seen.
func (s *plainSession) open(ctx context.Context, conv *model.Conversation) error {
	page, err := s.store.Latest(ctx, conv.ID, s.pageSize)
	if err != nil {
		return commandError("plain", "load messages", err)
	}
	s.conv, s.cursor, s.hasMore, s.last = conv, page.Cursor, page.HasMore, nil

	fmt.Fprintln(s.out, TitleStyle.Render(conv.GetTitle())+" "+DimStyle.Render(conv.ID))
	fmt.Fprintln(s.out, RenderSeparator(min(s.width, 70)))
	if len(page.Messages) == 0 {
		fmt.Fprintln(s.out, DimStyle.Render("No messages yet..."))
		return nil
	}
	if s.hasMore {
		fmt.Fprintln(s.out, DimStyle.Render("(/older for earlier messages)"))
	}
	s.print(page.Messages)
	s.last = page.Messages[len(page.Messages)-1]

	if _, err := s.store.MarkSeen(ctx, conv.ID, s.self.ID); err != nil {
		return commandError("plain", "mark seen", err)
	}
	return nil
}

// older prints the page before the oldest one printed so far.
func (s *plainSession) older(ctx context.Context) error {
	if s.conv == nil {
		return errors.New("no conversation open")
	}
	if !s.hasMore || s.cursor.IsZero() {
		fmt.Fprintln(s.out, DimStyle.Render("Beginning of conversation."))
		return nil
	}
	page, err := s.store.Older(ctx, s.conv.ID, s.cursor, s.pageSize)
	if err != nil {
		return commandError("plain", "load older messages", err)
	}
	if len(page.Messages) > 0 {
		s.cursor = page.Cursor
	}
	s.hasMore = page.HasMore
	fmt.Fprintln(s.out, RenderSeparator(min(s.width, 70)))
	s.print(page.Messages)
	fmt.Fprintln(s.out, RenderSeparator(min(s.width, 70)))
	return nil
}

// send stores text as a message from the current user and prints it.
func (s *plainSession) send(ctx context.Context, text string) error {
	if s.conv == nil {
		return errors.New("no conversation open, use /open <id>")
	}
	msg := model.NewMessage(s.self, text)
	if err := s.store.Append(ctx, s.conv.ID, msg); err != nil {
		return commandError("plain", "send", err)
	}
	if err := s.store.UpdateStatus(ctx, msg.ID, model.StatusSent); err != nil {
		return commandError("plain", "send", err)
	}
	msg = msg.WithStatus(model.StatusSent)

	if s.last != nil {
		// Re-classify with the previous message so a reply to yourself
		// does not repeat the header.
		pres := cluster.Present([]*model.Message{s.last, msg}, s.self.ID)
		s.printOne(msg, pres[1])
	} else {
		s.print([]*model.Message{msg})
	}
	s.last = msg
	return nil
}

// handle runs one line of input. It returns false when the session should end.
func (s *plainSession) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return true, nil
	}
	if !strings.HasPrefix(line, "/") {
		return true, s.send(ctx, line)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/q", "/exit":
		return false, nil
	case "/older":
		return true, s.older(ctx)
	case "/open":
		if len(fields) < 2 {
			return true, errors.New("usage: /open <id>")
		}
		return true, s.openRef(ctx, fields[1])
	case "/list":
		convs, err := s.store.ListConversations(ctx, s.self.ID, 0, 20)
		if err != nil {
			return true, err
		}
		fmt.Fprint(s.out, storage.FormatConversationList(convs))
		return true, nil
	default:
		return true, fmt.Errorf("unknown command: %s", fields[0])
	}
}

// repl reads lines with history until /quit, Ctrl+C or EOF.
func (s *plainSession) repl(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history := historyPath()
	if f, err := os.Open(history); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.OpenFile(history, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			// Ctrl+C, Ctrl+D and closed stdin all end the session.
			fmt.Fprintln(s.out)
			return nil
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		more, err := s.handle(ctx, input)
		if err != nil {
			fmt.Fprintln(s.out, ErrorStyle.Render("[Error]")+" "+err.Error())
		}
		if !more {
			return nil
		}
	}
}

func historyPath() string {
	dir, err := config.ConfigDir()
	if err != nil || os.MkdirAll(dir, 0o700) != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "plain_history")
}

// =============================================================================
// RENDERING
// =============================================================================

// print writes msgs with a header above every cluster and a receipt under
// the last message when the current user sent it.
func (s *plainSession) print(msgs []*model.Message) {
	for i, p := range cluster.Present(msgs, s.self.ID) {
		s.printOne(msgs[i], p)
	}
}

func (s *plainSession) printOne(m *model.Message, p cluster.Presentation) {
	if p.First {
		fmt.Fprintln(s.out)
		name := SenderStyle.Render(m.Sender.DisplayName())
		if p.Direction == cluster.Outgoing {
			name = SelfStyle.Render("you")
		}
		ts := ""
		if !m.CreatedAt.IsZero() {
			ts = "  " + DimStyle.Render(components.FormatTimestamp(m.CreatedAt, s.now()))
		}
		fmt.Fprintln(s.out, name+ts)
	}

	body := m.Text
	if m.Media != nil {
		label := DimStyle.Render(m.Media.Label())
		if body == "" {
			body = label
		} else {
			body = label + "\n" + body
		}
	}
	body = components.RenderCodeBlocks(body, max(20, s.width-2))
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintln(s.out, "  "+line)
	}

	if p.ShowReceipt {
		if r := plainReceipt(m); r != "" {
			fmt.Fprintln(s.out, "  "+DimStyle.Render(r))
		}
	}
}

// plainReceipt is the text form of a delivery receipt.
func plainReceipt(m *model.Message) string {
	switch {
	case m.Status == model.StatusPending:
		return "sending..."
	case m.Status == model.StatusFailed:
		return styles.ReceiptIndicators.Failed
	case m.Seen:
		return styles.ReceiptIndicators.Seen
	default:
		return styles.ReceiptIndicators.Sent
	}
}
