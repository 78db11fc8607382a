// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/storage"
)

// =============================================================================
// LIST
// =============================================================================

func newListCmd(ro *rootOptions) *cobra.Command {
	var (
		limit  int
		search string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversations, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ro.openStore()
			if err != nil {
				return commandError("list", "open store", err)
			}
			defer store.Close()

			ctx, self := cmd.Context(), ro.cfg.User.ID
			load := func() ([]*model.Conversation, error) {
				if search != "" {
					return store.SearchConversations(ctx, self, search, limit)
				}
				return store.ListConversations(ctx, self, 0, limit)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return outputJSON(out, "list", func() (interface{}, error) {
					convs, err := load()
					if convs == nil {
						convs = []*model.Conversation{}
					}
					return convs, err
				})
			}
			convs, err := load()
			if err != nil {
				return commandError("list", "load conversations", err)
			}
			fmt.Fprint(out, storage.FormatConversationList(convs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum conversations to show")
	cmd.Flags().StringVarP(&search, "search", "s", "", "only titles or previews containing this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// =============================================================================
// IMPORT / EXPORT
// =============================================================================

func newImportCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.jsonl>...",
		Short: "Import JSONL transcripts, one conversation per file",
		Long: `Each line of a transcript is one message:

  {"id":"m1","user":{"id":"alice","name":"Alice"},"createdAt":"2025-03-01T12:00:00Z","text":"hi"}

Messages without an id get one; importing a file again updates its
messages in place.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ro.openStore()
			if err != nil {
				return commandError("import", "open store", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			total := 0
			for _, path := range args {
				id, n, err := store.ImportFile(cmd.Context(), path)
				if err != nil {
					return commandError("import", "read transcript", err)
				}
				total += n
				fmt.Fprintf(out, "%s %s messages from %s into %s\n",
					SuccessStyle.Render("imported"), humanize.Comma(int64(n)), path, id)
			}
			if len(args) > 1 {
				fmt.Fprintf(out, "%s messages in %d files\n", humanize.Comma(int64(total)), len(args))
			}
			return nil
		},
	}
}

func newExportCmd(ro *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <conversation> <file.jsonl>",
		Short: "Write a conversation's full history as JSONL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ro.openStore()
			if err != nil {
				return commandError("export", "open store", err)
			}
			defer store.Close()

			conv, err := resolveConversation(cmd.Context(), store, ro.cfg.User.ID, args[0])
			if err != nil {
				return err
			}
			n, err := store.ExportFile(cmd.Context(), conv.ID, args[1])
			if err != nil {
				return commandError("export", "write transcript", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s messages to %s\n",
				SuccessStyle.Render("exported"), humanize.Comma(int64(n)), args[1])
			return nil
		},
	}
}

// =============================================================================
// SEED
// =============================================================================

func newSeedCmd(ro *rootOptions) *cobra.Command {
	var conversations, messages int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo conversations with long histories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if conversations <= 0 || messages <= 0 {
				return &UsageError{Err: fmt.Errorf("--conversations and --messages must be positive")}
			}
			store, err := ro.openStore()
			if err != nil {
				return commandError("seed", "open store", err)
			}
			defer store.Close()

			n, err := seedStore(cmd.Context(), store, ro.self(), conversations, messages, time.Now())
			if err != nil {
				return commandError("seed", "write messages", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d conversations with %s messages\n",
				SuccessStyle.Render("seeded"), conversations, humanize.Comma(int64(n)))
			return nil
		},
	}
	cmd.Flags().IntVar(&conversations, "conversations", 3, "number of conversations")
	cmd.Flags().IntVar(&messages, "messages", 120, "messages per conversation")
	return cmd
}

var seedTitles = []string{"Release planning", "Incident review", "Lunch", "Design sync", "Random"}

var seedPeers = []model.Sender{
	{ID: "alice", Name: "Alice"},
	{ID: "bob", Name: "Bob"},
	{ID: "carol", Name: "Carol"},
}

var seedLines = []string{
	"Morning! Did the nightly build go through?",
	"Yes, all green.",
	"Can someone look at the flaky paging test?",
	"On it.",
	"Here is the query I ended up with:\n```sql\nSELECT id, text FROM messages\n WHERE conversation_id = ?\n ORDER BY created_at DESC, seq DESC\n LIMIT 30;\n```",
	"**Reminder:** demo at 3pm.",
	"Checklist:\n- scroll stays put when history loads\n- new messages follow when at the bottom\n- switching resets to the newest",
	"Sounds good to me",
	"I'll write it up.",
	"```go\nfunc (c *Controller) Settle() {\n\tc.apply()\n}\n```",
	"Thanks!",
	"Pushed a fix, please take another look",
}

// seedStore writes deterministic conversations ending at now. Senders come
// in short bursts so histories contain clusters of every length.
func seedStore(ctx context.Context, store *storage.Store, self model.Sender, conversations, messages int, now time.Time) (int, error) {
	total := 0
	for c := 0; c < conversations; c++ {
		title := seedTitles[c%len(seedTitles)]
		if c >= len(seedTitles) {
			title = fmt.Sprintf("%s %d", title, c/len(seedTitles)+1)
		}
		// Older conversations end an hour earlier each.
		end := now.Add(-time.Duration(c) * time.Hour)
		conv := model.NewConversation(title)
		conv.CreatedAt = end.Add(-time.Duration(messages+1) * time.Minute)
		conv.UpdatedAt = conv.CreatedAt
		if err := store.CreateConversation(ctx, conv); err != nil {
			return total, err
		}

		msgs := make([]*model.Message, 0, messages)
		for i := 0; i < messages; i++ {
			sender := self
			// Bursts of 1-3 messages alternating between peers and self.
			if burst := (i / (1 + (i+c)%3)) % 2; burst == 0 {
				sender = seedPeers[(i/5+c)%len(seedPeers)]
			}
			msgs = append(msgs, &model.Message{
				ID:        model.NewID(),
				Sender:    sender,
				CreatedAt: end.Add(-time.Duration(messages-i) * time.Minute),
				Text:      seedLines[(i*7+c)%len(seedLines)],
				Status:    model.StatusSent,
			})
		}
		if err := store.Append(ctx, conv.ID, msgs...); err != nil {
			return total, err
		}
		total += len(msgs)
	}
	return total, nil
}
