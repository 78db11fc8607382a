// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatfeed/internal/config"
	"github.com/jeranaias/chatfeed/internal/logging"
	"github.com/jeranaias/chatfeed/internal/model"
	"github.com/jeranaias/chatfeed/internal/storage"
)

// Version information, set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootOptions holds the global flags and the configuration they resolve to.
type rootOptions struct {
	configPath  string
	dbPath      string
	logLevel    string
	logSink     string
	metricsAddr string
	userID      string

	cfg *config.Config
}

// NewRootCmd builds the chatfeed command tree. Running it without a
// subcommand starts the full screen UI.
func NewRootCmd() *cobra.Command {
	ro := &rootOptions{}
	tui := &tuiOptions{root: ro}

	root := &cobra.Command{
		Use:   "chatfeed",
		Short: "Terminal chat feed with anchored scrolling",
		Long: `chatfeed shows conversations stored in a local sqlite database.
The feed stays pinned to the newest message, keeps your place while
older history loads above it, and follows JSONL transcripts live.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ro.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.run(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&ro.configPath, "config", "c", "", "config file (default ~/.chatfeed/config.toml)")
	pf.StringVar(&ro.dbPath, "db", "", "sqlite database path")
	pf.StringVar(&ro.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&ro.logSink, "log", "", `log sink: "stderr" or "file:<path>"`)
	pf.StringVar(&ro.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.StringVarP(&ro.userID, "user", "u", "", "current user id")
	tui.bindFlags(root.Flags())

	root.AddCommand(
		newTUICmd(ro),
		newPlainCmd(ro),
		newListCmd(ro),
		newImportCmd(ro),
		newExportCmd(ro),
		newSeedCmd(ro),
		newConfigCmd(ro),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
		return ExitCode(err)
	}
	return ExitSuccess
}

// setup loads .env and the config file, applies flag overrides and
// installs the logger.
func (o *rootOptions) setup() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logSink != "" {
		cfg.Log.Sink = o.logSink
	}
	if o.metricsAddr != "" {
		cfg.Metrics.Addr = o.metricsAddr
	}
	if o.userID != "" {
		cfg.User.ID = o.userID
	}

	if err := logging.Init(cfg.Log.Level, cfg.Log.Sink); err != nil {
		return &UsageError{Err: err}
	}
	o.cfg = cfg
	return nil
}

// openStore opens the configured database.
func (o *rootOptions) openStore() (*storage.Store, error) {
	path, err := o.cfg.DatabasePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// self is the configured current user.
func (o *rootOptions) self() model.Sender {
	return model.Sender{ID: o.cfg.User.ID, Name: o.cfg.User.Name}
}

// resolveConversation accepts a full conversation ID or a unique prefix of
// one, as printed by "chatfeed list".
func resolveConversation(ctx context.Context, store *storage.Store, self, ref string) (*model.Conversation, error) {
	if ref == "" {
		return nil, &UsageError{Err: errors.New("conversation id required")}
	}
	conv, err := store.Conversation(ctx, ref, self)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, storage.ErrConversationNotFound) {
		return nil, err
	}

	const batch = 200
	var found *model.Conversation
	for offset := 0; ; offset += batch {
		page, err := store.ListConversations(ctx, self, offset, batch)
		if err != nil {
			return nil, err
		}
		for _, c := range page {
			if !strings.HasPrefix(c.ID, ref) {
				continue
			}
			if found != nil {
				return nil, &UsageError{Err: fmt.Errorf("conversation %q is ambiguous", ref)}
			}
			found = c
		}
		if len(page) < batch {
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrConversationNotFound, ref)
	}
	return found, nil
}
