// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jeranaias/chatfeed/internal/anchor"
	"github.com/jeranaias/chatfeed/internal/logging"
	"github.com/jeranaias/chatfeed/internal/storage"
	"github.com/jeranaias/chatfeed/internal/telemetry"
	"github.com/jeranaias/chatfeed/internal/ui/chat"
)

type tuiOptions struct {
	root  *rootOptions
	open  string
	watch string
}

func (o *tuiOptions) bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.open, "open", "o", "", "conversation to open first (id or prefix)")
	fs.StringVarP(&o.watch, "watch", "w", "", "follow *.jsonl transcripts in this directory")
}

func newTUICmd(ro *rootOptions) *cobra.Command {
	o := &tuiOptions{root: ro}
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the full screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context())
		},
	}
	o.bindFlags(cmd.Flags())
	return cmd
}

// chatOptions maps the configuration onto the chat screen.
func (o *tuiOptions) chatOptions(store *storage.Store, metrics *telemetry.Metrics) chat.Options {
	cfg := o.root.cfg
	return chat.Options{
		Store:          store,
		Self:           o.root.self(),
		Theme:          cfg.UI.Theme,
		Markdown:       cfg.UI.Markdown,
		ShowTimestamps: cfg.UI.ShowTimestamps,
		SidebarWidth:   cfg.UI.SidebarWidth,
		Compact:        cfg.UI.CompactMode,
		Anchor: anchor.Options{
			BottomTolerance: cfg.Feed.BottomTolerance,
			PreserveWindow:  cfg.Feed.PreserveWindow(),
			SettleDelay:     cfg.Feed.SettleDelay(),
		},
		PageSize:     cfg.Feed.PageSize,
		PageInterval: cfg.Feed.PageInterval(),
		Recorder:     metrics,
	}
}

// watchDir is the --watch flag, or the configured directory when watching
// is enabled.
func (o *tuiOptions) watchDir() string {
	if o.watch != "" {
		return o.watch
	}
	if o.root.cfg.Store.Watch {
		return o.root.cfg.Store.TranscriptDir
	}
	return ""
}

func (o *tuiOptions) run(ctx context.Context) error {
	if !IsTTY() || !IsStdoutTTY() {
		return fmt.Errorf("%w: the chat screen needs an interactive terminal, try \"chatfeed plain\"", ErrNotTerminal)
	}
	log := logging.For("cli")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store, err := o.root.openStore()
	if err != nil {
		return commandError("tui", "open store", err)
	}
	defer store.Close()

	metrics := telemetry.New()
	if addr := o.root.cfg.Metrics.Addr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				log.Warn("metrics server stopped", "addr", addr, "error", err)
			}
		}()
	}

	opts := o.chatOptions(store, metrics)
	opts.Context = ctx
	if o.open != "" {
		conv, err := resolveConversation(ctx, store, opts.Self.ID, o.open)
		if err != nil {
			return err
		}
		opts.Open = conv.ID
	}

	if dir := o.watchDir(); dir != "" {
		w, err := storage.NewTranscriptWatcher(store, dir, 0)
		if err != nil {
			return commandError("tui", "watch transcripts", err)
		}
		if err := w.Start(ctx); err != nil {
			return commandError("tui", "watch transcripts", err)
		}
		defer w.Close()
		opts.Transcripts = w.Events()
		opts.WatchLabel = dir
	}

	m := chat.New(opts)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	log.Info("chat closed")
	return nil
}
