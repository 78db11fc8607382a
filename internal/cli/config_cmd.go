// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatfeed/internal/config"
)

func newConfigCmd(ro *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return NewJSONResponse("config show", ro.cfg).Write(cmd.OutOrStdout())
			}
			fmt.Fprint(cmd.OutOrStdout(), ro.cfg.String())
			return nil
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting, e.g. feed.page_size",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := ro.cfg.Get(args[0])
			if err != nil {
				return &UsageError{Err: err}
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ro.writablePath()
			if err != nil {
				return err
			}
			cfg, err := loadForEdit(path)
			if err != nil {
				return err
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return &UsageError{Err: err}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := saveConfig(cfg, path); err != nil {
				return commandError("config", "save", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s (%s)\n", SuccessStyle.Render("set"), args[0], args[1], path)
			return nil
		},
	}

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List every setting key",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.GetAllKeys(), "\n"))
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ro.writablePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.AddCommand(show, get, set, keys, path)
	return cmd
}

// writablePath is --config, or the existing file in the config directory
// (TOML first), or a new config.toml.
func (o *rootOptions) writablePath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	yamlPath, err := config.ConfigPathYAML()
	if err != nil {
		return "", err
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err != nil {
		if _, err := os.Stat(yamlPath); err == nil {
			return yamlPath, nil
		}
	}
	return tomlPath, nil
}

// loadForEdit reads path without the command line overrides, falling back
// to defaults when the file does not exist yet.
func loadForEdit(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.LoadFromPath(path)
}

func saveConfig(cfg *config.Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.SaveYAML(cfg, path)
	default:
		return config.SaveTOML(cfg, path)
	}
}
