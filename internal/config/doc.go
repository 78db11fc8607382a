// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatfeed.
//
// Supports TOML and YAML configuration files, an optional .env file,
// environment variable overrides, defaults and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - FeedConfig: scroll anchoring thresholds and history paging
//   - StoreConfig: sqlite database and transcript directory
//   - UIConfig, LogConfig, MetricsConfig: presentation and observability
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHATFEED_*, optionally from .env)
//   - ~/.chatfeed/config.toml
//   - ~/.chatfeed/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load()
//	if errors.Is(err, config.ErrInvalidConfig) {
//	    ...
//	}
//	window := cfg.Feed.PreserveWindow()
package config
