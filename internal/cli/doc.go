// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatfeed command line.
//
// Commands:
//
//	chatfeed [tui]                Full screen chat (default)
//	chatfeed plain                Line mode client with history and highlighting
//	chatfeed list                 List conversations, newest first
//	chatfeed import <file.jsonl>  Load JSONL transcripts
//	chatfeed export <id> <file>   Write a conversation as JSONL
//	chatfeed seed                 Fill the store with demo conversations
//	chatfeed config show|get|set|keys|path
//
// Global flags select the config file, database, log level and metrics
// address; everything else comes from ~/.chatfeed/config.toml.
package cli
