// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/chatfeed/internal/config"
	"github.com/jeranaias/chatfeed/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitNotFoundError = 7
)

// ErrNotTerminal is returned by the full screen UI when stdin or stdout is
// not a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError wraps invalid flags or arguments.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// CommandError is a failed command with the action it was performing.
type CommandError struct {
	Command string // e.g. "import"
	Action  string // e.g. "read transcript"
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func commandError(command, action string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: command, Action: action, Err: err}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	var usage *UsageError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usage), errors.Is(err, ErrNotTerminal):
		return ExitUsageError
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, storage.ErrConversationNotFound), errors.Is(err, storage.ErrMessageNotFound):
		return ExitNotFoundError
	default:
		return ExitGeneralError
	}
}
