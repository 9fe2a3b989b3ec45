// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea message types used by the chat screen:
//   - Streaming: cumulative text and completion for one assistant message
//   - Clearing: the end of the clearing transition
//   - Config: live reload results
//   - Side effects: clipboard and conversation reset results
package chat

import (
	"github.com/jeranaias/webquery-tui/internal/config"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamChunkMsg carries the cumulative text received so far for one
// assistant message.
type StreamChunkMsg struct {
	MessageID int64
	Text      string

	stream *stream
}

// StreamDoneMsg signals that the stream for MessageID ended. Err is nil
// when the body ended cleanly.
type StreamDoneMsg struct {
	MessageID int64
	Err       error
}

// =============================================================================
// CLEARING MESSAGES
// =============================================================================

// ClearRequestMsg asks the screen to clear the conversation, as the Clear
// Chat button does.
type ClearRequestMsg struct{}

// clearDoneMsg fires when the clearing transition has run its course.
type clearDoneMsg struct{}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// =============================================================================
// SIDE EFFECT RESULTS
// =============================================================================

// conversationResetMsg reports the outcome of deleting the server-side
// conversation after a clear.
type conversationResetMsg struct {
	Err error
}

// copyResultMsg reports the outcome of copying an answer to the clipboard.
type copyResultMsg struct {
	Err error
}
