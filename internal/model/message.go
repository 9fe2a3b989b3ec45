// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation and its messages.
package model

import (
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns the label shown above a message.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderAssistant:
		return "AI"
	default:
		return string(s)
	}
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status is the lifecycle state of a message.
type Status int

const (
	// StatusPending is an assistant placeholder that has not received text yet.
	StatusPending Status = iota
	// StatusStreaming has received at least one chunk.
	StatusStreaming
	// StatusComplete is final.
	StatusComplete
	// StatusFailed is final; the text is the apology.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusStreaming:
		return "streaming"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsFinal reports whether no further text updates are expected.
func (s Status) IsFinal() bool {
	return s == StatusComplete || s == StatusFailed
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// PendingText is shown in place of an assistant message that has no text yet.
const PendingText = "Thinking..."

// ErrorText replaces an assistant message whose stream failed.
const ErrorText = "Sorry, I ran into an error."

// CancelledText marks an assistant message stopped before any text arrived.
const CancelledText = "(cancelled)"

// EmptyAnswerText marks an assistant message whose stream ended cleanly
// without any text.
const EmptyAnswerText = "(no answer)"

// Message is one entry in the conversation.
type Message struct {
	// ID is the creation time in Unix milliseconds, unique within a Store.
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
	Status Status `json:"status"`
}

// Timestamp returns the creation time encoded in the ID.
func (m Message) Timestamp() time.Time {
	return time.UnixMilli(m.ID)
}

// Clock returns the creation time as HH:MM in local time.
func (m Message) Clock() string {
	return m.Timestamp().Format("15:04")
}

// IsPending reports whether the message is waiting for its first chunk.
func (m Message) IsPending() bool {
	return m.Status == StatusPending
}

// DisplayText returns what the render surface shows as content.
func (m Message) DisplayText() string {
	if m.Status == StatusPending && m.Text == "" {
		return PendingText
	}
	return m.Text
}
