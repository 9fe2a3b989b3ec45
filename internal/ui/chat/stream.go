// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file bridges a transport stream into the update loop. The stream
// goroutine hands each cumulative text to the loop over an unbuffered
// channel, so every chunk is applied in order and none is skipped.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/webquery-tui/internal/transport"
)

// =============================================================================
// TRANSPORT INTERFACES
// =============================================================================

// Streamer sends a prompt and reports the cumulative answer text.
// *transport.Client satisfies it.
type Streamer interface {
	Send(ctx context.Context, prompt string, onChunk transport.ChunkFunc) error
}

// ConversationResetter forgets the server-side conversation.
// *transport.Client satisfies it.
type ConversationResetter interface {
	ResetConversation(ctx context.Context) error
}

// =============================================================================
// STREAM PLUMBING
// =============================================================================

// stream is one in-flight answer.
type stream struct {
	id     int64
	chunks chan string
	done   chan error
}

// startStream runs Send in a goroutine and returns the command that
// delivers its first message. The stream is registered for cancellation
// under id.
func (m Model) startStream(id int64, prompt string) tea.Cmd {
	ctx, cancel := m.cfg.RequestContext(context.Background())
	m.cancels.set(id, cancel)

	s := &stream{
		id:     id,
		chunks: make(chan string),
		done:   make(chan error, 1),
	}

	client := m.client
	go func() {
		if client == nil {
			s.done <- &transport.TransportError{Kind: transport.KindNetwork, Message: "no endpoint configured"}
			return
		}
		err := client.Send(ctx, prompt, func(text string) {
			select {
			case s.chunks <- text:
			case <-ctx.Done():
			}
		})
		s.done <- err
	}()

	return waitForStream(s)
}

// waitForStream returns a command that blocks until the stream produces its
// next chunk or finishes. Chunks always arrive before the completion.
func waitForStream(s *stream) tea.Cmd {
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case text := <-s.chunks:
			return StreamChunkMsg{MessageID: s.id, Text: text, stream: s}
		case err := <-s.done:
			return StreamDoneMsg{MessageID: s.id, Err: err}
		}
	}
}
