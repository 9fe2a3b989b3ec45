// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains the update loop: every state transition of the
// conversation happens in one of the handlers below.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/webquery-tui/internal/config"
	"github.com/jeranaias/webquery-tui/internal/logging"
	"github.com/jeranaias/webquery-tui/internal/transport"
)

// resetTimeout bounds the conversation reset after a clear.
const resetTimeout = 10 * time.Second

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case spinner.TickMsg:
		return m.handleTick(msg)

	case StreamChunkMsg:
		return m.handleStreamChunk(msg)

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case ClearRequestMsg:
		return m.beginClear()

	case clearDoneMsg:
		return m.finishClear()

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case conversationResetMsg:
		if msg.Err != nil {
			logging.L().Warnw("conversation reset failed", "error", msg.Err)
			m.setStatus("Could not reset the server conversation", true)
		}
		return m, nil

	case copyResultMsg:
		if msg.Err != nil {
			m.setStatus("Clipboard unavailable: "+msg.Err.Error(), true)
		} else {
			m.setStatus("Copied answer to clipboard", false)
		}
		return m, nil
	}

	// Cursor blink and anything else the textarea understands.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYBOARD
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancels.cancelAll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keys.Clear):
		return m.beginClear()

	case key.Matches(msg, m.keys.Cancel):
		if ids := m.cancels.cancelAll(); len(ids) > 0 {
			m.setStatus("Stopped", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		m.setTheme(config.NextTheme(m.theme.Name()))
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m.copyLastAnswer()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	// Everything else edits the draft; Newline is bound inside the textarea.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.resizeInput()
	return m, cmd
}

// =============================================================================
// MOUSE
// =============================================================================

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		switch hitTopBar(msg.X, msg.Y, m.width, m.theme.Name()) {
		case topBarClear:
			return m.beginClear()
		case topBarTheme:
			m.setTheme(config.NextTheme(m.theme.Name()))
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// ANIMATION
// =============================================================================

// handleTick advances the spinner and the pending pulse. Ticking stops
// once nothing is streaming or clearing.
func (m Model) handleTick(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if !m.animating() {
		m.ticking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.ticker, cmd = m.ticker.Update(msg)
	if cmd == nil {
		m.ticking = false
		return m, nil
	}

	m.frame++
	if m.store.HasPending() {
		m.refresh(false)
	}
	return m, cmd
}

// =============================================================================
// STREAMING
// =============================================================================

// handleStreamChunk applies the cumulative text to its message. Chunks for
// messages that were cleared or already finished change nothing.
func (m Model) handleStreamChunk(msg StreamChunkMsg) (tea.Model, tea.Cmd) {
	if m.store.UpdateMessageText(msg.MessageID, msg.Text) {
		m.refresh(true)
	}
	return m, waitForStream(msg.stream)
}

// handleStreamDone finalizes the message the stream was writing.
// A cancelled stream keeps what it received; any other failure replaces
// the text with the apology.
func (m Model) handleStreamDone(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	m.cancels.remove(msg.MessageID)

	switch {
	case msg.Err == nil:
		m.store.Complete(msg.MessageID, false)

	case transport.IsCanceled(msg.Err):
		m.store.Complete(msg.MessageID, true)

	default:
		logging.L().Errorw("answer failed",
			"message_id", msg.MessageID,
			"status", transport.StatusCode(msg.Err),
			"timeout", transport.IsTimeout(msg.Err),
			"error", msg.Err)
		if m.store.Fail(msg.MessageID) {
			m.setStatus(msg.Err.Error(), true)
		}
	}

	m.refresh(true)
	return m, nil
}

// =============================================================================
// CLEARING
// =============================================================================

// beginClear starts the clearing transition. The conversation is emptied
// when clearDoneMsg arrives.
func (m Model) beginClear() (tea.Model, tea.Cmd) {
	if !m.store.BeginClear() {
		return m, nil
	}

	if m.cfg.Stream.CancelOnClear {
		m.cancels.cancelAll()
	}
	m.refresh(false)

	delay := m.cfg.ClearDelay()
	if delay <= 0 {
		return m.finishClear()
	}

	tickCmd := m.startTicking()
	return m, tea.Batch(
		tea.Tick(delay, func(time.Time) tea.Msg { return clearDoneMsg{} }),
		tickCmd,
	)
}

// finishClear empties the conversation and ends the transition.
func (m Model) finishClear() (tea.Model, tea.Cmd) {
	m.store.Clear()
	m.setStatus("", false)
	m.refresh(true)

	if !m.cfg.Endpoint.ResetOnClear {
		return m, nil
	}
	if r, ok := m.client.(ConversationResetter); ok {
		return m, resetConversation(r)
	}
	return m, nil
}

// resetConversation forgets the server-side history.
func resetConversation(r ConversationResetter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), resetTimeout)
		defer cancel()
		return conversationResetMsg{Err: r.ResetConversation(ctx)}
	}
}

// =============================================================================
// CLIPBOARD
// =============================================================================

// copyLastAnswer copies the newest assistant answer.
func (m Model) copyLastAnswer() (tea.Model, tea.Cmd) {
	last, ok := m.store.LastAssistant()
	if !ok {
		m.setStatus("Nothing to copy yet", true)
		return m, nil
	}

	copyFn := m.copyFn
	text := last.Text
	return m, func() tea.Msg {
		return copyResultMsg{Err: copyFn(text)}
	}
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// handleConfigReload applies a configuration reloaded from disk. The
// endpoint is fixed for the life of the screen.
func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || msg.Config == nil {
		logging.L().Warnw("config reload failed", "error", msg.Err)
		if msg.Err != nil {
			m.setStatus("Config reload failed: "+msg.Err.Error(), true)
		}
		return m, nil
	}

	cfg := msg.Config.Clone()
	cfg.Endpoint.URL = m.cfg.Endpoint.URL
	m.cfg = cfg

	logging.SetLevel(cfg.Log.Level)
	logging.L().Infow("config reloaded", "theme", cfg.UI.Theme, "log_level", logging.Level())
	m.input.Placeholder = cfg.UI.Placeholder
	m.markdown.hyperlinks = cfg.UI.Hyperlinks
	m.markdown.plain = !cfg.UI.Markdown

	m.setTheme(cfg.UI.Theme)
	m.resizeInput()
	m.refresh(false)
	m.setStatus("Config reloaded", false)
	return m, nil
}
