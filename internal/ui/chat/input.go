// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file contains input submission and the auto-growing input box.
package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/webquery-tui/internal/logging"
)

// =============================================================================
// INPUT SUBMISSION
// =============================================================================

// submitInput sends the trimmed draft as a new turn. An empty draft is
// ignored and the input is left as it was.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" {
		return m, nil
	}

	// The conversation is about to disappear; keep the draft for later.
	if m.store.Clearing() {
		m.setStatus("Clearing chat, send again in a moment", true)
		return m, nil
	}

	if m.cfg.Stream.CancelOnResubmit {
		if ids := m.cancels.cancelAll(); len(ids) > 0 {
			logging.L().Debugw("cancelled previous answers", "message_ids", ids)
		}
	}

	m.input.Reset()
	m.resizeInput()

	id := m.store.AppendTurn(prompt)
	m.setStatus("", false)
	m.refresh(true)

	streamCmd := m.startStream(id, prompt)
	tickCmd := m.startTicking()
	return m, tea.Batch(streamCmd, tickCmd)
}

// =============================================================================
// INPUT SIZING
// =============================================================================

// resizeInput grows or shrinks the input box to fit its content, between
// one row and the configured maximum.
func (m *Model) resizeInput() {
	maxLines := m.cfg.UI.InputMaxLines
	if maxLines < 1 {
		maxLines = 1
	}
	rows := clamp(visualLineCount(m.input.Value(), m.input.Width()), 1, maxLines)
	if rows == m.input.Height() {
		return
	}
	m.input.SetHeight(rows)
	m.viewport.Height = m.viewportHeight()
}
