// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file renders the screen. RenderMessages is a pure function of the
// messages, the clearing flag and the render options.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/webquery-tui/internal/model"
	"github.com/jeranaias/webquery-tui/internal/ui/styles"
)

// EmptyStateText invites the first question.
const EmptyStateText = "Hello! Start searching the Web."

// userBubbleRatio is the widest a user bubble may get, in percent of the
// viewport width.
const userBubbleRatio = 80

// =============================================================================
// SCREEN
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	activity := ""
	if m.ticking && m.animating() {
		frames := styles.DotsSpinner.Frames
		activity = frames[m.frame%len(frames)]
	}

	top := renderTopBar(m.width, m.theme, activity, m.store.Clearing())
	input := m.theme.InputContainer.
		Width(calculateContentWidth(m.width, inputChrome)).
		Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		m.viewport.View(),
		input,
		m.renderHelpLine(),
	)
}

// renderHelpLine shows the status message, if any, then key hints.
func (m Model) renderHelpLine() string {
	line := m.help.View(m.keys)
	if m.status != "" {
		style := m.theme.StatusOK
		if m.statusErr {
			style = m.theme.StatusErr
		}
		line = style.Render(m.status) + "  " + line
	}
	return m.theme.HelpBar.MaxWidth(m.width).Render(line)
}

// =============================================================================
// MESSAGES
// =============================================================================

// RenderOptions controls RenderMessages.
type RenderOptions struct {
	Width  int
	Height int
	Theme  *styles.Theme

	// Markdown renders assistant text. Text is wrapped plainly when nil.
	Markdown func(string) string

	// PulseFrame advances the pending placeholder animation.
	PulseFrame int
}

// RenderMessages draws the conversation. With no messages it shows the
// empty state centered. While clearing, every message is drawn faded and
// shifted left.
func RenderMessages(msgs []model.Message, clearing bool, opts RenderOptions) string {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.Forest.Name)
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	if len(msgs) == 0 {
		height := opts.Height
		if height < 1 {
			height = 1
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.EmptyState.Render(EmptyStateText))
	}

	blocks := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Sender == model.SenderUser {
			blocks = append(blocks, renderUserMessage(msg, clearing, width, theme))
		} else {
			blocks = append(blocks, renderAssistantMessage(msg, clearing, width, theme, opts))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// renderHeader renders "You 14:02" or "AI 14:02".
func renderHeader(msg model.Message, clearing bool, theme *styles.Theme) string {
	name := msg.Sender.DisplayName()
	if clearing {
		return theme.Faded.Render(name + " " + msg.Clock())
	}

	style := theme.SenderAssistant
	if msg.Sender == model.SenderUser {
		style = theme.SenderUser
	}
	return style.Render(name) + " " + theme.Timestamp.Render(msg.Clock())
}

// renderUserMessage draws the prompt as a right-aligned bubble.
func renderUserMessage(msg model.Message, clearing bool, width int, theme *styles.Theme) string {
	bubbleWidth := calculateContentWidth(width*userBubbleRatio/100, 2)
	text := wrapText(msg.Text, bubbleWidth)

	body := theme.UserBubble.Render(text)
	margin := 0
	if clearing {
		body = theme.Faded.Render(text)
		margin = styles.ClearOffset
	}

	block := renderHeader(msg, clearing, theme) + "\n" + body
	return lipgloss.PlaceHorizontal(calculateContentWidth(width, margin), lipgloss.Right, block)
}

// renderAssistantMessage draws the answer. Pending answers pulse, failed
// answers show the apology.
func renderAssistantMessage(msg model.Message, clearing bool, width int, theme *styles.Theme, opts RenderOptions) string {
	header := renderHeader(msg, clearing, theme)

	if clearing {
		return header + "\n" + theme.Faded.Render(wrapText(msg.DisplayText(), width))
	}

	contentWidth := calculateContentWidth(width, assistantIndent)
	var body string
	switch {
	case msg.IsPending() && msg.Text == "":
		body = strings.Repeat(" ", assistantIndent) + theme.PulseStyle(opts.PulseFrame).Render(model.PendingText)

	case msg.Status == model.StatusFailed:
		body = theme.FailedBlock.Render(wrapText(msg.Text, contentWidth))

	default:
		content := wrapText(msg.Text, contentWidth)
		if opts.Markdown != nil {
			content = opts.Markdown(msg.Text)
		}
		body = theme.AssistantBlock.Render(content)
	}

	return header + "\n" + body
}
