// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/webquery-tui/internal/logging"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// markdownRenderer renders message content with glamour. The glamour
// renderer is rebuilt only when the style or wrap width changes.
type markdownRenderer struct {
	style      string
	width      int
	hyperlinks bool
	plain      bool
	renderer   *glamour.TermRenderer
}

// newMarkdownRenderer creates a renderer for the given glamour style.
func newMarkdownRenderer(style string, width int, hyperlinks bool) *markdownRenderer {
	mr := &markdownRenderer{hyperlinks: hyperlinks}
	mr.configure(style, width)
	return mr
}

// configure rebuilds the glamour renderer when style or width changed.
func (mr *markdownRenderer) configure(style string, width int) {
	if width < 10 {
		width = 10
	}
	if mr.renderer != nil && style == mr.style && width == mr.width {
		return
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.L().Warnw("markdown renderer unavailable", "style", style, "error", err)
		r = nil
	}
	mr.style = style
	mr.width = width
	mr.renderer = r
}

// Render converts Markdown to styled terminal text. In plain mode, or on
// failure, the text is returned wrapped but otherwise untouched.
func (mr *markdownRenderer) Render(text string) string {
	out := wrapText(text, mr.width)
	if mr.renderer != nil && !mr.plain {
		rendered, err := mr.renderer.Render(text)
		if err == nil {
			out = strings.Trim(rendered, "\n")
		}
	}
	if mr.hyperlinks {
		out = linkify(out)
	}
	return out
}
