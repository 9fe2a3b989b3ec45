// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"regexp"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// =============================================================================
// CLIPBOARD UTILITIES
// =============================================================================

// copyToClipboard copies the given text to the system clipboard.
// Returns an error if the clipboard is not available or the operation fails.
func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// =============================================================================
// TEXT UTILITIES
// =============================================================================

// calculateContentWidth returns totalWidth minus margin, never below 3.
func calculateContentWidth(totalWidth, margin int) int {
	contentWidth := totalWidth - margin
	if contentWidth < 3 {
		contentWidth = 3
	}
	return contentWidth
}

// wrapText wraps text to maxWidth display cells, preserving existing line
// breaks and breaking long lines at spaces where possible.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}

		for runewidth.StringWidth(line) > maxWidth {
			head := runewidth.Truncate(line, maxWidth, "")
			if cut := strings.LastIndexByte(head, ' '); cut > 0 {
				head = head[:cut]
			}
			if head == "" {
				// A single rune wider than maxWidth.
				r := []rune(line)
				head = string(r[:1])
			}
			result.WriteString(head)
			result.WriteString("\n")
			line = strings.TrimLeft(line[len(head):], " ")
		}
		result.WriteString(line)
	}
	return result.String()
}

// visualLineCount returns how many rows text occupies when soft-wrapped at
// width cells. An empty text occupies one row.
func visualLineCount(text string, width int) int {
	if width <= 0 {
		width = 1
	}
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		w := runewidth.StringWidth(line)
		if w == 0 {
			rows++
			continue
		}
		rows += (w + width - 1) / width
	}
	return rows
}

// clamp limits n to [lo, hi].
func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// =============================================================================
// HYPERLINKS
// =============================================================================

// urlPattern matches bare http(s) URLs, stopping at whitespace and escape
// sequences so styled output is not split.
var urlPattern = regexp.MustCompile(`https?://[^\s\x1b<>"]+`)

// linkify wraps every bare URL in an OSC 8 terminal hyperlink. Trailing
// sentence punctuation stays outside the link.
func linkify(s string) string {
	return urlPattern.ReplaceAllStringFunc(s, func(u string) string {
		trimmed := strings.TrimRight(u, ".,;:!?)]}'")
		rest := u[len(trimmed):]
		if trimmed == "" {
			return u
		}
		return termenv.Hyperlink(trimmed, trimmed) + rest
	})
}
