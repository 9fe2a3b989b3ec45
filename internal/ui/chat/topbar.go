// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file renders the one-line top bar and maps mouse clicks on it to
// actions.
package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/webquery-tui/internal/ui/styles"
)

const (
	brandText  = "webquery"
	clearLabel = "[ Clear Chat ]"
	// activityWidth reserves room for the spinner so the button never moves.
	activityWidth = 4
)

// themeLabel is the text of the theme selector.
func themeLabel(name string) string {
	return "[theme: " + name + "]"
}

// =============================================================================
// LAYOUT
// =============================================================================

// span is a half-open column range on the top bar row.
type span struct {
	start, end int
}

func (s span) contains(x int) bool {
	return x >= s.start && x < s.end
}

// topBarLayout records where the clickable parts of the top bar are.
type topBarLayout struct {
	theme span
	clear span
}

// layoutTopBar computes column ranges for a bar of the given width.
// The brand and selector sit at the left, the clear button at the right.
func layoutTopBar(width int, themeName string) topBarLayout {
	themeStart := 1 + runewidth.StringWidth(brandText) + 2
	themeEnd := themeStart + runewidth.StringWidth(themeLabel(themeName))

	clearEnd := width - 1
	clearStart := clearEnd - runewidth.StringWidth(clearLabel)
	if clearStart < themeEnd+activityWidth {
		clearStart = themeEnd + activityWidth
		clearEnd = clearStart + runewidth.StringWidth(clearLabel)
	}

	return topBarLayout{
		theme: span{themeStart, themeEnd},
		clear: span{clearStart, clearEnd},
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// renderTopBar draws the bar. activity is the spinner frame, empty when idle.
func renderTopBar(width int, theme *styles.Theme, activity string, clearing bool) string {
	layout := layoutTopBar(width, theme.Name())

	left := " " + theme.Brand.Render(brandText) + "  " + theme.ThemeSelector.Render(themeLabel(theme.Name()))

	button := theme.ClearButton.Render(clearLabel)
	if clearing {
		button = theme.ClearBusy.Render(clearLabel)
	}

	activity = runewidth.FillRight(runewidth.Truncate(activity, activityWidth-1, ""), activityWidth-1)
	gap := layout.clear.start - activityWidth - lipgloss.Width(left)
	if gap < 0 {
		gap = 0
	}

	return left +
		strings.Repeat(" ", gap) +
		theme.Spinner.Render(activity) + " " +
		button + " "
}

// =============================================================================
// HIT TESTING
// =============================================================================

// topBarAction is what a click on the top bar does.
type topBarAction int

const (
	topBarNone topBarAction = iota
	topBarClear
	topBarTheme
)

// hitTopBar maps a click at column x on row y to an action.
func hitTopBar(x, y, width int, themeName string) topBarAction {
	if y != 0 {
		return topBarNone
	}
	layout := layoutTopBar(width, themeName)
	switch {
	case layout.clear.contains(x):
		return topBarClear
	case layout.theme.contains(x):
		return topBarTheme
	}
	return topBarNone
}
