// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the webquery TUI.
//
// A Theme is built from one of three palettes (forest, dark, light) and holds
// every lipgloss style the chat screen uses, plus the glamour style name used
// for Markdown content:
//
//	theme := styles.NewTheme("forest")
//	label := theme.SenderAssistant.Render("AI")
//
// Pending placeholders pulse by cycling theme.PulseStyle(frame) on each
// spinner tick.
package styles
