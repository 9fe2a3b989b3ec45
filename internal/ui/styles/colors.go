// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the webquery TUI.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTE
// =============================================================================

// Palette is the set of colors one theme is built from.
type Palette struct {
	Name string

	// Accents
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor
	Danger    lipgloss.TerminalColor

	// Surfaces
	Surface    lipgloss.TerminalColor
	SurfaceDim lipgloss.TerminalColor
	Overlay    lipgloss.TerminalColor

	// Text
	TextPrimary   lipgloss.TerminalColor
	TextSecondary lipgloss.TerminalColor
	TextMuted     lipgloss.TerminalColor

	// User bubble
	UserBubbleBg lipgloss.TerminalColor
	UserBubbleFg lipgloss.TerminalColor

	// GlamourStyle names the glamour standard style used for Markdown.
	GlamourStyle string
}

// =============================================================================
// FOREST
// =============================================================================

// Forest is the default green-on-charcoal palette.
var Forest = Palette{
	Name:      "forest",
	Primary:   lipgloss.Color("#1EB854"),
	Secondary: lipgloss.Color("#1DB88E"),
	Accent:    lipgloss.Color("#1DB8AB"),
	Danger:    lipgloss.Color("#F87272"),

	Surface:    lipgloss.Color("#171212"),
	SurfaceDim: lipgloss.Color("#0F0C0C"),
	Overlay:    lipgloss.Color("#19362D"),

	TextPrimary:   lipgloss.Color("#E4E4E4"),
	TextSecondary: lipgloss.Color("#B3B3B3"),
	TextMuted:     lipgloss.Color("#6B7280"),

	// Tailwind blue-950 at 70%, flattened onto the surface
	UserBubbleBg: lipgloss.Color("#1A2040"),
	UserBubbleFg: lipgloss.Color("#E0F2FE"),

	GlamourStyle: "dark",
}

// =============================================================================
// DARK (Catppuccin Mocha)
// =============================================================================

// Dark is a purple and cyan palette for dark terminals.
var Dark = Palette{
	Name:      "dark",
	Primary:   lipgloss.Color("#A78BFA"),
	Secondary: lipgloss.Color("#22D3EE"),
	Accent:    lipgloss.Color("#34D399"),
	Danger:    lipgloss.Color("#FB7185"),

	Surface:    lipgloss.Color("#1E1E2E"),
	SurfaceDim: lipgloss.Color("#181825"),
	Overlay:    lipgloss.Color("#313244"),

	TextPrimary:   lipgloss.Color("#CDD6F4"),
	TextSecondary: lipgloss.Color("#A6ADC8"),
	TextMuted:     lipgloss.Color("#6C7086"),

	UserBubbleBg: lipgloss.Color("#1D4ED8"),
	UserBubbleFg: lipgloss.Color("#E0F2FE"),

	GlamourStyle: "dracula",
}

// =============================================================================
// LIGHT (Catppuccin Latte)
// =============================================================================

// Light is the palette for light terminals.
var Light = Palette{
	Name:      "light",
	Primary:   lipgloss.Color("#7C3AED"),
	Secondary: lipgloss.Color("#0891B2"),
	Accent:    lipgloss.Color("#059669"),
	Danger:    lipgloss.Color("#E11D48"),

	Surface:    lipgloss.Color("#FFFFFF"),
	SurfaceDim: lipgloss.Color("#F5F5F5"),
	Overlay:    lipgloss.Color("#E5E5E5"),

	TextPrimary:   lipgloss.Color("#1F2937"),
	TextSecondary: lipgloss.Color("#6B7280"),
	TextMuted:     lipgloss.Color("#9CA3AF"),

	UserBubbleBg: lipgloss.Color("#DBEAFE"),
	UserBubbleFg: lipgloss.Color("#1E40AF"),

	GlamourStyle: "light",
}

// palettes indexes the built-in palettes by name.
var palettes = map[string]Palette{
	Forest.Name: Forest,
	Dark.Name:   Dark,
	Light.Name:  Light,
}

// PaletteByName returns the named palette, or Forest when unknown.
func PaletteByName(name string) Palette {
	if p, ok := palettes[name]; ok {
		return p
	}
	return Forest
}
