// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	Palette Palette

	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// TOP BAR STYLES
	// ==========================================================================

	TopBar        lipgloss.Style
	Brand         lipgloss.Style
	ThemeSelector lipgloss.Style
	ClearButton   lipgloss.Style
	ClearBusy     lipgloss.Style
	Spinner       lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	SenderUser      lipgloss.Style
	SenderAssistant lipgloss.Style
	Timestamp       lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBlock  lipgloss.Style
	FailedBlock     lipgloss.Style
	Faded           lipgloss.Style
	EmptyState      lipgloss.Style

	// Pulse holds one style per pulse level, dimmest first.
	Pulse [PulsePhases]lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	InputText      lipgloss.Style
	Placeholder    lipgloss.Style

	// ==========================================================================
	// STATUS LINE STYLES
	// ==========================================================================

	HelpBar   lipgloss.Style
	StatusOK  lipgloss.Style
	StatusErr lipgloss.Style
}

// NewTheme creates a theme from the named palette. Unknown names use Forest.
func NewTheme(name string) *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		Palette:      PaletteByName(name),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.IsDark = t.Palette.Name != Light.Name
	t.initStyles()
	return t
}

// Name returns the palette name.
func (t *Theme) Name() string {
	return t.Palette.Name
}

// GlamourStyle returns the glamour standard style matching the palette.
func (t *Theme) GlamourStyle() string {
	return t.Palette.GlamourStyle
}

// PulseStyle returns the pending-message style for a pulse tick.
func (t *Theme) PulseStyle(frame int) lipgloss.Style {
	return t.Pulse[PulseLevel(frame)]
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	p := t.Palette

	// Top bar
	t.TopBar = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Padding(0, 1)

	t.Brand = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary)

	t.ThemeSelector = lipgloss.NewStyle().
		Foreground(p.TextSecondary).
		Underline(true)

	t.ClearButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#B91C1C"))

	t.ClearBusy = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Background(p.Overlay)

	t.Spinner = lipgloss.NewStyle().
		Foreground(p.Secondary)

	// Messages
	t.SenderUser = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Secondary)

	t.SenderAssistant = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Primary)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(p.TextMuted)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserBubbleFg).
		Background(p.UserBubbleBg).
		Padding(0, 1)

	t.AssistantBlock = lipgloss.NewStyle().
		Foreground(p.TextPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(p.Overlay).
		PaddingLeft(1)

	t.FailedBlock = lipgloss.NewStyle().
		Foreground(p.Danger).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(p.Danger).
		PaddingLeft(1)

	t.Faded = lipgloss.NewStyle().
		Faint(true).
		Foreground(p.TextMuted)

	t.EmptyState = lipgloss.NewStyle().
		Faint(true).
		Foreground(p.TextSecondary)

	t.Pulse[0] = lipgloss.NewStyle().Faint(true).Foreground(p.TextMuted)
	t.Pulse[1] = lipgloss.NewStyle().Foreground(p.TextMuted)
	t.Pulse[2] = lipgloss.NewStyle().Foreground(p.TextSecondary)
	t.Pulse[3] = lipgloss.NewStyle().Bold(true).Foreground(p.TextPrimary)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(p.TextPrimary)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Italic(true)

	// Status line
	t.HelpBar = lipgloss.NewStyle().
		Foreground(p.TextMuted).
		Padding(0, 1)

	t.StatusOK = lipgloss.NewStyle().
		Foreground(p.Accent)

	t.StatusErr = lipgloss.NewStyle().
		Foreground(p.Danger)
}
