// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/webquery-tui/internal/config"
	"github.com/jeranaias/webquery-tui/internal/model"
	"github.com/jeranaias/webquery-tui/internal/ui/styles"
)

// Layout rows outside the viewport.
const (
	topBarHeight = 1
	helpHeight   = 1
	// inputChrome is the border around the input box.
	inputChrome = 2
	// inputPadding is the horizontal padding plus border of the input box.
	inputPadding = 4
	// assistantIndent is the left border plus padding of assistant blocks.
	assistantIndent = 2
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Options configures a new chat screen.
type Options struct {
	// Config supplies UI and stream settings. Defaults are used when nil.
	Config *config.Config

	// Client sends prompts. A nil client makes every answer fail.
	Client Streamer

	// Clipboard copies text. Defaults to the system clipboard.
	Clipboard func(string) error

	// Now overrides the clock used for message IDs.
	Now func() time.Time
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	// Conversation
	store   *model.Store
	client  Streamer
	cancels *cancelRegistry

	// Configuration
	cfg   *config.Config
	theme *styles.Theme
	keys  KeyMap

	// Components
	input    textarea.Model
	viewport viewport.Model
	ticker   spinner.Model
	help     help.Model
	markdown *markdownRenderer

	// Animation
	ticking bool
	frame   int

	// Dimensions
	width  int
	height int
	ready  bool

	// Status line
	status    string
	statusErr bool

	copyFn func(string) error
}

// New creates a chat screen.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := styles.NewTheme(cfg.UI.Theme)
	keys := DefaultKeyMap()

	ta := textarea.New()
	ta.Placeholder = cfg.UI.Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.KeyMap.InsertNewline = keys.Newline
	ta.SetHeight(1)
	applyInputStyles(&ta, theme)
	ta.Focus()

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.DotsSpinner.Frames,
		FPS:    styles.DotsSpinner.Duration(),
	}
	sp.Style = theme.Spinner

	h := help.New()
	h.ShortSeparator = "  "

	store := model.NewStore()
	if opts.Now != nil {
		store.SetClock(opts.Now)
	}

	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = copyToClipboard
	}

	md := newMarkdownRenderer(theme.GlamourStyle(), 80-assistantIndent, cfg.UI.Hyperlinks)
	md.plain = !cfg.UI.Markdown

	return Model{
		store:    store,
		client:   opts.Client,
		cancels:  newCancelRegistry(),
		cfg:      cfg,
		theme:    theme,
		keys:     keys,
		input:    ta,
		viewport: vp,
		ticker:   sp,
		help:     h,
		markdown: md,
		copyFn:   copyFn,
	}
}

// applyInputStyles colours the textarea for theme.
func applyInputStyles(ta *textarea.Model, theme *styles.Theme) {
	ta.FocusedStyle.Base = theme.InputText
	ta.FocusedStyle.Text = theme.InputText
	ta.FocusedStyle.Placeholder = theme.Placeholder
	ta.FocusedStyle.CursorLine = theme.InputText
	ta.FocusedStyle.Prompt = theme.InputPrompt
	ta.BlurredStyle = ta.FocusedStyle
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Shutdown cancels every stream in flight.
func (m Model) Shutdown() {
	m.cancels.cancelAll()
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the viewport and input for the current window.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	m.input.SetWidth(calculateContentWidth(m.width, inputPadding))
	m.resizeInput()

	m.markdown.configure(m.theme.GlamourStyle(), calculateContentWidth(m.width, assistantIndent))
	m.refresh(true)
}

// viewportHeight returns the rows left for messages.
func (m Model) viewportHeight() int {
	h := m.height - topBarHeight - helpHeight - inputChrome - m.input.Height()
	if h < 1 {
		h = 1
	}
	return h
}

// refresh re-renders the conversation into the viewport. follow scrolls
// to the newest message.
func (m *Model) refresh(follow bool) {
	m.viewport.Width = m.width
	m.viewport.Height = m.viewportHeight()

	m.viewport.SetContent(RenderMessages(m.store.Messages(), m.store.Clearing(), RenderOptions{
		Width:      m.viewport.Width,
		Height:     m.viewport.Height,
		Theme:      m.theme,
		Markdown:   m.markdown.Render,
		PulseFrame: m.frame,
	}))
	if follow {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// ANIMATION
// =============================================================================

// animating reports whether anything on screen needs ticks.
func (m Model) animating() bool {
	return m.store.Clearing() || len(m.store.InFlight()) > 0
}

// startTicking starts the spinner if it is idle.
func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.ticker.Tick
}

// =============================================================================
// THEME
// =============================================================================

// setTheme switches the palette and everything derived from it.
func (m *Model) setTheme(name string) {
	m.theme = styles.NewTheme(name)
	m.cfg.UI.Theme = m.theme.Name()
	m.ticker.Style = m.theme.Spinner
	applyInputStyles(&m.input, m.theme)
	m.markdown.configure(m.theme.GlamourStyle(), calculateContentWidth(m.width, assistantIndent))
	m.refresh(false)
}

// setStatus shows a message on the help line.
func (m *Model) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}
