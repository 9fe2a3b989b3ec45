// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat.
//
// The REPL keeps the same message store as the full-screen chat and streams
// each answer as it arrives.
//
// Interactive commands:
//
//	/clear     Forget the conversation
//	/history   Show this session's messages as a table
//	/help      Show available commands
//	/quit      Exit (Ctrl+D works too)
//	Ctrl+C     Stop the current answer
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/webquery-tui/internal/config"
	"github.com/jeranaias/webquery-tui/internal/logging"
	"github.com/jeranaias/webquery-tui/internal/model"
	"github.com/jeranaias/webquery-tui/internal/transport"
	"github.com/jeranaias/webquery-tui/internal/ui/styles"
)

// =============================================================================
// COMMAND
// =============================================================================

func newChatCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line in the current terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := newReplSession(newClient(opts.cfg), cmd.OutOrStdout(), opts.cfg)
			return session.run(cmd.Context())
		},
	}
}

// =============================================================================
// LINE EDITING
// =============================================================================

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads saved input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION
// =============================================================================

// chatClient is what the REPL needs from the transport.
type chatClient interface {
	sender
	ResetConversation(ctx context.Context) error
}

// replSession is one line-mode conversation.
type replSession struct {
	store  *model.Store
	client chatClient
	out    io.Writer
	cfg    *config.Config
	theme  *styles.Theme
}

func newReplSession(client chatClient, out io.Writer, cfg *config.Config) *replSession {
	return &replSession{
		store:  model.NewStore(),
		client: client,
		out:    out,
		cfg:    cfg,
		theme:  styles.NewTheme(cfg.UI.Theme),
	}
}

// run reads prompts until EOF or /quit.
func (s *replSession) run(ctx context.Context) error {
	input := NewChatCLI()
	defer input.Close()

	fmt.Fprintln(s.out, s.theme.EmptyState.Render("Hello! Start searching the Web.")+"  (/help for commands)")

	prompt := s.theme.InputPrompt.Render("> ")
	for {
		line, err := input.ReadInput(prompt)
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin.
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := s.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		askCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		if err := s.ask(askCtx, line); err != nil {
			fmt.Fprintln(s.out, s.theme.StatusErr.Render(err.Error()))
		}
		stop()
	}
}

// ask sends one prompt and streams the answer into the store and out.
// A failed answer is replaced by the apology and the error is returned.
func (s *replSession) ask(ctx context.Context, prompt string) error {
	ctx, cancel := s.cfg.RequestContext(ctx)
	defer cancel()

	id := s.store.AppendTurn(prompt)
	msg, _ := s.store.Get(id)
	fmt.Fprintln(s.out, s.header(msg))

	printed := 0
	err := s.client.Send(ctx, prompt, func(text string) {
		if s.store.UpdateMessageText(id, text) {
			io.WriteString(s.out, text[printed:])
			printed = len(text)
		}
	})

	switch {
	case err == nil:
		s.store.Complete(id, false)
		if printed == 0 {
			fmt.Fprint(s.out, s.theme.Faded.Render(model.EmptyAnswerText))
		}
		fmt.Fprintln(s.out)
		return nil

	case transport.IsCanceled(err):
		s.store.Complete(id, true)
		if printed > 0 {
			fmt.Fprintln(s.out)
		}
		fmt.Fprintln(s.out, s.theme.Faded.Render(model.CancelledText))
		return nil

	default:
		logging.L().Errorw("answer failed", "message_id", id, "error", err)
		s.store.Fail(id)
		if printed > 0 {
			fmt.Fprintln(s.out)
		}
		fmt.Fprintln(s.out, s.theme.FailedBlock.Render(model.ErrorText))
		return err
	}
}

// header renders the "AI 14:02" line above an answer.
func (s *replSession) header(msg model.Message) string {
	return s.theme.SenderAssistant.Render(msg.Sender.DisplayName()) + " " + s.theme.Timestamp.Render(msg.Clock())
}

// handleCommand runs a slash command and reports whether to quit.
func (s *replSession) handleCommand(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		return true

	case "/clear", "/c":
		s.clear(ctx)

	case "/history", "/h":
		if err := renderHistoryTable(s.out, storeEntries(s.store.Messages())); err != nil {
			fmt.Fprintln(s.out, s.theme.StatusErr.Render(err.Error()))
		}

	case "/help", "/?":
		fmt.Fprintln(s.out, lipgloss.JoinVertical(lipgloss.Left,
			"/clear     Forget the conversation",
			"/history   Show this session's messages",
			"/quit      Exit",
			"Ctrl+C     Stop the current answer",
		))

	default:
		fmt.Fprintln(s.out, s.theme.StatusErr.Render("Unknown command: "+fields[0]))
	}
	return false
}

// clear empties the store and forgets the server conversation.
func (s *replSession) clear(ctx context.Context) {
	s.store.BeginClear()
	s.store.Clear()

	if s.cfg.Endpoint.ResetOnClear {
		if err := s.client.ResetConversation(ctx); err != nil {
			logging.L().Warnw("conversation reset failed", "error", err)
		}
	}
	fmt.Fprintln(s.out, s.theme.StatusOK.Render("Chat cleared"))
}

// storeEntries converts store messages to history rows.
func storeEntries(msgs []model.Message) []transport.HistoryEntry {
	entries := make([]transport.HistoryEntry, 0, len(msgs))
	for _, m := range msgs {
		kind := "AIMessage"
		if m.Sender == model.SenderUser {
			kind = "HumanMessage"
		}
		entries = append(entries, transport.HistoryEntry{Type: kind, Content: m.DisplayText()})
	}
	return entries
}
