// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command.
//
// Examples:
//
//	webquery ask "What is the weather in Oslo?"
//	echo "latest Go release" | webquery ask
//	webquery ask --raw "Summarize today's headlines" > out.md
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/jeranaias/webquery-tui/internal/logging"
	"github.com/jeranaias/webquery-tui/internal/model"
	"github.com/jeranaias/webquery-tui/internal/transport"
	"github.com/jeranaias/webquery-tui/internal/ui/styles"
)

// maxPromptSize bounds a prompt read from stdin.
const maxPromptSize = 64 * 1024

// errNoPrompt is returned when neither arguments nor stdin hold a prompt.
var errNoPrompt = errors.New("a prompt is required")

// sender is the part of the transport client the CLI needs to stream.
type sender interface {
	Send(ctx context.Context, prompt string, onChunk transport.ChunkFunc) error
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "ask [prompt...]",
		Short: "Ask one question and print the answer",
		Long: `Ask one question and print the answer.

The prompt is taken from the arguments, or from stdin when no arguments are
given. On a terminal the answer is rendered as Markdown once complete;
otherwise it is written as it streams.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			render := !raw && opts.cfg.UI.Markdown && isTerminal(out)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := opts.cfg.RequestContext(ctx)
			defer cancel()

			return runAsk(ctx, newClient(opts.cfg), prompt, out, cmd.ErrOrStderr(), askOptions{
				render: render,
				style:  styles.NewTheme(opts.cfg.UI.Theme).GlamourStyle(),
				width:  terminalWidth(out),
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the answer as it streams, without Markdown rendering")
	return cmd
}

// readPrompt joins args, or reads stdin when there are none and stdin is
// not a terminal.
func readPrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 0 {
		if p := strings.TrimSpace(strings.Join(args, " ")); p != "" {
			return p, nil
		}
		return "", errNoPrompt
	}
	if in == nil || isTerminalInput(in) {
		return "", errNoPrompt
	}

	data, err := io.ReadAll(io.LimitReader(in, maxPromptSize))
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	p := strings.TrimSpace(string(data))
	if p == "" {
		return "", errNoPrompt
	}
	return p, nil
}

// askOptions controls how runAsk prints the answer.
type askOptions struct {
	render bool
	style  string
	width  int
}

// runAsk streams one answer. Without rendering each new piece of text is
// written as it arrives; with rendering the full answer is printed as
// Markdown at the end.
func runAsk(ctx context.Context, client sender, prompt string, out, errOut io.Writer, opts askOptions) error {
	var (
		answer  string
		printed int
	)

	waiting := opts.render && isTerminal(errOut)
	if waiting {
		fmt.Fprint(errOut, model.PendingText)
	}

	err := client.Send(ctx, prompt, func(text string) {
		answer = text
		if !opts.render {
			io.WriteString(out, text[printed:])
			printed = len(text)
		}
	})

	if waiting {
		termenv.NewOutput(errOut).ClearLine()
		fmt.Fprint(errOut, "\r")
	}

	if err != nil {
		logging.L().Errorw("ask failed", "error", err)
		if printed > 0 {
			fmt.Fprintln(out)
		}
		if transport.IsCanceled(err) {
			return errors.New("cancelled")
		}
		return err
	}

	if opts.render {
		fmt.Fprint(out, renderMarkdown(answer, opts.style, opts.width))
		return nil
	}
	if !strings.HasSuffix(answer, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

// renderMarkdown renders text with glamour. The text is returned as is when
// the renderer fails.
func renderMarkdown(text, style string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	return rendered
}
