// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/webquery-tui/internal/config"
	"github.com/jeranaias/webquery-tui/internal/logging"
	"github.com/jeranaias/webquery-tui/internal/ui/chat"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}
}

// runTUI runs the chat screen until the user quits. Changes to the config
// file are delivered to the screen while it runs.
func runTUI(opts *rootOptions) error {
	m := chat.New(chat.Options{
		Config: opts.cfg,
		Client: newClient(opts.cfg),
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if path := opts.watchPath(); path != "" {
		w, err := config.Watch(path, func(cfg *config.Config, err error) {
			p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
		})
		if err != nil {
			logging.L().Warnw("config hot reload disabled", "path", path, "error", err)
		} else {
			defer w.Close()
		}
	}

	final, err := p.Run()
	if fm, ok := final.(chat.Model); ok {
		fm.Shutdown()
	}
	return err
}
