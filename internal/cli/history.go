// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jeranaias/webquery-tui/internal/model"
	"github.com/jeranaias/webquery-tui/internal/transport"
)

// historyPreviewWidth is how much of each message the table shows.
const historyPreviewWidth = 60

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		conversationID string
		asJSON         bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a conversation stored on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if conversationID == "" {
				return errors.New("--conversation is required")
			}

			client := newClient(opts.cfg)
			client.SetConversationID(conversationID)

			history, err := client.History(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(history)
			}
			return renderHistoryTable(cmd.OutOrStdout(), history.Messages)
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation ID to fetch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw history as JSON")
	return cmd
}

// renderHistoryTable writes entries as a table of numbered messages.
func renderHistoryTable(w io.Writer, entries []transport.HistoryEntry) error {
	if len(entries) == 0 {
		_, err := io.WriteString(w, "No messages.\n")
		return err
	}

	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		sender := model.SenderAssistant
		if e.IsUser() {
			sender = model.SenderUser
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			sender.DisplayName(),
			preview(e.Content, historyPreviewWidth),
		})
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "From", "Message")
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// preview flattens text to one line no wider than width cells.
func preview(text string, width int) string {
	flat := strings.Join(strings.Fields(text), " ")
	return runewidth.Truncate(flat, width, "...")
}
