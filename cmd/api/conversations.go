package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/assistant-dashboard/internal/usecase"
)

var conversationFilter usecase.ConversationFilter

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "Fetch messages once and print the grouped conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newBackendClient(cfg, logger)
		board := usecase.NewConversationBoard()
		load := usecase.NewLoadConversationsUseCase(client, client, board, cfg.Fetch.Timeout, logger)

		result, err := load.Execute(cmd.Context())
		if err != nil {
			return err
		}

		now := time.Now()
		visible := usecase.FilterConversations(board.Snapshot().Conversations, conversationFilter, now, cfg.Conversations.OngoingWindow)

		out := cmd.OutOrStdout()
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LEAD\tNAME\tCHANNEL\tSTATUS\tMESSAGES\tUNREAD\tLAST")
		for _, c := range visible {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
				c.Key.LeadID,
				c.Lead.Name,
				c.Key.Channel,
				usecase.ClassifyConversation(c, now, cfg.Conversations.OngoingWindow),
				len(c.Messages),
				c.UnreadCount,
				c.LastMessage.Timestamp.Format(time.RFC3339),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "\n%d of %d conversations, %d messages processed, %d skipped (no lead %d, unresolved %d)\n",
			len(visible), len(result.Conversations), result.Processed,
			result.Skipped(), result.SkippedNoLead, result.SkippedUnresolved)
		return nil
	},
}

func init() {
	f := conversationsCmd.Flags()
	f.StringVar(&conversationFilter.Status, "status", "all", "ongoing, finished or all")
	f.StringVar(&conversationFilter.Channel, "channel", "all", "email, sms, whatsapp, facebook, instagram or all")
	f.StringVar(&conversationFilter.Search, "search", "", "match lead name, email or last message")
}
