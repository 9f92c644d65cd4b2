package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newChatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage an agent's chats",
	}
	cmd.AddCommand(newChatsListCommand())
	cmd.AddCommand(newChatsDeleteCommand())
	return cmd
}

func newChatsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <agent-id>",
		Short: "List an agent's chats, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBackendClient()
			if err != nil {
				return err
			}
			chats, err := client.ListChats(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer func() {
				_ = w.Flush()
			}()
			fmt.Fprintln(w, "ID\tNAME\tMESSAGES\tLAST MESSAGE")
			for _, chat := range chats {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", chat.ID, chat.Name, chat.MessageCount, chat.LastMessage)
			}
			return nil
		},
	}
}

func newChatsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <agent-id> <chat-id>",
		Short: "Delete a chat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newBackendClient()
			if err != nil {
				return err
			}
			if err := client.DeleteChat(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted chat %s\n", args[1])
			return nil
		},
	}
}
