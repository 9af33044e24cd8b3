package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// messagesCmd represents the messages command group
var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Inspect stored messages",
	Long:  `List or count the messages stored by the ingestion webhook.`,
}

// messagesListCmd lists all stored messages
var messagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored messages",
	Long:  `Show all stored messages ordered by ingestion time.`,
	Run: func(cmd *cobra.Command, args []string) {
		if messageService == nil {
			fmt.Fprintln(os.Stderr, "Error: message service not initialized")
			os.Exit(1)
		}

		messages, err := messageService.ListMessages()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list messages: %v\n", err)
			os.Exit(1)
		}

		if len(messages) == 0 {
			fmt.Println("No messages stored yet.")
			return
		}

		for i := range messages {
			msg := &messages[i]
			fmt.Printf("%s  %s\n", msg.CreatedAt.Format("2006-01-02 15:04"), msg.Subject)
			fmt.Printf("  id: %s\n", msg.ID)
			fmt.Printf("  from: %s  to: %s\n", msg.FromAddr, msg.ToAddr)
			if labels := msg.LabelList(); len(labels) > 0 {
				fmt.Printf("  labels: %s\n", strings.Join(labels, ", "))
			}
			fmt.Printf("  summary: %s\n", msg.Summary)
			fmt.Println()
		}
	},
}

// messagesCountCmd counts stored messages
var messagesCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count stored messages",
	Run: func(cmd *cobra.Command, args []string) {
		if messageService == nil {
			fmt.Fprintln(os.Stderr, "Error: message service not initialized")
			os.Exit(1)
		}

		count, err := messageService.CountMessages()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to count messages: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%d message(s) stored.\n", count)
	},
}

func init() {
	messagesCmd.AddCommand(messagesListCmd)
	messagesCmd.AddCommand(messagesCountCmd)
}
