package cli

import (
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/m-abdelwahab/email-agent-workshop/internal/config"
	"github.com/m-abdelwahab/email-agent-workshop/internal/services"
)

var (
	db             *gorm.DB
	cfg            *config.Config
	messageService *services.MessageService
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "email-agent",
	Short: "Email ingestion webhook service",
	Long: `Email agent ingests parsed emails delivered by an inbound mail provider,
summarizes and labels them with a hosted language model, and stores them
for the read-side UI.

The command line tool provides:
  - secret management: generate a webhook shared secret
  - credential setup: write basic-auth webhook credentials to .env
  - message inspection: list or count stored messages

Examples:
  email-agent secret generate    # generate a new shared secret
  email-agent credentials set    # interactively set basic-auth credentials
  email-agent messages list      # list stored messages
  email-agent messages count     # count stored messages`,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, conf *config.Config) {
	db = database
	cfg = conf
	messageService = services.NewMessageService(db)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(secretCmd)
	rootCmd.AddCommand(credentialsCmd)
	rootCmd.AddCommand(messagesCmd)
}
