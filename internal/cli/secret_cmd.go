package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// SecretLength is the length of generated webhook secrets (32 bytes = 64 hex chars)
const SecretLength = 32

// secretCmd represents the secret command group
var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Webhook shared-secret management",
	Long:  `Generate the shared secret used by the X-Webhook-Secret auth variant.`,
}

// secretGenerateCmd generates a new webhook shared secret
var secretGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new webhook shared secret",
	Long: `Generate a cryptographically random shared secret and print the
environment variables to configure the secret auth variant with it.`,
	Run: func(cmd *cobra.Command, args []string) {
		secret, err := generateRandomSecret(SecretLength)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to generate secret: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Generated webhook secret:")
		fmt.Println(secret)
		fmt.Println()
		fmt.Println("Configure the service with:")
		fmt.Println("  EMAILAGENT_WEBHOOK_AUTH_MODE=secret")
		fmt.Printf("  EMAILAGENT_WEBHOOK_SECRET=%s\n", secret)
	},
}

// generateRandomSecret generates a cryptographically secure random secret
func generateRandomSecret(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func init() {
	secretCmd.AddCommand(secretGenerateCmd)
}
