package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// credentialsCmd represents the credentials command group
var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Webhook basic-auth credential setup",
	Long:  `Manage the username/password pair checked by the basic-auth variant.`,
}

// credentialsSetCmd interactively writes basic-auth credentials to .env
var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set webhook basic-auth credentials",
	Long: `Interactively set the webhook username and password. The values are
written to the .env file in the working directory, which the service
loads at startup.`,
	Run: func(cmd *cobra.Command, args []string) {
		reader := bufio.NewReader(os.Stdin)

		fmt.Print("Webhook username: ")
		username, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read input: %v\n", err)
			os.Exit(1)
		}
		username = strings.TrimSpace(username)
		if username == "" {
			fmt.Fprintln(os.Stderr, "Error: username must not be empty")
			os.Exit(1)
		}
		if strings.Contains(username, ":") {
			fmt.Fprintln(os.Stderr, "Error: username must not contain ':'")
			os.Exit(1)
		}

		fmt.Print("Webhook password: ")
		passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: failed to read password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		password := string(passwordBytes)
		if password == "" {
			fmt.Fprintln(os.Stderr, "Error: password must not be empty")
			os.Exit(1)
		}

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nError: failed to read password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		if password != string(confirmBytes) {
			fmt.Fprintln(os.Stderr, "Error: passwords do not match")
			os.Exit(1)
		}

		updates := map[string]string{
			"EMAILAGENT_WEBHOOK_AUTH_MODE": "basic",
			"EMAILAGENT_WEBHOOK_USERNAME":  username,
			"EMAILAGENT_WEBHOOK_PASSWORD":  password,
		}
		if err := updateEnvFile(".env", updates); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write .env: %v\n", err)
			os.Exit(1)
		}

		fmt.Println()
		fmt.Println("Webhook credentials written to .env")
		fmt.Printf("Webhook URL format: https://%s:<password>@yourdomain.com/api/webhooks/email\n", username)
	},
}

// updateEnvFile rewrites the given keys in a dotenv file, preserving
// unrelated lines and appending keys that are not present yet
func updateEnvFile(path string, updates map[string]string) error {
	var lines []string
	seen := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err == nil {
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			key, _, found := strings.Cut(line, "=")
			key = strings.TrimSpace(key)
			if found {
				if value, ok := updates[key]; ok {
					lines = append(lines, key+"="+value)
					seen[key] = true
					continue
				}
			}
			lines = append(lines, line)
		}
	}

	for key, value := range updates {
		if !seen[key] {
			lines = append(lines, key+"="+value)
		}
	}

	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600)
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
}
