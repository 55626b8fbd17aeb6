package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docsage/docsage/internal/observability"
	"github.com/docsage/docsage/internal/output"
)

var chatConversationID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat grounded in the ingested documents",
	Long: `Chat starts an interactive loop. Each question is embedded, matched
against stored chunks, and answered by the configured model using only the
retrieved context. Both turns are appended to the conversation history.

Special commands inside the loop:
  status        show the rate limiter status
  exit, quit    end the chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer p.close()

		conversationID := strings.TrimSpace(chatConversationID)
		if conversationID == "" {
			conversationID = uuid.NewString()
		}

		session, err := p.newChatSession(conversationID)
		if err != nil {
			return err
		}

		fmt.Println("Chat started. Type 'exit' to end, 'status' for rate limiter status.")
		fmt.Println()

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("You: ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())

			switch strings.ToLower(question) {
			case "":
				continue
			case "exit", "quit", "sair":
				fmt.Println("Goodbye!")
				return nil
			case "status":
				fmt.Print(output.FormatStatus(p.limiter.Status()))
				continue
			}

			answer, err := session.Ask(cmd.Context(), question)
			if err != nil {
				// One failed question should not end the session.
				observability.CLILogger.Warn("Failed to answer question", zap.Error(err))
				fmt.Printf("Error: %v\n\n", err)
				continue
			}

			fmt.Printf("Assistant: %s\n\n", answer)
		}

		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatConversationID, "conversation", "", "conversation id to continue (default: new conversation)")
}
