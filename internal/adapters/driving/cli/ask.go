package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the uploaded documents",
	Long: `Retrieves the chunks most relevant to the question from the current
session and asks the configured AI provider to answer using only those
chunks as context.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	ctx := context.Background()
	if err := ensureChat(ctx); err != nil {
		return err
	}

	sessionID, err := currentSession()
	if err != nil {
		return err
	}

	answer, err := chatSvc.Ask(ctx, question, sessionID)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Response)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Printf("Sources: %s\n", strings.Join(answer.Sources, ", "))
	}
	return nil
}
