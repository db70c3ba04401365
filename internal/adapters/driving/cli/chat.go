package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mars-labs/mars-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat interface",
	Long: `Launch an interactive terminal chat over the current session's
documents. Every question is answered from the uploaded chunks.

Controls:
  Enter    - Ask
  ↑/↓      - Scroll transcript
  Esc      - Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	// Surface stack traces instead of a corrupted terminal
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx := context.Background()
	if err := ensureChat(ctx); err != nil {
		return err
	}

	sessionID, err := currentSession()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(chatSvc, sessionID)
	if err != nil {
		return fmt.Errorf("failed to create chat interface: %w", err)
	}

	program := tea.NewProgram(app.WithContext(ctx), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat interface failed: %w", err)
	}
	return nil
}
