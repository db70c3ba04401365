package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the current session",
	Long: `Each upload and question is scoped to a session. Inspect the current
session, clear its documents or start a fresh one.`,
	RunE: runSessionInfo,
}

var sessionInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current session's sources and chunk count",
	RunE:  runSessionInfo,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all documents from the current session",
	RunE:  runSessionClear,
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a fresh session",
	RunE:  runSessionNew,
}

func init() {
	sessionCmd.AddCommand(sessionInfoCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionCmd.AddCommand(sessionNewCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionInfo(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	if err := ensureRetriever(ctx); err != nil {
		return err
	}

	sessionID, err := currentSession()
	if err != nil {
		return err
	}

	info, err := retrieverSvc.SessionInfo(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("Session %s is empty. Upload documents with: mars upload <file>\n", sessionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to inspect session: %w", err)
	}

	cmd.Printf("Session: %s\n", info.SessionID)
	cmd.Printf("Chunks:  %d\n", info.ChunkCount)
	cmd.Println("Sources:")
	for _, src := range info.Sources {
		cmd.Printf("  - %s\n", src)
	}
	return nil
}

func runSessionClear(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	if err := ensureRetriever(ctx); err != nil {
		return err
	}

	sessionID, err := currentSession()
	if err != nil {
		return err
	}

	if err := retrieverSvc.ClearSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	cmd.Printf("Session %s cleared.\n", sessionID)
	return nil
}

func runSessionNew(cmd *cobra.Command, _ []string) error {
	id := uuid.NewString()
	if err := configStore.Set(keyCurrentSession, id); err != nil {
		return fmt.Errorf("failed to persist session ID: %w", err)
	}
	cmd.Printf("Started new session %s.\n", id)
	return nil
}
