package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mars-labs/mars-cli/internal/ingest"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and upload new files automatically",
	Long: `Watches the given directory and indexes supported files into the
current session as they are created or modified. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ensureRetriever(ctx); err != nil {
		return err
	}

	sessionID, err := currentSession()
	if err != nil {
		return err
	}

	watcher, err := ingest.NewWatcher(ingestSvc, sessionID)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck // Best-effort cleanup

	// Cancel on Ctrl-C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cmd.Printf("Watching %s (session %s). Press Ctrl-C to stop.\n", dir, sessionID)
	if err := watcher.Watch(ctx, dir); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("\nStopped watching.")
	return nil
}
