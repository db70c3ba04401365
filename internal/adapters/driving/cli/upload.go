package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload documents into the current session",
	Long: `Reads the given files, splits them into overlapping chunks and indexes
them into the current session's vector store.

Supported formats: ` + strings.Join(supportedSummary(), ", ") + ` and other
plain-text files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	if err := ensureRetriever(ctx); err != nil {
		return err
	}

	sessionID, err := currentSession()
	if err != nil {
		return err
	}

	results := ingestSvc.IngestFiles(ctx, args, sessionID)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			cmd.Printf("  ✗ %s: %v\n", r.Filename, r.Err)
			continue
		}
		cmd.Printf("  ✓ %s (%d chunks)\n", r.Filename, r.Chunks)
	}

	if failed == len(results) {
		return fmt.Errorf("all %d files failed to upload", failed)
	}
	cmd.Printf("\nUploaded %d of %d files to session %s.\n", len(results)-failed, len(results), sessionID)
	return nil
}

func supportedSummary() []string {
	return []string{".txt", ".md", ".csv", ".py", ".go", ".js"}
}
