package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the uploaded documents",
	Long: `Performs semantic search over the current session's chunks and prints
the best matches with their similarity scores, without invoking the
generation backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "maximum number of results (defaults to the configured top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	ctx := context.Background()
	if err := ensureRetriever(ctx); err != nil {
		return err
	}

	sessionID, err := currentSession()
	if err != nil {
		return err
	}

	topK := searchTopK
	if topK <= 0 {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		topK = settings.Retrieval.TopK
	}

	results, err := retrieverSvc.Search(ctx, query, sessionID, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchList(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchList(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, results[i].Source, results[i].ChunkIndex, results[i].Score)
		cmd.Printf("      %s\n", snippet(results[i].Text, 160))
		cmd.Println()
	}
	return nil
}

// snippet truncates text to at most n runes on a single line.
func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = append(runes[:n], '…')
	}
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if r == '\n' || r == '\r' || r == '\t' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
