package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mars-labs/mars-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking parameters and storage.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Configure the provider used to embed uploaded documents and queries.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the generation provider",
	Long:  `Configure the provider used to answer questions over retrieved chunks.`,
	RunE:  runSettingsLLM,
}

var settingsKeyCmd = &cobra.Command{
	Use:   "key",
	Short: "Set the Gemini API key",
	Long: `Prompts for the Gemini API key without echoing and stores it for both
embedding and generation. The GOOGLE_API_KEY environment variable takes
precedence over the stored key when set.`,
	RunE: runSettingsKey,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a raw configuration value",
	Long: `Sets a configuration value under its dot-notation key, for example:

  mars settings set retrieval.chunk_size 800
  mars settings set storage.backend sqlite`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsKeyCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURLOrDefault(settings.Embedding.BaseURL))
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		printAPIKey(cmd, settings.Embedding.APIKey)
	}
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %.1f req/s\n", settings.Embedding.RequestsPerSecond)
	}
	printStatus(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", baseURLOrDefault(settings.LLM.BaseURL))
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		printAPIKey(cmd, settings.LLM.APIKey)
	}
	printStatus(cmd, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Chunk size: %d\n", settings.Retrieval.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", settings.Retrieval.ChunkOverlap)
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Overfetch: %d\n", settings.Retrieval.Overfetch)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.Backend == domain.StorageSQLite {
		dir := settings.Storage.DataDir
		if dir == "" {
			dir = "~/.mars/data"
		}
		cmd.Printf("  Data dir: %s\n", dir)
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	provider, model, apiKey, err := promptProvider(cmd, reader, domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}
	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	provider, model, apiKey, err := promptProvider(cmd, reader, domain.DefaultLLMModels())
	if err != nil {
		return err
	}
	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsKey(cmd *cobra.Command, _ []string) error {
	cmd.Print("Enter Gemini API key: ")
	key := readPassword()
	cmd.Println()
	if key == "" {
		return errors.New("API key must not be empty")
	}

	if err := settingsService.SetAPIKey(key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}
	cmd.Println("API key saved.")
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	// Store numbers as numbers so typed getters see them.
	var value any = raw
	if i, err := strconv.Atoi(raw); err == nil {
		value = i
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("Set %s = %s\n", key, raw)
	return nil
}

// promptProvider walks the user through provider, model and API key
// selection, returning the answers without persisting them.
func promptProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	defaultModels map[domain.AIProvider]string,
) (domain.AIProvider, string, string, error) {
	cmd.Println("Select Provider")
	providers := domain.AllProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	provider := providers[idx-1]

	defaultModel := defaultModels[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return "", "", "", errors.New("API key is required for this provider")
		}
	}
	return provider, model, apiKey, nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read the key without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func printAPIKey(cmd *cobra.Command, key string) {
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func baseURLOrDefault(url string) string {
	if url == "" {
		return "http://localhost:11434 (default)"
	}
	return url
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
