// Package cli implements the command-line driving adapter. It wires the
// retrieval core to the configured providers and exposes the upload,
// ask, search, session, watch and settings commands.
package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mars-labs/mars-cli/internal/adapters/driven/ai"
	configfile "github.com/mars-labs/mars-cli/internal/adapters/driven/config/file"
	"github.com/mars-labs/mars-cli/internal/adapters/driven/index/flat"
	"github.com/mars-labs/mars-cli/internal/adapters/driven/storage/memory"
	"github.com/mars-labs/mars-cli/internal/adapters/driven/storage/sqlite"
	"github.com/mars-labs/mars-cli/internal/chunker"
	"github.com/mars-labs/mars-cli/internal/core/domain"
	"github.com/mars-labs/mars-cli/internal/core/ports/driven"
	"github.com/mars-labs/mars-cli/internal/core/ports/driving"
	"github.com/mars-labs/mars-cli/internal/core/services"
	"github.com/mars-labs/mars-cli/internal/ingest"
	"github.com/mars-labs/mars-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// keyCurrentSession stores the active session ID between invocations so
// that upload and ask hit the same corpus without passing --session.
const keyCurrentSession = "session.current"

// Services shared by the commands. The config store and settings service
// are always constructed; the retrieval stack is built lazily because
// settings commands must work before any provider is configured.
var (
	configStore     driven.ConfigStore
	settingsService *services.SettingsService
	retrieverSvc    driving.Retriever
	chatSvc         driving.ChatService
	ingestSvc       *ingest.Service

	embeddingSvc driven.EmbeddingService
	llmSvc       driven.LLMService
	recordStore  driven.RecordStore

	verbose     bool
	sessionFlag string
)

var rootCmd = &cobra.Command{
	Use:   "mars",
	Short: "Ask questions about your documents from the terminal",
	Long: `mars indexes the documents you upload into a session-scoped vector
store and answers questions against them using a configured AI provider.

Start by setting a provider (mars settings), upload some files
(mars upload), then ask away (mars ask).`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "session ID (defaults to the current session)")
}

// Execute runs the root command and releases provider connections on exit.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

func initConfig() error {
	if configStore != nil {
		return nil
	}
	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to initialise config: %w", err)
	}
	configStore = store
	settingsService = services.NewSettingsService(configStore)
	return nil
}

// currentSession resolves the session the command operates on. The
// --session flag wins; otherwise the persisted current session is used,
// minting a fresh one on first run.
func currentSession() (string, error) {
	if sessionFlag != "" {
		return sessionFlag, nil
	}
	if id := configStore.GetString(keyCurrentSession); id != "" {
		return id, nil
	}
	id := uuid.NewString()
	if err := configStore.Set(keyCurrentSession, id); err != nil {
		return "", fmt.Errorf("failed to persist session ID: %w", err)
	}
	logger.Info("Started new session %s", id)
	return id, nil
}

// ensureRetriever builds the retrieval stack on first use: embedding
// provider, flat index sized to the provider's dimensionality, and the
// configured record store. With the SQLite backend the index is warmed
// from the cached embeddings so uploads survive restarts.
func ensureRetriever(ctx context.Context) error {
	if retrieverSvc != nil {
		return nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	embeddingSvc, err = ai.CreateAndValidateEmbeddingService(settings.Embedding)
	if err != nil {
		return err
	}

	index, err := flat.New(embeddingSvc.Dimensions())
	if err != nil {
		return err
	}

	persistent := settings.Storage.Backend == domain.StorageSQLite
	if persistent {
		recordStore, err = sqlite.NewRecordStore(settings.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open record store: %w", err)
		}
	} else {
		recordStore = memory.NewRecordStore()
	}

	retriever := services.NewRetrieverService(
		embeddingSvc, index, recordStore,
		services.WithOverfetch(settings.Retrieval.Overfetch),
	)
	if persistent {
		if err := retriever.WarmStart(ctx); err != nil {
			return fmt.Errorf("failed to restore index: %w", err)
		}
	}
	retrieverSvc = retriever

	ingestSvc = ingest.NewService(
		chunker.New(
			chunker.WithChunkSize(settings.Retrieval.ChunkSize),
			chunker.WithOverlap(settings.Retrieval.ChunkOverlap),
		),
		retrieverSvc,
	)
	return nil
}

// ensureChat additionally validates the generation backend.
func ensureChat(ctx context.Context) error {
	if chatSvc != nil {
		return nil
	}
	if err := ensureRetriever(ctx); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	llmSvc, err = ai.CreateAndValidateLLMService(settings.LLM)
	if err != nil {
		return err
	}
	chatSvc = services.NewChatService(retrieverSvc, llmSvc, settings.Retrieval.TopK)
	return nil
}

func closeServices() {
	if embeddingSvc != nil {
		_ = embeddingSvc.Close()
	}
	if llmSvc != nil {
		_ = llmSvc.Close()
	}
	if recordStore != nil {
		_ = recordStore.Close()
	}
}
