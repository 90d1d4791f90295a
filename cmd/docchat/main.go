// Package main provides the docchat CLI: document ingestion and
// retrieval-augmented chat over a local corpus.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/index"
)

var (
	configPath string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Retrieval-augmented chat over a local document corpus",
	Long: `docchat ingests documents (PDF, CSV, markdown, plain text) into a local
vector index and answers questions about them with a streaming language
model backend, remembering past exchanges across sessions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return os.MkdirAll(cfg.DataDir, 0o755)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "docchat.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(chunksCmd)
}

func main() {
	// Load .env if present (local development), ignore if missing.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEmbedder builds the configured external embedding capability.
func newEmbedder() (embedding.Embedder, error) {
	return embedding.NewOpenAI(cfg.Embedding.Model, cfg.Embedding.APIKeyEnv, cfg.Embedding.BatchSize)
}

// openStore opens the document store for the query path. A missing index is
// surfaced as a hard stop telling the user to ingest first.
func openStore() (*index.Store, error) {
	store, err := index.Open(cfg.IndexPath(), cfg.ChunksPath(), slog.Default())
	if err != nil {
		if errors.Is(err, index.ErrMissingIndex) {
			return nil, fmt.Errorf("no document index at %s, run 'docchat ingest' first", cfg.IndexPath())
		}
		return nil, err
	}
	return store, nil
}
