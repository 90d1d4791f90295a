package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docchat/internal/chunker"
	"docchat/internal/extract"
	"docchat/internal/index"
	"docchat/internal/ingest"
)

var watchMode bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index new documents from the docs folder",
	Long: `Extracts, chunks, and embeds every document in the docs folder that has
not been processed yet, appending the results to the local vector index.
Already-processed documents are skipped, so repeated runs are no-ops for an
unchanged folder. With --watch, keeps running and re-ingests whenever new
files appear.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&watchMode, "watch", false, "keep watching the docs folder for new files")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	embedder, err := newEmbedder()
	if err != nil {
		return err
	}

	// Open the existing store, or create a fresh one with the capability's
	// dimension on the first ever run.
	store, err := index.Open(cfg.IndexPath(), cfg.ChunksPath(), slog.Default())
	if errors.Is(err, index.ErrMissingIndex) {
		dim, dimErr := embedder.Dimension(ctx)
		if dimErr != nil {
			return fmt.Errorf("determine embedding dimension: %w", dimErr)
		}
		store, err = index.Create(cfg.IndexPath(), cfg.ChunksPath(), dim, slog.Default())
	}
	if err != nil {
		return err
	}

	processed, err := ingest.LoadProcessedSet(cfg.ProcessedPath())
	if err != nil {
		return err
	}

	pipeline := ingest.NewPipeline(
		extract.NewExtractor(),
		chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap),
		embedder,
		store,
		processed,
		slog.Default(),
	)

	if watchMode {
		err := pipeline.Watch(ctx, cfg.DocsDir)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	result, err := pipeline.Run(ctx, cfg.DocsDir)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Ingestion complete!")
	fmt.Printf("  Documents: %d new, %d skipped\n", result.ProcessedDocs, result.SkippedDocs)
	fmt.Printf("  Chunks: %d\n", result.TotalChunks)
	fmt.Printf("  Index now contains %d vectors\n", result.IndexedVectors)
	fmt.Printf("  Duration: %s\n", result.Duration.Round(time.Millisecond))

	if len(result.FailedDocs) > 0 {
		fmt.Println()
		fmt.Println("Failed documents (will retry next run):")
		for _, failed := range result.FailedDocs {
			fmt.Printf("  - %s: %s\n", failed.Name, failed.Reason)
		}
	}
	return nil
}
