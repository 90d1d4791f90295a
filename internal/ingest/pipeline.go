// Package ingest drives the offline path from source documents to indexed,
// embedded chunks.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"docchat/internal/chunker"
	"docchat/internal/embedding"
	"docchat/internal/extract"
	"docchat/internal/index"
)

// Result contains statistics about one ingestion run.
type Result struct {
	TotalFiles     int
	ProcessedDocs  int
	SkippedDocs    int
	TotalChunks    int
	FailedDocs     []FailedDoc
	IndexedVectors int
	Duration       time.Duration
}

// FailedDoc is a document that could not be ingested this run. Failed
// documents stay out of the processed set and are retried next run.
type FailedDoc struct {
	Name   string
	Reason string
}

// Pipeline ingests a folder of documents: extract, chunk, embed, append to
// the index and text log in lockstep, then mark the document processed.
type Pipeline struct {
	extractor *extract.Extractor
	chunker   *chunker.Chunker
	embedder  embedding.Embedder
	store     *index.Store
	processed *ProcessedSet
	logger    *slog.Logger
}

// NewPipeline creates an ingestion pipeline over the given components.
func NewPipeline(
	extractor *extract.Extractor,
	chunks *chunker.Chunker,
	embedder embedding.Embedder,
	store *index.Store,
	processed *ProcessedSet,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		chunker:   chunks,
		embedder:  embedder,
		store:     store,
		processed: processed,
		logger:    logger,
	}
}

// Store returns the document store the pipeline appends to.
func (p *Pipeline) Store() *index.Store { return p.store }

// Run ingests every unprocessed document in folder, in sorted name order.
// Per-document failures are collected and logged; the run continues with the
// remaining documents. The index and processed set are persisted after every
// document, so a crash loses at most the in-flight document.
func (p *Pipeline) Run(ctx context.Context, folder string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read docs folder: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		result.TotalFiles++
		name := entry.Name()

		if p.processed.Contains(name) {
			result.SkippedDocs++
			continue
		}
		if !p.extractor.Supported(name) {
			// Unknown extensions are skipped permanently, never marked.
			result.SkippedDocs++
			continue
		}

		chunks, err := p.processDocument(ctx, filepath.Join(folder, name), name)
		if err != nil {
			if errors.Is(err, extract.ErrNoText) {
				p.logger.Warn("no text extracted, will retry next run", "doc", name)
			} else {
				p.logger.Warn("failed to ingest document", "doc", name, "error", err)
			}
			result.FailedDocs = append(result.FailedDocs, FailedDoc{
				Name:   name,
				Reason: err.Error(),
			})
			continue
		}
		result.ProcessedDocs++
		result.TotalChunks += chunks
	}

	result.IndexedVectors = p.store.Len()
	result.Duration = time.Since(start)
	p.logger.Info("ingestion complete",
		"processed", result.ProcessedDocs,
		"failed", len(result.FailedDocs),
		"chunks", result.TotalChunks,
		"vectors", result.IndexedVectors,
		"duration", result.Duration,
	)
	return result, nil
}

// processDocument runs one document through the pipeline and returns its
// chunk count. The document is marked processed only after its vectors and
// texts are durably appended.
func (p *Pipeline) processDocument(ctx context.Context, path, name string) (int, error) {
	text, err := p.extractor.Extract(path)
	if err != nil {
		return 0, fmt.Errorf("extract: %w", err)
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return 0, extract.ErrNoText
	}
	p.logger.Debug("chunked document", "doc", name, "chunks", len(chunks))

	vectors, err := p.embedder.Embed(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := p.store.Append(vectors, chunks); err != nil {
		return 0, fmt.Errorf("index: %w", err)
	}
	if err := p.processed.Add(name); err != nil {
		return 0, fmt.Errorf("mark processed: %w", err)
	}

	p.logger.Info("ingested document", "doc", name, "chunks", len(chunks))
	return len(chunks), nil
}
