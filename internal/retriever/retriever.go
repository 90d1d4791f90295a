// Package retriever maps a query to its nearest indexed document chunks.
package retriever

import (
	"context"
	"fmt"
	"log/slog"

	"docchat/internal/embedding"
	"docchat/internal/index"
)

// Retriever performs read-only nearest-neighbor lookups against the document
// store. It never mutates the index.
type Retriever struct {
	store    *index.Store
	embedder embedding.Embedder
	logger   *slog.Logger
}

// New creates a retriever over the given store and embedding capability.
func New(store *index.Store, embedder embedding.Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// Retrieve embeds query once and returns up to k chunk texts ranked by
// vector distance. Positions outside the text store's range are dropped as a
// guard against index/store divergence. No matches is a normal empty result,
// not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	if r.store.Len() == 0 {
		return nil, nil
	}
	vector, err := embedding.EmbedOne(ctx, r.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.store.Search(vector, k)
	if err != nil {
		return nil, err
	}

	var chunks []string
	for _, hit := range hits {
		text, ok := r.store.Text(hit.Position)
		if !ok {
			r.logger.Warn("search hit outside text store range", "position", hit.Position)
			continue
		}
		chunks = append(chunks, text)
	}
	return chunks, nil
}
