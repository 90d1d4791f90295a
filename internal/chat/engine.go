// Package chat wires retrieval, memory, prompt assembly, and generation into
// the query-time core that the shells call.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"docchat/internal/generate"
	"docchat/internal/memory"
	"docchat/internal/prompt"
	"docchat/internal/retriever"
)

// ErrNoContext means retrieval found nothing relevant for the query. This is
// the normal "no relevant information" outcome, not a failure.
var ErrNoContext = errors.New("no relevant information found")

// Engine answers queries: retrieve document chunks and similar past turns,
// assemble the prompt, stream the generation, and persist the exchange.
type Engine struct {
	retriever   *retriever.Retriever
	memory      *memory.Store
	assembler   *prompt.Assembler
	generator   *generate.Client
	topChunks   int
	topMemories int
	logger      *slog.Logger
}

// New creates an engine. topChunks and topMemories bound the retrieved
// context; non-positive values fall back to 5 and 3.
func New(
	ret *retriever.Retriever,
	mem *memory.Store,
	asm *prompt.Assembler,
	gen *generate.Client,
	topChunks, topMemories int,
	logger *slog.Logger,
) *Engine {
	if topChunks <= 0 {
		topChunks = 5
	}
	if topMemories <= 0 {
		topMemories = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		retriever:   ret,
		memory:      mem,
		assembler:   asm,
		generator:   gen,
		topChunks:   topChunks,
		topMemories: topMemories,
		logger:      logger,
	}
}

// Retrieve exposes document retrieval for shells that surface raw chunks.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	return e.retriever.Retrieve(ctx, query, k)
}

// Ask answers one query. Fragments are forwarded to onFragment as they
// stream in; the full response is returned after the exchange is persisted
// to memory. Returns ErrNoContext when no document chunks match.
func (e *Engine) Ask(ctx context.Context, query string, onFragment func(string)) (string, error) {
	chunks, err := e.retriever.Retrieve(ctx, query, e.topChunks)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	if len(chunks) == 0 {
		return "", ErrNoContext
	}

	similar, err := e.memory.RetrieveSimilar(ctx, query, e.topMemories)
	if err != nil {
		return "", fmt.Errorf("retrieve memory: %w", err)
	}
	// Similar past turns join the retrieved context ahead of document chunks.
	retrieved := append(similar, chunks...)

	p := e.assembler.Build(e.memory.Recent(e.assembler.MemoryWindow()), retrieved, query)
	e.logger.Debug("assembled prompt", "chunks", len(chunks), "memories", len(similar), "bytes", len(p))

	response, err := e.generator.Generate(ctx, p, onFragment)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if err := e.memory.Append(ctx, query, response); err != nil {
		return "", fmt.Errorf("persist memory: %w", err)
	}
	return response, nil
}
