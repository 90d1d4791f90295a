// Package memory persists past conversation turns and retrieves them by
// similarity or recency.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"docchat/internal/embedding"
	"docchat/internal/index"
)

// Store is the long-term conversational memory: an append-only transcript
// log plus a vector index over serialized turns, kept in lockstep. The
// transcript is the durable source of truth; the index snapshot is healed
// from it when the two diverge after a crash.
type Store struct {
	embedder  embedding.Embedder
	index     *index.Flat
	indexPath string
	logPath   string
	entries   []string // serialized "User: q\nBot: r" blocks, position-ordered
	lines     []string // transcript lines in recency order
	logger    *slog.Logger
}

// Open loads the store from its transcript and index snapshot files. Missing
// files start the store empty. If the snapshot has fewer rows than the
// transcript has entries, the missing tail is re-embedded; extra rows are
// truncated.
func Open(ctx context.Context, indexPath, logPath string, embedder embedding.Embedder, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		embedder:  embedder,
		indexPath: indexPath,
		logPath:   logPath,
		logger:    logger,
	}
	if err := s.loadTranscript(); err != nil {
		return nil, err
	}

	flat, err := index.LoadFlat(indexPath)
	if err != nil && !errors.Is(err, index.ErrMissingIndex) {
		return nil, err
	}
	s.index = flat

	if err := s.heal(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// loadTranscript replays the durable log into entries and recency lines.
func (s *Store) loadTranscript() error {
	data, err := os.ReadFile(s.logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read transcript: %w", err)
	}
	for _, block := range strings.Split(string(data), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		s.entries = append(s.entries, block)
		s.lines = append(s.lines, strings.Split(block, "\n")...)
	}
	return nil
}

// heal brings the index row count back to the transcript entry count.
func (s *Store) heal(ctx context.Context) error {
	if s.index != nil && s.index.Len() > len(s.entries) {
		s.logger.Warn("memory index ahead of transcript, truncating",
			"rows", s.index.Len(), "entries", len(s.entries))
		s.index.Truncate(len(s.entries))
		if err := s.index.Save(s.indexPath); err != nil {
			return fmt.Errorf("persist memory index: %w", err)
		}
	}
	if rows := s.rows(); rows < len(s.entries) {
		s.logger.Warn("memory index behind transcript, re-embedding tail",
			"rows", rows, "missing", len(s.entries)-rows)
	}
	return s.embedTail(ctx)
}

// rows returns the index row count, zero before the first vector exists.
func (s *Store) rows() int {
	if s.index == nil {
		return 0
	}
	return s.index.Len()
}

// embedTail embeds and indexes every transcript entry the index does not yet
// cover, then persists the snapshot.
func (s *Store) embedTail(ctx context.Context) error {
	if s.rows() == len(s.entries) {
		return nil
	}
	if s.index == nil {
		dim, err := s.embedder.Dimension(ctx)
		if err != nil {
			return fmt.Errorf("embedding dimension: %w", err)
		}
		s.index = index.NewFlat(dim)
	}
	missing := s.entries[s.index.Len():]
	vectors, err := s.embedder.Embed(ctx, missing)
	if err != nil {
		return fmt.Errorf("embed memory: %w", err)
	}
	if err := s.index.Append(vectors); err != nil {
		return err
	}
	if err := s.index.Save(s.indexPath); err != nil {
		return fmt.Errorf("persist memory index: %w", err)
	}
	return nil
}

// Len returns the number of stored turns.
func (s *Store) Len() int { return len(s.entries) }

// Serialize renders a turn in the fixed transcript form. Query and response
// are flattened to single lines so every entry is exactly two lines.
func Serialize(query, response string) string {
	return fmt.Sprintf("User: %s\nBot: %s", index.Flatten(query), index.Flatten(response))
}

// Append records one exchange: the serialized block is flushed to the
// transcript log first, then embedded and indexed. A crash after the log
// write is healed on the next Open.
func (s *Store) Append(ctx context.Context, query, response string) error {
	block := Serialize(query, response)

	file, err := os.OpenFile(s.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if _, err := file.WriteString(block + "\n\n"); err != nil {
		file.Close()
		return fmt.Errorf("append transcript: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("sync transcript: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close transcript: %w", err)
	}
	s.entries = append(s.entries, block)
	s.lines = append(s.lines, strings.Split(block, "\n")...)

	// An earlier embed failure can leave the index short of the transcript;
	// embedTail covers that gap along with the new entry, so positions keep
	// mapping back to the right blocks.
	return s.embedTail(ctx)
}

// RetrieveSimilar returns up to k stored turns nearest to query, most
// similar first. An empty store yields no results.
func (s *Store) RetrieveSimilar(ctx context.Context, query string, k int) ([]string, error) {
	if s.index == nil || s.index.Len() == 0 {
		return nil, nil
	}
	vector, err := embedding.EmbedOne(ctx, s.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.index.Search(vector, k)
	if err != nil {
		return nil, err
	}
	var results []string
	for _, hit := range hits {
		if hit.Position >= 0 && hit.Position < len(s.entries) {
			results = append(results, s.entries[hit.Position])
		}
	}
	return results, nil
}

// Recent returns the last n transcript lines in order, oldest first.
func (s *Store) Recent(n int) []string {
	if n <= 0 || len(s.lines) == 0 {
		return nil
	}
	if n > len(s.lines) {
		n = len(s.lines)
	}
	out := make([]string, n)
	copy(out, s.lines[len(s.lines)-n:])
	return out
}
