package index

import (
	"fmt"
	"log/slog"
)

// Store couples a Flat vector index with its parallel TextLog. The row count
// of the index and the entry count of the log must stay equal; every append
// goes through Store so the two sides move in lockstep.
type Store struct {
	index     *Flat
	texts     *TextLog
	indexPath string
	logger    *slog.Logger
}

// Open loads the store from its two files. The index snapshot must exist
// (ErrMissingIndex otherwise); the text log is created on first append.
// A crash mid-append leaves one side ahead of the other; the longer side is
// truncated to the shorter so positions stay aligned. The dropped tail
// belongs to a document that was never marked processed, so it is re-ingested
// on the next run.
func Open(indexPath, textPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	flat, err := LoadFlat(indexPath)
	if err != nil {
		return nil, err
	}
	texts, err := OpenTextLog(textPath)
	if err != nil {
		return nil, err
	}
	if err := realign(flat, texts, logger); err != nil {
		return nil, err
	}
	return &Store{index: flat, texts: texts, indexPath: indexPath, logger: logger}, nil
}

// Create makes an empty store with the given vector dimension. A leftover
// text log with no index snapshot is a crash remnant and is cleared.
func Create(indexPath, textPath string, dim int, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	texts, err := OpenTextLog(textPath)
	if err != nil {
		return nil, err
	}
	flat := NewFlat(dim)
	if err := realign(flat, texts, logger); err != nil {
		return nil, err
	}
	return &Store{index: flat, texts: texts, indexPath: indexPath, logger: logger}, nil
}

func realign(flat *Flat, texts *TextLog, logger *slog.Logger) error {
	if flat.Len() > texts.Len() {
		logger.Warn("index ahead of text log, truncating index",
			"rows", flat.Len(), "texts", texts.Len())
		flat.Truncate(texts.Len())
	}
	if texts.Len() > flat.Len() {
		logger.Warn("text log ahead of index, dropping orphan tail",
			"rows", flat.Len(), "texts", texts.Len())
		if err := texts.Truncate(flat.Len()); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of indexed chunks.
func (s *Store) Len() int { return s.index.Len() }

// Dimension returns the vector dimension of the underlying index.
func (s *Store) Dimension() int { return s.index.Dimension() }

// Text returns the chunk text at position i and whether i is in range.
func (s *Store) Text(i int) (string, bool) { return s.texts.Get(i) }

// Texts returns all chunk texts in position order.
func (s *Store) Texts() []string { return s.texts.All() }

// Append adds vectors and their chunk texts in lockstep, then persists the
// index snapshot. The text log is written before the snapshot, so a crash
// between the two writes leaves an orphan text tail that Open truncates.
func (s *Store) Append(vectors [][]float32, texts []string) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("got %d vectors for %d texts", len(vectors), len(texts))
	}
	if len(vectors) == 0 {
		return nil
	}
	if err := s.index.Append(vectors); err != nil {
		return err
	}
	if err := s.texts.Append(texts); err != nil {
		// Undo the in-memory append so the two sides stay equal.
		s.index.Truncate(s.texts.Len())
		return err
	}
	if err := s.index.Save(s.indexPath); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	return nil
}

// Search returns up to k nearest chunk positions for the query vector.
func (s *Store) Search(query []float32, k int) ([]Hit, error) {
	return s.index.Search(query, k)
}
