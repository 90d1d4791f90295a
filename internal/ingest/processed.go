package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ProcessedSet records which source documents have already been ingested,
// one filename per line. A name is added only after the document's chunks
// are fully indexed, and each addition is flushed to disk immediately so a
// crash never forgets completed work.
type ProcessedSet struct {
	path  string
	names map[string]struct{}
}

// LoadProcessedSet reads the set at path, starting empty if the file does
// not exist.
func LoadProcessedSet(path string) (*ProcessedSet, error) {
	set := &ProcessedSet{path: path, names: make(map[string]struct{})}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return set, nil
		}
		return nil, fmt.Errorf("read processed list: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			set.names[line] = struct{}{}
		}
	}
	return set, nil
}

// Contains reports whether name has been processed.
func (s *ProcessedSet) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// Len returns the number of processed documents.
func (s *ProcessedSet) Len() int { return len(s.names) }

// Add marks name as processed and persists the addition before returning.
func (s *ProcessedSet) Add(name string) error {
	if s.Contains(name) {
		return nil
	}
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open processed list: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(name + "\n"); err != nil {
		return fmt.Errorf("append processed list: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync processed list: %w", err)
	}
	s.names[name] = struct{}{}
	return nil
}
