package index

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// TextLog is the position-addressed chunk text file backing a Flat index.
// Each entry is written as a single paragraph (internal newlines flattened
// to spaces) separated from the next by a blank line, so entry i in the log
// is the text for row i of the index.
type TextLog struct {
	path    string
	entries []string
}

// OpenTextLog loads the log at path into memory, creating an empty log if
// the file does not exist yet.
func OpenTextLog(path string) (*TextLog, error) {
	log := &TextLog{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return log, nil
		}
		return nil, fmt.Errorf("read text log: %w", err)
	}
	for _, block := range strings.Split(string(data), "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			log.entries = append(log.entries, block)
		}
	}
	return log, nil
}

// Len returns the number of stored entries.
func (l *TextLog) Len() int { return len(l.entries) }

// Get returns the entry at position i and whether i is in range.
func (l *TextLog) Get(i int) (string, bool) {
	if i < 0 || i >= len(l.entries) {
		return "", false
	}
	return l.entries[i], true
}

// All returns the stored entries in position order.
func (l *TextLog) All() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Append adds texts to the log in order, flattening each to one paragraph,
// and flushes them to disk before returning.
func (l *TextLog) Append(texts []string) error {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open text log: %w", err)
	}
	defer file.Close()

	for _, text := range texts {
		entry := Flatten(text)
		if entry == "" {
			return fmt.Errorf("refusing to append empty entry at position %d", len(l.entries))
		}
		if _, err := file.WriteString(entry + "\n\n"); err != nil {
			return fmt.Errorf("append text log: %w", err)
		}
		l.entries = append(l.entries, entry)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync text log: %w", err)
	}
	return nil
}

// Truncate discards entries from position n onward and rewrites the file.
// Used to drop an orphan tail left by a crash mid-append.
func (l *TextLog) Truncate(n int) error {
	if n < 0 {
		n = 0
	}
	if n >= len(l.entries) {
		return nil
	}
	l.entries = l.entries[:n]

	var b strings.Builder
	for _, entry := range l.entries {
		b.WriteString(entry)
		b.WriteString("\n\n")
	}
	if err := os.WriteFile(l.path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("rewrite text log: %w", err)
	}
	return nil
}

// Flatten collapses a chunk to the single-paragraph form stored in the log.
func Flatten(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
}
