// Package chunker splits extracted text into overlapping fixed-size segments.
package chunker

import "strings"

// Chunker produces overlapping rune windows of bounded size so that
// information spanning a boundary appears in both neighbouring chunks.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker with the given window size and overlap, in runes.
// An overlap that is negative or not smaller than the size is clamped so the
// window always advances.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = 2000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Size returns the configured maximum chunk length in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap length in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into ordered chunks. Consecutive chunks share exactly the
// configured overlap except at the end of the text. Empty input yields nil,
// and windows that trim to nothing are dropped.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	step := c.size - c.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
