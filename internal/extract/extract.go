// Package extract pulls plain text out of source documents.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnsupportedType means the file extension has no extractor. Such
	// files are skipped permanently, never retried.
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrNoText means the document parsed but yielded no text. The document
	// stays unprocessed and is retried on the next ingestion run.
	ErrNoText = errors.New("document contains no text")
)

// Extractor extracts plain text from document files by extension.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether the extension of path has an extractor.
func (e *Extractor) Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".csv", ".md", ".txt":
		return true
	}
	return false
}

// Extract reads the file at path and returns its text content.
// PDF pages are extracted individually with blank pages dropped, CSV cells
// are flattened to one space-joined string, markdown is reduced to its text
// content, and plain text is returned verbatim.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !e.Supported(path) {
		return "", fmt.Errorf("%s: %w", ext, ErrUnsupportedType)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	var text string
	switch ext {
	case ".pdf":
		text, err = extractPDF(content)
	case ".csv":
		text, err = extractCSV(content)
	case ".md":
		text, err = extractMarkdown(content)
	case ".txt":
		text, err = extractPlain(content)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// extractPlain returns content as a string, replacing invalid UTF-8.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
