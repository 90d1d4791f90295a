package index

import "errors"

var (
	// ErrMissingIndex means no index snapshot exists yet; ingestion must run first.
	ErrMissingIndex = errors.New("vector index not found, run ingest first")

	// ErrDimensionMismatch means a vector's dimension differs from the index's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
