// Package index implements a flat, append-only L2 vector index with a
// parallel position-addressed chunk text log.
package index

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sort"
)

// Hit is a single nearest-neighbor match: the row position of the stored
// vector and its squared L2 distance to the query.
type Hit struct {
	Position int
	Distance float32
}

// Flat is an exact nearest-neighbor index over fixed-dimension float32
// vectors. Rows are append-only; a row's position is its identity.
type Flat struct {
	dim  int
	rows [][]float32
}

// NewFlat creates an empty index with the given vector dimension.
func NewFlat(dim int) *Flat {
	return &Flat{dim: dim}
}

// Dimension returns the fixed vector dimension established at construction.
func (f *Flat) Dimension() int { return f.dim }

// Len returns the number of stored rows.
func (f *Flat) Len() int { return len(f.rows) }

// Append adds vectors as new rows in the given order. If any vector's
// dimension differs from the index's, nothing is appended.
func (f *Flat) Append(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != f.dim {
			return fmt.Errorf("vector %d has dimension %d, index has %d: %w",
				i, len(v), f.dim, ErrDimensionMismatch)
		}
	}
	f.rows = append(f.rows, vectors...)
	return nil
}

// Search returns up to k rows nearest to query by squared L2 distance,
// ascending, ties broken by lower position. An empty index yields no hits.
func (f *Flat) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d: %w",
			len(query), f.dim, ErrDimensionMismatch)
	}
	if k <= 0 || len(f.rows) == 0 {
		return nil, nil
	}

	hits := make([]Hit, len(f.rows))
	for i, row := range f.rows {
		hits[i] = Hit{Position: i, Distance: l2Squared(query, row)}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Position < hits[b].Position
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Truncate discards rows from position n onward. Used to realign the index
// with the text log after a crash left a partial write.
func (f *Flat) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(f.rows) {
		f.rows = f.rows[:n]
	}
}

// flatSnapshot is the gob wire form of a Flat index.
type flatSnapshot struct {
	Dim  int
	Rows [][]float32
}

// Save writes a full snapshot of the index to path.
func (f *Flat) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer file.Close()

	snap := flatSnapshot{Dim: f.dim, Rows: f.rows}
	if err := gob.NewEncoder(file).Encode(&snap); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync index file: %w", err)
	}
	return nil
}

// LoadFlat restores an index snapshot from path. A missing file yields
// ErrMissingIndex so callers can distinguish "never ingested" from corruption.
func LoadFlat(path string) (*Flat, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMissingIndex
		}
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	var snap flatSnapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return &Flat{dim: snap.Dim, rows: snap.Rows}, nil
}

func l2Squared(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}
