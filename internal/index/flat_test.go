package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlat_AppendDimensionMismatch(t *testing.T) {
	f := NewFlat(3)
	err := f.Append([][]float32{{1, 2, 3}, {1, 2}})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	// Nothing may be appended when any vector is bad.
	assert.Equal(t, 0, f.Len())
}

func TestFlat_SearchEmpty(t *testing.T) {
	f := NewFlat(2)
	hits, err := f.Search([]float32{0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFlat_SearchOrdering(t *testing.T) {
	f := NewFlat(1)
	require.NoError(t, f.Append([][]float32{{10}, {1}, {5}, {2}}))

	hits, err := f.Search([]float32{0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, 3, hits[1].Position)
	assert.Equal(t, 2, hits[2].Position)
	assert.LessOrEqual(t, hits[0].Distance, hits[1].Distance)
	assert.LessOrEqual(t, hits[1].Distance, hits[2].Distance)
}

func TestFlat_SearchTieBreaksByPosition(t *testing.T) {
	f := NewFlat(1)
	require.NoError(t, f.Append([][]float32{{2}, {-2}, {2}}))

	hits, err := f.Search([]float32{0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	// All three are at equal distance; order must be by position.
	assert.Equal(t, []int{0, 1, 2}, []int{hits[0].Position, hits[1].Position, hits[2].Position})
}

func TestFlat_SearchBoundedByK(t *testing.T) {
	f := NewFlat(1)
	require.NoError(t, f.Append([][]float32{{1}, {2}, {3}}))

	hits, err := f.Search([]float32{0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = f.Search([]float32{0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestFlat_SearchDeterministic(t *testing.T) {
	f := NewFlat(2)
	require.NoError(t, f.Append([][]float32{{1, 1}, {2, 2}, {0.5, 0.5}, {3, 0}}))

	query := []float32{1, 0.5}
	first, err := f.Search(query, 4)
	require.NoError(t, err)
	second, err := f.Search(query, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFlat_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.index")

	f := NewFlat(2)
	require.NoError(t, f.Append([][]float32{{1, 2}, {3, 4}, {5, 6}}))
	require.NoError(t, f.Save(path))

	loaded, err := LoadFlat(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Dimension())
	assert.Equal(t, 3, loaded.Len())

	query := []float32{2, 3}
	want, err := f.Search(query, 3)
	require.NoError(t, err)
	got, err := loaded.Search(query, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got, "restored index must reproduce identical search results")
}

func TestLoadFlat_Missing(t *testing.T) {
	_, err := LoadFlat(filepath.Join(t.TempDir(), "nope.index"))
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestFlat_Truncate(t *testing.T) {
	f := NewFlat(1)
	require.NoError(t, f.Append([][]float32{{1}, {2}, {3}}))
	f.Truncate(1)
	assert.Equal(t, 1, f.Len())
	f.Truncate(5)
	assert.Equal(t, 1, f.Len())
}
