package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextLog_AppendReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.txt")

	log, err := OpenTextLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append([]string{"first chunk", "second\nchunk"}))

	reloaded, err := OpenTextLog(path)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Len())

	text, ok := reloaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, "second chunk", text, "internal newlines are flattened")

	_, ok = reloaded.Get(2)
	assert.False(t, ok)
	_, ok = reloaded.Get(-1)
	assert.False(t, ok)
}

func TestTextLog_Truncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.txt")

	log, err := OpenTextLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Append([]string{"a", "b", "c"}))
	require.NoError(t, log.Truncate(1))
	assert.Equal(t, 1, log.Len())

	reloaded, err := OpenTextLog(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func storePaths(t *testing.T) (string, string) {
	dir := t.TempDir()
	return filepath.Join(dir, "docs.index"), filepath.Join(dir, "chunks.txt")
}

func TestStore_AppendLockstep(t *testing.T) {
	indexPath, textPath := storePaths(t)
	store, err := Create(indexPath, textPath, 2, nil)
	require.NoError(t, err)

	require.NoError(t, store.Append([][]float32{{1, 0}, {0, 1}}, []string{"alpha", "beta"}))
	assert.Equal(t, 2, store.Len())

	// Vector/text count mismatch is rejected before anything is written.
	err = store.Append([][]float32{{1, 1}}, []string{"x", "y"})
	require.Error(t, err)
	assert.Equal(t, 2, store.Len())

	// Reopen from disk and verify both sides survived in lockstep.
	reopened, err := Open(indexPath, textPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())
	text, ok := reopened.Text(0)
	require.True(t, ok)
	assert.Equal(t, "alpha", text)
}

func TestStore_DimensionMismatchLeavesAlignment(t *testing.T) {
	indexPath, textPath := storePaths(t)
	store, err := Create(indexPath, textPath, 2, nil)
	require.NoError(t, err)
	require.NoError(t, store.Append([][]float32{{1, 2}}, []string{"ok"}))

	err = store.Append([][]float32{{1, 2, 3}}, []string{"bad"})
	require.ErrorIs(t, err, ErrDimensionMismatch)

	assert.Equal(t, 1, store.Len())
	_, ok := store.Text(1)
	assert.False(t, ok)
}

func TestStore_OpenHealsOrphanTextTail(t *testing.T) {
	indexPath, textPath := storePaths(t)
	store, err := Create(indexPath, textPath, 1, nil)
	require.NoError(t, err)
	require.NoError(t, store.Append([][]float32{{1}}, []string{"kept"}))

	// Simulate a crash that appended text but never saved the index snapshot.
	f, err := os.OpenFile(textPath, os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("orphan\n\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := Open(indexPath, textPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
	_, ok := reopened.Text(1)
	assert.False(t, ok, "orphan tail must be dropped")
}

func TestStore_OpenHealsIndexAhead(t *testing.T) {
	indexPath, textPath := storePaths(t)

	// Index snapshot with two rows, text log with one entry.
	flat := NewFlat(1)
	require.NoError(t, flat.Append([][]float32{{1}, {2}}))
	require.NoError(t, flat.Save(indexPath))
	log, err := OpenTextLog(textPath)
	require.NoError(t, err)
	require.NoError(t, log.Append([]string{"only"}))

	store, err := Open(indexPath, textPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestStore_OpenMissingIndex(t *testing.T) {
	indexPath, textPath := storePaths(t)
	_, err := Open(indexPath, textPath, nil)
	assert.ErrorIs(t, err, ErrMissingIndex)
}
