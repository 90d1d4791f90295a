package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_PlainText(t *testing.T) {
	path := writeFile(t, "notes.txt", "line one\nline two\n")
	got, err := NewExtractor().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\n", got, "plain text is returned verbatim")
}

func TestExtract_CSVFlattensCells(t *testing.T) {
	path := writeFile(t, "data.csv", "name,age\nalice,30\nbob,41\n")
	got, err := NewExtractor().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "name age alice 30 bob 41", got)
}

func TestExtract_CSVRaggedRows(t *testing.T) {
	path := writeFile(t, "ragged.csv", "a,b,c\nd\ne,f\n")
	got, err := NewExtractor().Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "a b c d e f", got)
}

func TestExtract_MarkdownStripsSyntax(t *testing.T) {
	path := writeFile(t, "doc.md", "# Title\n\nSome *emphasis* and a [link](https://example.com).\n")
	got, err := NewExtractor().Extract(path)
	require.NoError(t, err)
	assert.Contains(t, got, "Title")
	assert.Contains(t, got, "emphasis")
	assert.Contains(t, got, "link")
	assert.NotContains(t, got, "*emphasis*")
	assert.NotContains(t, got, "https://example.com")
	assert.NotContains(t, got, "# Title")
}

func TestExtract_MarkdownKeepsCodeBlocks(t *testing.T) {
	path := writeFile(t, "code.md", "Intro\n\n```go\nfunc main() {}\n```\n")
	got, err := NewExtractor().Extract(path)
	require.NoError(t, err)
	assert.Contains(t, got, "func main() {}")
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "image.png", "\x89PNG")
	_, err := NewExtractor().Extract(path)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtract_EmptyDocument(t *testing.T) {
	path := writeFile(t, "blank.txt", "   \n\t\n")
	_, err := NewExtractor().Extract(path)
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := NewExtractor().Extract(filepath.Join(t.TempDir(), "gone.txt"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnsupportedType)
}

func TestSupported(t *testing.T) {
	e := NewExtractor()
	for _, name := range []string{"a.pdf", "b.csv", "c.md", "d.txt", "e.TXT"} {
		assert.True(t, e.Supported(name), name)
	}
	for _, name := range []string{"a.png", "b.docx", "c", "d.exe"} {
		assert.False(t, e.Supported(name), name)
	}
}
