package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecrag/internal/metadata"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		size     int
		overlap  int
		expected []string
	}{
		{"Empty", "", 4, 1, []string{}},
		{"Shorter", "abc", 10, 2, []string{"abc"}},
		{"NoOverlap", "abcdefgh", 4, 0, []string{"abcd", "efgh"}},
		{"Overlap", "abcdefgh", 4, 2, []string{"abcd", "cdef", "efgh", "gh"}},
		{"Runes", "ñandú", 2, 0, []string{"ña", "nd", "ú"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.text, tt.size, tt.overlap)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSplitInvalid(t *testing.T) {
	for _, c := range [][2]int{{0, 0}, {4, 4}, {4, 5}, {4, -1}} {
		_, err := Split("text", c[0], c[1])
		assert.ErrorIs(t, err, ErrInvalidChunking, "size=%d overlap=%d", c[0], c[1])
	}
}

func TestChunkDocument(t *testing.T) {
	doc := LoadFromString("aaaa    bbbb", "inline")
	chunks, err := ChunkDocument(doc, 4, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 2, "whitespace-only windows are dropped")

	assert.Equal(t, "aaaa", chunks[0].Text)
	assert.Equal(t, metadata.Int(0), chunks[0].Metadata["chunk_index"])
	assert.Equal(t, "bbbb", chunks[1].Text)
	assert.Equal(t, metadata.Int(2), chunks[1].Metadata["chunk_index"])
	assert.Equal(t, metadata.String("inline"), chunks[1].Metadata["source"])
	_, shared := doc.Metadata["chunk_index"]
	assert.False(t, shared)
}

func TestLoadAndFindFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.MD"), []byte("# beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.bin"), []byte{0xff, 0xfe}, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "d.txt"), []byte("delta"), 0o644))

	exts := []string{".txt", ".md"}
	flat, err := FindFiles(dir, false, exts)
	require.NoError(t, err)
	assert.Len(t, flat, 2)

	deep, err := FindFiles(dir, true, exts)
	require.NoError(t, err)
	assert.Len(t, deep, 3)

	single, err := FindFiles(filepath.Join(dir, "a.txt"), false, exts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt")}, single)

	_, err = FindFiles(filepath.Join(dir, "missing"), false, exts)
	assert.Error(t, err)

	doc, err := LoadFromFile(filepath.Join(dir, "b.MD"))
	require.NoError(t, err)
	assert.Equal(t, "# beta", doc.Content)
	assert.Equal(t, metadata.String("markdown"), doc.Metadata["type"])
	assert.Equal(t, metadata.String("b.MD"), doc.Metadata["filename"])

	_, err = LoadFromFile(filepath.Join(dir, "c.bin"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid UTF-8"))
}
