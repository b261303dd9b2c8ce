package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	texio "github.com/TimelordUK/texlog/internal/io"
)

func mapped(t *testing.T, content string) *texio.MappedFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	m, err := texio.OpenMapped(path)
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestBuildLineIndex(t *testing.T) {
	idx, err := BuildLineIndex(mapped(t, "one\r\ntwo\n\nfour"))
	require.NoError(t, err)
	require.Equal(t, 4, idx.LineCount())

	lines, err := idx.GetLines(0, 10)
	require.NoError(t, err)
	got := make([]string, len(lines))
	for i, l := range lines {
		got[i] = string(l)
	}
	assert.Equal(t, []string{"one", "two", "", "four"}, got)
}

func TestTrailingNewlineAddsNoLine(t *testing.T) {
	idx, err := BuildLineIndex(mapped(t, "a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, idx.LineCount())
}

func TestEmptyFileHasOneLine(t *testing.T) {
	idx, err := BuildLineIndex(mapped(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 1, idx.LineCount())
	line, err := idx.GetLine(0)
	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestGetLineOutOfRange(t *testing.T) {
	idx, err := BuildLineIndex(mapped(t, "a\nb\n"))
	require.NoError(t, err)
	line, err := idx.GetLine(5)
	assert.NoError(t, err)
	assert.Nil(t, line)
}

func TestLineAt(t *testing.T) {
	idx, err := BuildLineIndex(mapped(t, "ab\ncd\nef"))
	require.NoError(t, err)
	assert.Equal(t, 0, idx.LineAt(0))
	assert.Equal(t, 0, idx.LineAt(2))
	assert.Equal(t, 1, idx.LineAt(3))
	assert.Equal(t, 2, idx.LineAt(7))
	assert.Equal(t, -1, idx.LineAt(8))
}

func TestLinesSpanChunks(t *testing.T) {
	long := make([]byte, chunkSize+10)
	for i := range long {
		long[i] = 'x'
	}
	content := "head\n" + string(long) + "\ntail\n"
	idx, err := BuildLineIndex(mapped(t, content))
	require.NoError(t, err)
	require.Equal(t, 3, idx.LineCount())
	last, err := idx.GetLine(2)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(last))
}
