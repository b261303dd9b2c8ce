package texlog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesNormalizesEndings(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", ""}, Lines("a\r\nb\rc\n", DefaultWrapWidth))
}

func TestLinesJoinsWrapped(t *testing.T) {
	wrapped := strings.Repeat("x", 79)
	lines := Lines("first\n"+wrapped+"\ntail\nnext", DefaultWrapWidth)
	assert.Equal(t, []string{"first", wrapped + "tail", "next"}, lines)
}

func TestLinesKeepsEllipsis(t *testing.T) {
	ellipsis := strings.Repeat("y", 76) + "..."
	require.Len(t, ellipsis, 79)

	lines := Lines(ellipsis+"\nmore", DefaultWrapWidth)
	assert.Equal(t, []string{ellipsis, "more"}, lines)
}

func TestLinesKeepsErrorStart(t *testing.T) {
	full := strings.Repeat("z", 79)
	lines := Lines(full+"\n! Undefined control sequence.", DefaultWrapWidth)
	assert.Equal(t, []string{full, "! Undefined control sequence."}, lines)
}

func TestLinesShorterOrLonger(t *testing.T) {
	short := strings.Repeat("s", 78)
	long := strings.Repeat("l", 80)
	assert.Len(t, Lines(short+"\na", DefaultWrapWidth), 2)
	assert.Len(t, Lines(long+"\na", DefaultWrapWidth), 2)
}

func TestLinesUnwrapDisabled(t *testing.T) {
	wrapped := strings.Repeat("x", 79)
	assert.Len(t, Lines(wrapped+"\nrest", 0), 2)
}

func TestReconstructTracksPhysicalStart(t *testing.T) {
	wrapped := strings.Repeat("w", 79)
	lt := reconstruct("a\n"+wrapped+"\nb\nc", DefaultWrapWidth)

	assert.Equal(t, []string{"a", wrapped + "b", "c"}, lt.lines)
	assert.Equal(t, []int{0, 1, 3}, lt.starts)
}
