package view

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/texlog/internal/source"
)

type fakeProvider struct {
	lines []string
}

func newFake(n int) *fakeProvider {
	f := &fakeProvider{}
	for i := 0; i < n; i++ {
		f.lines = append(f.lines, fmt.Sprintf("row %d", i))
	}
	return f
}

func (f *fakeProvider) LineCount() int { return len(f.lines) }

func (f *fakeProvider) GetLine(i int) (*source.Line, error) {
	if i < 0 || i >= len(f.lines) {
		return nil, nil
	}
	return &source.Line{Content: []byte(f.lines[i]), OriginalIndex: i}, nil
}

func (f *fakeProvider) GetLines(start, count int) ([]*source.Line, error) {
	var out []*source.Line
	for i := start; i < start+count && i < len(f.lines); i++ {
		line, _ := f.GetLine(i)
		out = append(out, line)
	}
	return out, nil
}

func TestSelectionKeepsRowVisible(t *testing.T) {
	v := NewViewport(40, 5)
	v.SetProvider(newFake(20))

	v.ScrollDown(3)
	assert.Equal(t, 3, v.Selected())
	assert.Equal(t, 0, v.CurrentLine())

	v.ScrollDown(4)
	assert.Equal(t, 7, v.Selected())
	assert.Equal(t, 3, v.CurrentLine())

	v.ScrollUp(6)
	assert.Equal(t, 1, v.Selected())
	assert.Equal(t, 1, v.CurrentLine())
}

func TestSelectionClamps(t *testing.T) {
	v := NewViewport(40, 5)
	v.SetProvider(newFake(8))

	v.GotoBottom()
	assert.Equal(t, 7, v.Selected())
	assert.Equal(t, 3, v.CurrentLine())

	v.ScrollDown(10)
	assert.Equal(t, 7, v.Selected())

	v.GotoTop()
	assert.Equal(t, 0, v.Selected())
	assert.Equal(t, 0, v.CurrentLine())

	v.PageDown()
	assert.Equal(t, 4, v.Selected())
}

func TestGotoLineScrollsToTop(t *testing.T) {
	v := NewViewport(40, 5)
	v.SetProvider(newFake(20))
	v.GotoLine(10)
	assert.Equal(t, 10, v.Selected())
	assert.Equal(t, 10, v.CurrentLine())

	v.GotoLine(18)
	assert.Equal(t, 15, v.CurrentLine())
}

func TestRenderPadsAndNumbers(t *testing.T) {
	v := NewViewport(40, 4)
	v.SetShowSelection(false)
	v.SetProvider(newFake(2))

	out := v.Render()
	rows := strings.Split(out, "\n")
	require.Len(t, rows, 4)
	assert.Contains(t, rows[0], "1 row 0")
	assert.Contains(t, rows[1], "2 row 1")
	assert.Equal(t, "~", rows[2])
	assert.Equal(t, "~", rows[3])
}

func TestRenderTruncates(t *testing.T) {
	v := NewViewport(8, 1)
	v.SetShowLineNumbers(false)
	v.SetShowSelection(false)
	v.SetProvider(&fakeProvider{lines: []string{"a very long transcript line"}})
	assert.Equal(t, "a very …", v.Render())
}

func TestPercentScrolled(t *testing.T) {
	v := NewViewport(40, 5)
	assert.Equal(t, 0.0, v.PercentScrolled())

	v.SetProvider(newFake(3))
	assert.Equal(t, 100.0, v.PercentScrolled())

	v.SetProvider(newFake(15))
	v.GotoBottom()
	assert.Equal(t, 100.0, v.PercentScrolled())
}

func TestRefreshAfterShrink(t *testing.T) {
	f := newFake(20)
	v := NewViewport(40, 5)
	v.SetProvider(f)
	v.GotoBottom()

	f.lines = f.lines[:3]
	v.Refresh()
	assert.Equal(t, 2, v.Selected())
	assert.Equal(t, 0, v.CurrentLine())
}
