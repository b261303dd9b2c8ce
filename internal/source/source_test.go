package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Diagnostics start on physical lines 2, 4, 7 and 13.
const transcript = `This is pdfTeX, Version 3.141592653-2.6-1.40.25 (TeX Live 2023) (preloaded format=pdflatex)
(./main.tex
LaTeX Warning: Reference ` + "`fig:a'" + ` on page 1 undefined on input line 12.

Overfull \hbox (1.5pt too wide) in paragraph at lines 20--21
[]\OT1/cmr/m/n/10 text

./main.tex:31: Undefined control sequence.
l.31 \foo
         
The control sequence at the end of the top line
of your error message was never \def'ed.

Package natbib Warning: Citation ` + "`knuth'" + ` undefined on input line 40.

)
Output written on main.pdf (1 page, 1234 bytes).
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func openSource(t *testing.T) *FileSource {
	t.Helper()
	src, err := NewFileSource(writeLog(t, transcript), nil)
	require.NoError(t, err)
	t.Cleanup(func() { src.Close() })
	return src
}

type matcherFunc func(d *texlog.Diagnostic) (bool, error)

func (f matcherFunc) Match(d *texlog.Diagnostic) (bool, error) { return f(d) }

func TestFileSourceMarksDiagnosticLines(t *testing.T) {
	src := openSource(t)

	assert.Equal(t, 17, src.LineCount())
	require.Len(t, src.Diagnostics(), 4)

	for _, tc := range []struct {
		line  int
		level texlog.Level
	}{
		{2, texlog.LevelWarning},
		{4, texlog.LevelTypesetting},
		{7, texlog.LevelError},
		{13, texlog.LevelWarning},
	} {
		line, err := src.GetLine(tc.line)
		require.NoError(t, err)
		level, ok := line.Level()
		require.True(t, ok, "line %d", tc.line)
		assert.Equal(t, tc.level, level)
	}

	plain, err := src.GetLine(3)
	require.NoError(t, err)
	_, ok := plain.Level()
	assert.False(t, ok)

	assert.Equal(t, 7, src.LineOf(2))
	assert.Equal(t, -1, src.LineOf(9))

	summary := src.Summary()
	assert.Equal(t, "pdfTeX", summary.Engine)
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, int64(1234), summary.Bytes)
}

func TestFileSourceGetLines(t *testing.T) {
	src := openSource(t)
	lines, err := src.GetLines(15, 10)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, ")", string(lines[0].Content))
	assert.Equal(t, 16, lines[1].OriginalIndex)

	missing, err := src.GetLine(99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFileSourceRefreshReparses(t *testing.T) {
	path := writeLog(t, transcript)
	src, err := NewFileSource(path, texlog.NewParser())
	require.NoError(t, err)
	defer src.Close()

	changed, err := src.Refresh()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("(./main.tex\n! Emergency stop.\n<*> main\n\n"), 0644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	changed, err = src.Refresh()
	require.NoError(t, err)
	require.True(t, changed)
	require.Len(t, src.Diagnostics(), 1)
	assert.Equal(t, texlog.LevelError, src.Diagnostics()[0].Level)
	assert.Equal(t, 4, src.LineCount())
}

func TestNewFileSourceMissing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.log"), nil)
	assert.Error(t, err)
}

func TestFilteredProviderLevelAndAbove(t *testing.T) {
	f := NewFilteredProvider(openSource(t))
	assert.False(t, f.IsFiltered())
	assert.Equal(t, 17, f.LineCount())

	f.SetLevelAndAbove(texlog.LevelWarning)
	min, ok := f.MinLevel()
	require.True(t, ok)
	assert.Equal(t, texlog.LevelWarning, min)

	require.Equal(t, 3, f.LineCount())
	assert.Equal(t, 7, f.OriginalLineNumber(1))
	assert.Equal(t, 1, f.FilteredIndexFor(4))
	assert.Equal(t, -1, f.FilteredIndexFor(14))

	lines, err := f.GetLines(0, 10)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, 13, lines[2].OriginalIndex)

	f.ClearFilter()
	_, ok = f.MinLevel()
	assert.False(t, ok)
	assert.Equal(t, 17, f.LineCount())
}

func TestFilteredProviderToggleAndOnly(t *testing.T) {
	f := NewFilteredProvider(openSource(t))
	f.SetOnlyLevel(texlog.LevelTypesetting)
	assert.Equal(t, 1, f.LineCount())

	f.ToggleLevel(texlog.LevelError)
	assert.Equal(t, 2, f.LineCount())

	f.ToggleLevel(texlog.LevelTypesetting)
	assert.Equal(t, 1, f.LineCount())
}

func TestFilteredProviderText(t *testing.T) {
	f := NewFilteredProvider(openSource(t))
	f.SetTextFilter("main.tex")
	assert.Equal(t, "main.tex", f.GetTextFilter())
	assert.Equal(t, 2, f.LineCount())
	assert.Equal(t, 1, f.OriginalLineNumber(0))

	f.SetTextFilter("")
	assert.False(t, f.IsFiltered())
}

func TestFilteredProviderMatcher(t *testing.T) {
	diags := texlog.Parse(transcript)
	f := NewFilteredProvider(NewDiagnosticSource(diags))

	f.SetMatcher(matcherFunc(func(d *texlog.Diagnostic) (bool, error) {
		_, ok := d.LineNumber()
		return ok && *d.Line > 20, nil
	}))
	assert.Equal(t, 2, f.LineCount())
	assert.NoError(t, f.MatchErr())

	boom := errors.New("boom")
	f.SetMatcher(matcherFunc(func(*texlog.Diagnostic) (bool, error) { return false, boom }))
	assert.Equal(t, 0, f.LineCount())
	assert.ErrorIs(t, f.MatchErr(), boom)

	f.SetMatcher(nil)
	assert.Equal(t, 4, f.LineCount())
}

func TestDiagnosticSource(t *testing.T) {
	diags := texlog.Parse(transcript)
	s := NewDiagnosticSource(diags)
	require.Equal(t, 4, s.LineCount())

	line, err := s.GetLine(2)
	require.NoError(t, err)
	assert.Equal(t, diags[2].Summary(), string(line.Content))
	assert.Same(t, s.Diagnostic(2), line.Diagnostic)

	lines, err := s.GetLines(3, 5)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	assert.Nil(t, s.Diagnostic(4))
	s.SetDiagnostics(nil)
	assert.Equal(t, 0, s.LineCount())
}
