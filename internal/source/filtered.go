package source

import (
	"bytes"
	"sort"

	"github.com/TimelordUK/texlog/pkg/texlog"
)

// FilteredProvider narrows a LineProvider by diagnostic level, a substring
// and an optional expression. Level and expression filters drop rows that
// carry no diagnostic.
type FilteredProvider struct {
	source LineProvider

	levels  map[texlog.Level]bool
	needle  []byte
	matcher Matcher

	// first evaluation error seen while rebuilding rows
	matchErr error

	// rows holds the source index of every row that passed; nil while
	// nothing is filtered
	rows  []int
	stale bool
}

func NewFilteredProvider(source LineProvider) *FilteredProvider {
	return &FilteredProvider{
		source: source,
		levels: make(map[texlog.Level]bool),
		stale:  true,
	}
}

// Source returns the unfiltered provider
func (f *FilteredProvider) Source() LineProvider {
	return f.source
}

// SetSource swaps the unfiltered provider, keeping the filters
func (f *FilteredProvider) SetSource(source LineProvider) {
	f.source = source
	f.stale = true
}

// ToggleLevel adds level to the shown set, or removes it if present
func (f *FilteredProvider) ToggleLevel(level texlog.Level) {
	if f.levels[level] {
		delete(f.levels, level)
	} else {
		f.levels[level] = true
	}
	f.stale = true
}

// SetOnlyLevel shows diagnostics of exactly one level
func (f *FilteredProvider) SetOnlyLevel(level texlog.Level) {
	f.levels = map[texlog.Level]bool{level: true}
	f.stale = true
}

// SetLevelAndAbove shows level and everything more severe
func (f *FilteredProvider) SetLevelAndAbove(level texlog.Level) {
	f.levels = make(map[texlog.Level]bool, len(texlog.Levels))
	for _, l := range texlog.Levels {
		if l.AtLeast(level) {
			f.levels[l] = true
		}
	}
	f.stale = true
}

// MinLevel returns the least severe level shown and whether a level filter
// is active
func (f *FilteredProvider) MinLevel() (texlog.Level, bool) {
	for _, l := range texlog.Levels {
		if f.levels[l] {
			return l, true
		}
	}
	return 0, false
}

// ClearFilter shows every level again. Text and expression filters stay.
func (f *FilteredProvider) ClearFilter() {
	f.levels = make(map[texlog.Level]bool)
	f.stale = true
}

// SetTextFilter keeps rows whose content contains text; "" removes it
func (f *FilteredProvider) SetTextFilter(text string) {
	f.needle = nil
	if text != "" {
		f.needle = []byte(text)
	}
	f.stale = true
}

func (f *FilteredProvider) GetTextFilter() string {
	return string(f.needle)
}

// SetMatcher sets the expression filter; nil removes it
func (f *FilteredProvider) SetMatcher(m Matcher) {
	f.matcher = m
	f.matchErr = nil
	f.stale = true
}

// MatchErr returns the first evaluation error of the last rebuild
func (f *FilteredProvider) MatchErr() error {
	f.refresh()
	return f.matchErr
}

// MarkDirty forces a rebuild, e.g. after the source re-parsed
func (f *FilteredProvider) MarkDirty() {
	f.stale = true
}

func (f *FilteredProvider) IsFiltered() bool {
	return len(f.levels) > 0 || len(f.needle) > 0 || f.matcher != nil
}

func (f *FilteredProvider) keep(line *Line) bool {
	if len(f.needle) > 0 && !bytes.Contains(line.Content, f.needle) {
		return false
	}
	if len(f.levels) == 0 && f.matcher == nil {
		return true
	}

	d := line.Diagnostic
	if d == nil {
		return false
	}
	if len(f.levels) > 0 && !f.levels[d.Level] {
		return false
	}
	if f.matcher == nil {
		return true
	}

	ok, err := f.matcher.Match(d)
	if err != nil {
		if f.matchErr == nil {
			f.matchErr = err
		}
		return false
	}
	return ok
}

func (f *FilteredProvider) refresh() {
	if !f.stale {
		return
	}
	f.stale = false
	f.rows = nil
	f.matchErr = nil

	if !f.IsFiltered() {
		return
	}

	total := f.source.LineCount()
	f.rows = make([]int, 0, total)
	for i := 0; i < total; i++ {
		line, err := f.source.GetLine(i)
		if err != nil || line == nil {
			continue
		}
		if f.keep(line) {
			f.rows = append(f.rows, i)
		}
	}
}

// LineCount returns the number of rows passing the filters
func (f *FilteredProvider) LineCount() int {
	f.refresh()
	if !f.IsFiltered() {
		return f.source.LineCount()
	}
	return len(f.rows)
}

// GetLine returns filtered row index with OriginalIndex set to its source row
func (f *FilteredProvider) GetLine(index int) (*Line, error) {
	f.refresh()
	if !f.IsFiltered() {
		return f.source.GetLine(index)
	}
	if index < 0 || index >= len(f.rows) {
		return nil, nil
	}

	original := f.rows[index]
	line, err := f.source.GetLine(original)
	if err != nil || line == nil {
		return nil, err
	}
	line.OriginalIndex = original
	return line, nil
}

func (f *FilteredProvider) GetLines(start, count int) ([]*Line, error) {
	f.refresh()
	if !f.IsFiltered() {
		return f.source.GetLines(start, count)
	}

	if start < 0 {
		start = 0
	}
	end := min(start+count, len(f.rows))
	lines := make([]*Line, 0, max(end-start, 0))
	for i := start; i < end; i++ {
		line, err := f.GetLine(i)
		if err != nil {
			return lines, err
		}
		if line != nil {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// OriginalLineNumber maps a filtered row to its source row, or -1
func (f *FilteredProvider) OriginalLineNumber(row int) int {
	f.refresh()
	if !f.IsFiltered() {
		if row < 0 || row >= f.source.LineCount() {
			return -1
		}
		return row
	}
	if row < 0 || row >= len(f.rows) {
		return -1
	}
	return f.rows[row]
}

// FilteredIndexFor returns the filtered row showing original, or the
// nearest row after it. It returns -1 when nothing at or after original
// passes the filter.
func (f *FilteredProvider) FilteredIndexFor(original int) int {
	f.refresh()
	if !f.IsFiltered() {
		if original < 0 || original >= f.source.LineCount() {
			return -1
		}
		return original
	}

	i := sort.SearchInts(f.rows, original)
	if i == len(f.rows) {
		return -1
	}
	return i
}
