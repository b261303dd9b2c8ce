package source

import "github.com/TimelordUK/texlog/pkg/texlog"

// Line represents a single row with optional diagnostic metadata
type Line struct {
	Content []byte
	// Diagnostic is set on the row where a diagnostic starts
	Diagnostic    *texlog.Diagnostic
	OriginalIndex int // row number in the unfiltered provider
}

// Level returns the level of the attached diagnostic, if any
func (l *Line) Level() (texlog.Level, bool) {
	if l.Diagnostic == nil {
		return 0, false
	}
	return l.Diagnostic.Level, true
}

// LineProvider is the core abstraction for accessing lines
// The viewport only interacts with this interface
type LineProvider interface {
	// LineCount returns total number of lines
	LineCount() int

	// GetLine returns line at index (0-based)
	GetLine(index int) (*Line, error)

	// GetLines returns a range of lines efficiently
	GetLines(start, count int) ([]*Line, error)
}

// Matcher decides whether a diagnostic passes an expression filter
type Matcher interface {
	Match(d *texlog.Diagnostic) (bool, error)
}
