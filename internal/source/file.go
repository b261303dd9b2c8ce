package source

import (
	"fmt"

	"github.com/TimelordUK/texlog/internal/index"
	texio "github.com/TimelordUK/texlog/internal/io"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// FileSource provides the physical lines of a transcript together with the
// diagnostics parsed from it
type FileSource struct {
	file      *texio.MappedFile
	lineIndex *index.LineIndex
	parser    *texlog.Parser
	path      string

	result texlog.Result
	// starts maps a 0-based physical line to the diagnostic starting there
	starts map[int]int
}

// NewFileSource maps and parses the transcript at path
func NewFileSource(path string, parser *texlog.Parser) (*FileSource, error) {
	if parser == nil {
		parser = texlog.NewParser()
	}

	file, err := texio.OpenMapped(path)
	if err != nil {
		return nil, err
	}

	lineIndex, err := index.BuildLineIndex(file)
	if err != nil {
		file.Close()
		return nil, err
	}

	s := &FileSource{
		file:      file,
		lineIndex: lineIndex,
		parser:    parser,
		path:      path,
	}
	if err := s.parse(); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

func (s *FileSource) parse() error {
	text, err := s.file.ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	s.result = s.parser.ParseRun(text)
	s.starts = make(map[int]int, len(s.result.Diagnostics))
	for i, d := range s.result.Diagnostics {
		if d.LogLine <= 0 {
			continue
		}
		if _, seen := s.starts[d.LogLine-1]; !seen {
			s.starts[d.LogLine-1] = i
		}
	}
	return nil
}

// LineCount returns total number of physical lines
func (s *FileSource) LineCount() int {
	return s.lineIndex.LineCount()
}

func (s *FileSource) line(idx int, content []byte) *Line {
	line := &Line{Content: content, OriginalIndex: idx}
	if i, ok := s.starts[idx]; ok {
		line.Diagnostic = &s.result.Diagnostics[i]
	}
	return line
}

// GetLine returns line at index
func (s *FileSource) GetLine(idx int) (*Line, error) {
	content, err := s.lineIndex.GetLine(idx)
	if err != nil {
		return nil, err
	}
	if content == nil && (idx < 0 || idx >= s.LineCount()) {
		return nil, nil
	}
	return s.line(idx, content), nil
}

// GetLines returns a range of lines
func (s *FileSource) GetLines(start, count int) ([]*Line, error) {
	rawLines, err := s.lineIndex.GetLines(start, count)
	if err != nil {
		return nil, err
	}

	if start < 0 {
		start = 0
	}
	lines := make([]*Line, len(rawLines))
	for i, content := range rawLines {
		lines[i] = s.line(start+i, content)
	}
	return lines, nil
}

// Diagnostics returns the diagnostics of the last parse
func (s *FileSource) Diagnostics() []texlog.Diagnostic {
	return s.result.Diagnostics
}

// Summary returns the run summary of the last parse
func (s *FileSource) Summary() texlog.Summary {
	return s.result.Summary
}

// Result returns everything read from the last parse
func (s *FileSource) Result() texlog.Result {
	return s.result
}

// LineOf returns the 0-based physical line where diagnostic i starts, or -1
func (s *FileSource) LineOf(i int) int {
	if i < 0 || i >= len(s.result.Diagnostics) {
		return -1
	}
	return s.result.Diagnostics[i].LogLine - 1
}

// Close closes the file source
func (s *FileSource) Close() error {
	return s.file.Close()
}

// Path returns the file path
func (s *FileSource) Path() string {
	return s.path
}

// Refresh re-maps and re-parses the transcript when it changed on disk.
// It reports whether anything changed.
func (s *FileSource) Refresh() (bool, error) {
	changed, err := s.file.Refresh()
	if err != nil || !changed {
		return false, err
	}

	if err := s.lineIndex.Rebuild(); err != nil {
		return false, err
	}
	if err := s.parse(); err != nil {
		return false, err
	}
	return true, nil
}
