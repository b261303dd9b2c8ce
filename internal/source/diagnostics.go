package source

import "github.com/TimelordUK/texlog/pkg/texlog"

// DiagnosticSource presents one row per diagnostic
type DiagnosticSource struct {
	diags []texlog.Diagnostic
}

// NewDiagnosticSource wraps a diagnostic list
func NewDiagnosticSource(diags []texlog.Diagnostic) *DiagnosticSource {
	return &DiagnosticSource{diags: diags}
}

// SetDiagnostics replaces the list, e.g. after a reload
func (s *DiagnosticSource) SetDiagnostics(diags []texlog.Diagnostic) {
	s.diags = diags
}

// Diagnostics returns the wrapped list
func (s *DiagnosticSource) Diagnostics() []texlog.Diagnostic {
	return s.diags
}

// Diagnostic returns the diagnostic behind row i, or nil
func (s *DiagnosticSource) Diagnostic(i int) *texlog.Diagnostic {
	if i < 0 || i >= len(s.diags) {
		return nil
	}
	return &s.diags[i]
}

// LineCount returns the number of diagnostics
func (s *DiagnosticSource) LineCount() int {
	return len(s.diags)
}

// GetLine returns the one-line summary of diagnostic i
func (s *DiagnosticSource) GetLine(i int) (*Line, error) {
	d := s.Diagnostic(i)
	if d == nil {
		return nil, nil
	}
	return &Line{
		Content:       []byte(d.Summary()),
		Diagnostic:    d,
		OriginalIndex: i,
	}, nil
}

// GetLines returns up to count rows starting at start
func (s *DiagnosticSource) GetLines(start, count int) ([]*Line, error) {
	if start < 0 {
		start = 0
	}
	var lines []*Line
	for i := start; i < start+count && i < len(s.diags); i++ {
		line, _ := s.GetLine(i)
		lines = append(lines, line)
	}
	return lines, nil
}
