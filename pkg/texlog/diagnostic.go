package texlog

import (
	"fmt"
	"strings"
)

// Diagnostic is one event read from a transcript.
type Diagnostic struct {
	Level   Level  `json:"level" yaml:"level"`
	Message string `json:"message" yaml:"message"`
	// Raw is the captured transcript text. It starts with the triggering
	// line and its newline.
	Raw string `json:"raw" yaml:"raw"`

	// Line is the source line the event refers to, if the transcript named one.
	Line *int `json:"line,omitempty" yaml:"line,omitempty"`
	// File is the innermost open source file when the event occurred.
	File *string `json:"file,omitempty" yaml:"file,omitempty"`
	// Content holds the context TeX prints after an error banner.
	Content *string `json:"content,omitempty" yaml:"content,omitempty"`

	// LogLine is the 1-based transcript line where the event starts.
	LogLine int `json:"log_line" yaml:"log_line"`
}

// LineNumber returns the source line, if known.
func (d Diagnostic) LineNumber() (int, bool) {
	if d.Line == nil {
		return 0, false
	}
	return *d.Line, true
}

// Path returns the source file, if known.
func (d Diagnostic) Path() (string, bool) {
	if d.File == nil {
		return "", false
	}
	return *d.File, true
}

// Context returns the captured error context, if any.
func (d Diagnostic) Context() (string, bool) {
	if d.Content == nil {
		return "", false
	}
	return *d.Content, true
}

// Location formats the source position as "file:line", falling back to
// whichever half is known, or "-" when neither is.
func (d Diagnostic) Location() string {
	file, hasFile := d.Path()
	line, hasLine := d.LineNumber()
	switch {
	case hasFile && hasLine:
		return fmt.Sprintf("%s:%d", file, line)
	case hasFile:
		return file
	case hasLine:
		return fmt.Sprintf("line %d", line)
	}
	return "-"
}

// Summary renders the diagnostic on one line.
func (d Diagnostic) Summary() string {
	msg := strings.Join(strings.Fields(d.Message), " ")
	return fmt.Sprintf("%s: %s: %s", d.Location(), d.Level, msg)
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
