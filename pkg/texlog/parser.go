package texlog

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoInput is returned when there is no transcript to read.
var ErrNoInput = errors.New("texlog: no transcript")

// Parser converts transcripts to diagnostics. The zero value is not usable;
// create one with NewParser. A Parser holds no per-run state and may be
// shared between goroutines.
type Parser struct {
	wrapWidth int
}

// Option configures a Parser.
type Option func(*Parser)

// WithWrapWidth sets the column at which the engine wrapped its output
// (max_print_line). Zero or less disables unwrapping.
func WithWrapWidth(n int) Option {
	return func(p *Parser) {
		p.wrapWidth = n
	}
}

// NewParser creates a parser with TeX's default wrap width.
func NewParser(opts ...Option) *Parser {
	p := &Parser{wrapWidth: DefaultWrapWidth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WrapWidth returns the configured wrap width.
func (p *Parser) WrapWidth() int {
	return p.wrapWidth
}

// Result is everything read from one transcript.
type Result struct {
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Files       []*FileEntry `json:"files,omitempty" yaml:"files,omitempty"`
	Summary     Summary      `json:"summary" yaml:"summary"`
}

// Parse returns the diagnostics in text in the order they were logged.
func (p *Parser) Parse(text string) []Diagnostic {
	return p.run(reconstruct(text, p.wrapWidth)).diags
}

// ParseRun parses text and also returns the tree of files the run opened
// and its summary.
func (p *Parser) ParseRun(text string) Result {
	log := reconstruct(text, p.wrapWidth)
	ps := p.run(log)
	return Result{
		Diagnostics: ps.diags,
		Files:       ps.files.roots,
		Summary:     summarize(log.lines),
	}
}

// ParseReader reads a whole transcript from r and parses it. Read errors
// are returned before any parsing happens.
func (p *Parser) ParseReader(r io.Reader) ([]Diagnostic, error) {
	if r == nil {
		return nil, ErrNoInput
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return p.Parse(string(data)), nil
}

// Summarize extracts the run summary from text.
func (p *Parser) Summarize(text string) Summary {
	return summarize(reconstruct(text, p.wrapWidth).lines)
}

// Parse parses text with default options.
func Parse(text string) []Diagnostic {
	return NewParser().Parse(text)
}

// ParseReader parses a transcript read from r with default options.
func ParseReader(r io.Reader) ([]Diagnostic, error) {
	return NewParser().ParseReader(r)
}

// pass is the state of a single parse.
type pass struct {
	cur   *cursor
	files *fileTracker
	diags []Diagnostic
}

func (p *Parser) run(log *logText) *pass {
	ps := &pass{
		cur:   newCursor(log),
		files: newFileTracker(),
		diags: []Diagnostic{},
	}
	for {
		line, ok := ps.cur.advance()
		if !ok {
			break
		}
		ps.dispatch(line)
	}
	return ps
}

func (p *pass) dispatch(line string) {
	for _, c := range classifiers {
		if c.match(line) {
			c.parse(p, line)
			return
		}
	}
}

// newDiagnostic starts a record for the line under the cursor.
func (p *pass) newDiagnostic(level Level, message, line string) Diagnostic {
	return Diagnostic{
		Level:   level,
		Message: message,
		Raw:     line + "\n",
		File:    p.files.currentPtr(),
		LogLine: p.cur.physicalLine(),
	}
}

func (p *pass) emit(d Diagnostic) {
	p.diags = append(p.diags, d)
}
