// Package filter selects diagnostics with expr-lang expressions such as
//
//	AtLeast("warning") && File endsWith "chapter.tex"
//	Level == "error" || Contains("Citation")
package filter

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Env is the environment an expression is evaluated against. Optional
// diagnostic fields are flattened: File is "" and Line is 0 when unknown.
type Env struct {
	Level   string
	Message string
	File    string
	Line    int
	HasLine bool
	Raw     string
	Content string
	LogLine int

	level texlog.Level
}

// AtLeast reports whether the diagnostic is at least as severe as level.
// An unknown level name never matches.
func (e *Env) AtLeast(level string) bool {
	min, err := texlog.ParseLevel(level)
	if err != nil {
		return false
	}
	return e.level.AtLeast(min)
}

// Contains does a case-insensitive search of the message and raw text.
func (e *Env) Contains(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(strings.ToLower(e.Message), s) ||
		strings.Contains(strings.ToLower(e.Raw), s)
}

func newEnv(d *texlog.Diagnostic) *Env {
	env := &Env{
		Level:   d.Level.String(),
		Message: d.Message,
		Raw:     d.Raw,
		LogLine: d.LogLine,
		level:   d.Level,
	}
	env.File, _ = d.Path()
	env.Line, env.HasLine = d.LineNumber()
	env.Content, _ = d.Context()
	return env
}

// Expression is a compiled filter.
type Expression struct {
	source  string
	program *vm.Program
}

// Compile checks src against Env and requires it to produce a bool.
func Compile(src string) (*Expression, error) {
	program, err := expr.Compile(src, expr.Env(&Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", src, err)
	}
	return &Expression{source: src, program: program}, nil
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}

// Match evaluates the expression for one diagnostic.
func (e *Expression) Match(d *texlog.Diagnostic) (bool, error) {
	output, err := expr.Run(e.program, newEnv(d))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", e.source, err)
	}
	matched, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate filter %q: got %T, want bool", e.source, output)
	}
	return matched, nil
}

// Apply returns the diagnostics the expression matches, in order. A nil
// expression matches everything.
func Apply(diags []texlog.Diagnostic, e *Expression) ([]texlog.Diagnostic, error) {
	out := make([]texlog.Diagnostic, 0, len(diags))
	for i := range diags {
		if e != nil {
			ok, err := e.Match(&diags[i])
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, diags[i])
	}
	return out, nil
}
