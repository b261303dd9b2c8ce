// Package report writes diagnostics for people and for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Format selects the report encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or yaml)", s)
}

// Report is the diagnostics of one transcript. It is also the envelope
// written by the json and yaml formats.
type Report struct {
	Log         string              `json:"log" yaml:"log"`
	Summary     *texlog.Summary     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Diagnostics []texlog.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Count       int                 `json:"count" yaml:"count"`
}

// New builds a report, dropping the summary unless withSummary is set
func New(log string, diags []texlog.Diagnostic, summary texlog.Summary, withSummary bool) Report {
	if diags == nil {
		diags = []texlog.Diagnostic{}
	}
	r := Report{Log: log, Diagnostics: diags, Count: len(diags)}
	if withSummary {
		r.Summary = &summary
	}
	return r
}

// Options control how reports are written
type Options struct {
	Format Format
	// Content adds the captured error context below each text entry
	Content bool
	// Styles colors the level of text entries; nil writes plain text
	Styles map[texlog.Level]lipgloss.Style
}

// Write writes reports to w. A single report is one JSON object or YAML
// document; several become a JSON array or a YAML document stream.
func Write(w io.Writer, reports []Report, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, reports)
	case FormatYAML:
		return writeYAML(w, reports)
	case FormatText, "":
		return writeText(w, reports, opts)
	}
	return fmt.Errorf("unknown format %q", opts.Format)
}

func writeJSON(w io.Writer, reports []Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(reports) == 1 {
		return enc.Encode(reports[0])
	}
	if reports == nil {
		reports = []Report{}
	}
	return enc.Encode(reports)
}

func writeYAML(w io.Writer, reports []Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return enc.Close()
}

func writeText(w io.Writer, reports []Report, opts Options) error {
	for i, r := range reports {
		if len(reports) > 1 {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "==> %s <==\n", r.Log); err != nil {
				return err
			}
		}
		for _, d := range r.Diagnostics {
			if _, err := fmt.Fprintln(w, textLine(d, opts.Styles)); err != nil {
				return err
			}
			if ctx, ok := d.Context(); ok && opts.Content {
				if _, err := fmt.Fprintln(w, indent(ctx)); err != nil {
					return err
				}
			}
		}
		if r.Summary != nil {
			if _, err := fmt.Fprintln(w, SummaryLine(r)); err != nil {
				return err
			}
		}
	}
	return nil
}

func textLine(d texlog.Diagnostic, styles map[texlog.Level]lipgloss.Style) string {
	level := d.Level.String()
	if style, ok := styles[d.Level]; ok {
		level = style.Render(level)
	}
	msg := strings.Join(strings.Fields(d.Message), " ")
	return fmt.Sprintf("%s: %s: %s", d.Location(), level, msg)
}

func indent(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}
	return strings.Join(lines, "\n")
}

// SummaryLine renders counts and the run outcome on one line, e.g.
// "main.log: 1 error, 2 warnings, 0 typesetting; main.pdf (3 pages)"
func SummaryLine(r Report) string {
	counts := texlog.Count(r.Diagnostics)
	parts := []string{
		plural(counts[texlog.LevelError], "error"),
		plural(counts[texlog.LevelWarning], "warning"),
		fmt.Sprintf("%d typesetting", counts[texlog.LevelTypesetting]),
	}
	line := fmt.Sprintf("%s: %s", r.Log, strings.Join(parts, ", "))

	if r.Summary == nil {
		return line
	}
	s := r.Summary
	switch {
	case s.HasOutput():
		line += fmt.Sprintf("; %s (%s)", s.OutputFile, plural(s.Pages, "page"))
	case s.NoOutput:
		line += "; no output"
	}
	if s.NeedsRerun {
		line += "; rerun needed"
	}
	return line
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
