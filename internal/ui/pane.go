package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/texlog/internal/config"
	"github.com/TimelordUK/texlog/internal/filter"
	"github.com/TimelordUK/texlog/internal/render"
	"github.com/TimelordUK/texlog/internal/report"
	"github.com/TimelordUK/texlog/internal/source"
	"github.com/TimelordUK/texlog/internal/view"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Focus selects which view of the transcript is shown
type Focus int

const (
	FocusList Focus = iota
	FocusLog
)

// Pane shows one transcript: the diagnostic list, a detail box for the
// selected diagnostic and the raw log
type Pane struct {
	config *config.Config

	source      *source.FileSource
	diagnostics *source.DiagnosticSource
	filtered    *source.FilteredProvider

	list *view.Viewport
	log  *view.Viewport

	levels   *render.LevelRenderer
	syntax   *render.SyntaxRenderer
	exporter *report.Exporter

	focus        Focus
	filename     string
	detailHeight int

	// Filter state
	filterTerm string
	where      *filter.Expression

	lastExport string
}

// NewPane opens and parses a transcript
func NewPane(path string, cfg *config.Config) (*Pane, error) {
	parser := texlog.NewParser(texlog.WithWrapWidth(cfg.Parser.WrapWidth))
	src, err := source.NewFileSource(path, parser)
	if err != nil {
		return nil, err
	}

	diagnostics := source.NewDiagnosticSource(src.Diagnostics())
	filtered := source.NewFilteredProvider(diagnostics)
	if cfg.Parser.MinLevel != texlog.LevelDebug {
		filtered.SetLevelAndAbove(cfg.Parser.MinLevel)
	}

	syntax := render.NewSyntaxRenderer(cfg.Theme.SyntaxTheme)
	levels := render.NewLevelRenderer(cfg, nil)

	list := view.NewViewport(80, 10)
	list.SetProvider(filtered)
	list.SetRenderer(levels)
	list.SetShowLineNumbers(false)
	list.SetColors(cfg.Theme.LineNumbers, cfg.Theme.Selection)

	raw := view.NewViewport(80, 10)
	raw.SetProvider(src)
	raw.SetRenderer(render.NewLevelRenderer(cfg, syntax))
	raw.SetShowLineNumbers(cfg.Display.ShowLineNumbers)
	raw.SetShowSelection(false)
	raw.SetColors(cfg.Theme.LineNumbers, cfg.Theme.Selection)

	format, err := report.ParseFormat(cfg.Output.Format)
	if err != nil {
		format = report.FormatText
	}

	return &Pane{
		config:      cfg,
		source:      src,
		diagnostics: diagnostics,
		filtered:    filtered,
		list:        list,
		log:         raw,
		levels:      levels,
		syntax:      syntax,
		exporter:    report.NewExporter("", report.Options{Format: format, Content: cfg.Output.ShowContent}),
		filename:    filepath.Base(path),

		detailHeight: cfg.Display.DetailHeight,
	}, nil
}

// SetSize splits height between the list and the detail box
func (p *Pane) SetSize(width, height int) {
	detail := p.config.Display.DetailHeight
	if detail > height/2 {
		detail = height / 2
	}
	p.detailHeight = detail
	p.list.SetSize(width, max(height-detail, 1))
	p.log.SetSize(width, max(height, 1))
}

// Active returns the viewport that has focus
func (p *Pane) Active() *view.Viewport {
	if p.focus == FocusLog {
		return p.log
	}
	return p.list
}

// Focus returns the focused view
func (p *Pane) Focus() Focus {
	return p.focus
}

// ToggleFocus switches between the list and the raw log. Entering the log
// shows where the selected diagnostic starts.
func (p *Pane) ToggleFocus() {
	if p.focus == FocusLog {
		p.focus = FocusList
		p.log.ClearHighlight()
		return
	}
	p.JumpToLog()
}

// JumpToLog shows the raw log at the selected diagnostic
func (p *Pane) JumpToLog() {
	p.focus = FocusLog
	d := p.Selected()
	if d == nil || d.LogLine <= 0 {
		return
	}
	p.log.GotoLine(d.LogLine - 1)
	p.log.SetHighlightedLine(d.LogLine - 1)
}

// Selected returns the diagnostic under the list selection, or nil
func (p *Pane) Selected() *texlog.Diagnostic {
	line, err := p.filtered.GetLine(p.list.Selected())
	if err != nil || line == nil {
		return nil
	}
	return line.Diagnostic
}

// Visible returns the diagnostics that pass the current filters
func (p *Pane) Visible() []texlog.Diagnostic {
	n := p.filtered.LineCount()
	out := make([]texlog.Diagnostic, 0, n)
	for i := 0; i < n; i++ {
		line, err := p.filtered.GetLine(i)
		if err != nil || line == nil || line.Diagnostic == nil {
			continue
		}
		out = append(out, *line.Diagnostic)
	}
	return out
}

// SetMinLevel shows level and above
func (p *Pane) SetMinLevel(level texlog.Level) {
	p.filtered.SetLevelAndAbove(level)
	p.list.Refresh()
}

// ClearLevel shows every level
func (p *Pane) ClearLevel() {
	p.filtered.ClearFilter()
	p.list.Refresh()
}

// MinLevel returns the active minimum level
func (p *Pane) MinLevel() (texlog.Level, bool) {
	return p.filtered.MinLevel()
}

// SetFilterTerm sets the text filter on the one-line summaries
func (p *Pane) SetFilterTerm(term string) {
	p.filterTerm = term
	p.filtered.SetTextFilter(term)
	p.list.Refresh()
}

// FilterTerm returns the current filter term
func (p *Pane) FilterTerm() string {
	return p.filterTerm
}

// SetWhere compiles and applies an expression filter; "" removes it
func (p *Pane) SetWhere(src string) error {
	if strings.TrimSpace(src) == "" {
		p.where = nil
		p.filtered.SetMatcher(nil)
		p.list.Refresh()
		return nil
	}
	e, err := filter.Compile(src)
	if err != nil {
		return err
	}
	p.where = e
	p.filtered.SetMatcher(e)
	p.list.Refresh()
	return p.filtered.MatchErr()
}

// Where returns the active expression, or ""
func (p *Pane) Where() string {
	if p.where == nil {
		return ""
	}
	return p.where.String()
}

// GotoRow selects a 1-based row of the active view
func (p *Pane) GotoRow(row int) {
	if row > 0 {
		p.Active().GotoLine(row - 1)
	}
}

// Reload re-parses the transcript if it changed on disk
func (p *Pane) Reload() (bool, error) {
	changed, err := p.source.Refresh()
	if err != nil || !changed {
		return false, err
	}
	p.diagnostics.SetDiagnostics(p.source.Diagnostics())
	p.filtered.MarkDirty()
	p.list.Refresh()
	p.log.Refresh()
	return true, nil
}

// Export writes the visible diagnostics to a temp file
func (p *Pane) Export() (string, error) {
	r := report.New(p.source.Path(), p.Visible(), p.source.Summary(), true)
	path, err := p.exporter.Export(r)
	if err != nil {
		return "", err
	}
	p.lastExport = path
	return path, nil
}

// LastExport returns the path of the latest export
func (p *Pane) LastExport() string {
	return p.lastExport
}

// Summary returns the run summary
func (p *Pane) Summary() texlog.Summary {
	return p.source.Summary()
}

// Filename returns the display filename
func (p *Pane) Filename() string {
	return p.filename
}

// Counts returns how many diagnostics are shown and in total
func (p *Pane) Counts() (shown, total int) {
	return p.filtered.LineCount(), p.diagnostics.LineCount()
}

// Render returns the focused view; in list focus the detail box follows
func (p *Pane) Render(width int) string {
	if p.focus == FocusLog {
		return p.log.Render()
	}
	return p.list.Render() + "\n" + p.renderDetail(width)
}

func (p *Pane) renderDetail(width int) string {
	height := p.detailHeight
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(p.config.Theme.LineNumbers))
	rule := border.Render(strings.Repeat("─", max(width, 1)))

	d := p.Selected()
	if d == nil {
		return rule + strings.Repeat("\n", max(height-1, 0))
	}

	header := fmt.Sprintf("%s  %s  (log line %d)",
		p.levels.Style(d.Level).Render(d.Level.String()), d.Location(), d.LogLine)

	body := strings.TrimRight(d.Raw, "\n")
	lines := strings.Split(p.syntax.HighlightBlock(body), "\n")
	if height > 2 && len(lines) > height-2 {
		lines = lines[:height-2]
	}

	rows := append([]string{rule, header}, lines...)
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

// Close cleans up pane resources
func (p *Pane) Close() error {
	return p.source.Close()
}
