package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/TimelordUK/texlog/internal/render"
	"github.com/TimelordUK/texlog/internal/source"
)

// Viewport manages the visible portion of content and a selected row.
// It knows nothing about transcripts or filters; it only displays lines
// from a LineProvider.
type Viewport struct {
	provider source.LineProvider
	renderer render.Renderer

	// Dimensions
	width  int
	height int

	// Scroll position and selected row, both provider indices
	scrollOffset int
	selected     int

	// Styling
	lineNumberStyle lipgloss.Style
	selectionStyle  lipgloss.Style
	highlightStyle  lipgloss.Style

	// Options
	showLineNumbers bool
	showSelection   bool

	// Highlighted line (original index, -1 for none)
	highlightedLine int
}

// NewViewport creates a new viewport
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:           width,
		height:          height,
		showLineNumbers: true,
		showSelection:   true,
		lineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		selectionStyle:  lipgloss.NewStyle().Background(lipgloss.Color("237")),
		highlightStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		renderer:        render.NewPlainRenderer(),
		highlightedLine: -1,
	}
}

// SetColors sets the line number and selection colors
func (v *Viewport) SetColors(lineNumbers, selection string) {
	v.lineNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(lineNumbers))
	v.selectionStyle = lipgloss.NewStyle().Background(lipgloss.Color(selection))
}

// SetHighlightedLine sets which original line index to highlight (-1 for none)
func (v *Viewport) SetHighlightedLine(originalIndex int) {
	v.highlightedLine = originalIndex
}

// ClearHighlight removes any line highlight
func (v *Viewport) ClearHighlight() {
	v.highlightedLine = -1
}

// SetRenderer sets the line renderer
func (v *Viewport) SetRenderer(r render.Renderer) {
	v.renderer = r
}

// SetProvider sets the line provider and resets the position
func (v *Viewport) SetProvider(provider source.LineProvider) {
	v.provider = provider
	v.scrollOffset = 0
	v.selected = 0
}

// Refresh re-clamps the position after the provider's content changed
func (v *Viewport) Refresh() {
	v.clampSelection()
	v.clampScroll()
}

// SetSize updates viewport dimensions
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.Refresh()
}

// Height returns the number of visible rows
func (v *Viewport) Height() int {
	return v.height
}

// SetShowSelection toggles the selection bar
func (v *Viewport) SetShowSelection(show bool) {
	v.showSelection = show
}

// SetShowLineNumbers toggles line numbers
func (v *Viewport) SetShowLineNumbers(show bool) {
	v.showLineNumbers = show
}

func (v *Viewport) lineCount() int {
	if v.provider == nil {
		return 0
	}
	return v.provider.LineCount()
}

// ScrollDown moves the selection down by n rows
func (v *Viewport) ScrollDown(n int) {
	v.Select(v.selected + n)
}

// ScrollUp moves the selection up by n rows
func (v *Viewport) ScrollUp(n int) {
	v.Select(v.selected - n)
}

// PageDown moves by one page
func (v *Viewport) PageDown() {
	v.ScrollDown(max(v.height-1, 1))
}

// PageUp moves by one page
func (v *Viewport) PageUp() {
	v.ScrollUp(max(v.height-1, 1))
}

// GotoTop selects the first row
func (v *Viewport) GotoTop() {
	v.Select(0)
}

// GotoBottom selects the last row
func (v *Viewport) GotoBottom() {
	v.Select(v.lineCount() - 1)
}

// GotoLine selects row line and scrolls it to the top when possible
func (v *Viewport) GotoLine(line int) {
	v.Select(line)
	v.scrollOffset = v.selected
	v.clampScroll()
}

// Select selects a row, scrolling just enough to keep it visible
func (v *Viewport) Select(row int) {
	v.selected = row
	v.clampSelection()

	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	}
	if v.height > 0 && v.selected >= v.scrollOffset+v.height {
		v.scrollOffset = v.selected - v.height + 1
	}
	v.clampScroll()
}

// Selected returns the selected row
func (v *Viewport) Selected() int {
	return v.selected
}

// CurrentLine returns the current top row
func (v *Viewport) CurrentLine() int {
	return v.scrollOffset
}

func (v *Viewport) clampSelection() {
	total := v.lineCount()
	if v.selected >= total {
		v.selected = total - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}
}

// clampScroll ensures scroll offset is within valid bounds
func (v *Viewport) clampScroll() {
	maxScroll := v.lineCount() - v.height
	if maxScroll < 0 {
		maxScroll = 0
	}

	if v.scrollOffset > maxScroll {
		v.scrollOffset = maxScroll
	}
	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
}

// Render returns the viewport content as a string
func (v *Viewport) Render() string {
	if v.provider == nil {
		return ""
	}

	lines, err := v.provider.GetLines(v.scrollOffset, v.height)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var builder strings.Builder
	lineNumWidth := len(fmt.Sprintf("%d", v.lineCount()))

	for i, line := range lines {
		if i > 0 {
			builder.WriteString("\n")
		}
		row := v.scrollOffset + i

		var gutter string
		if v.showLineNumbers {
			numStr := fmt.Sprintf("%*d ", lineNumWidth, line.OriginalIndex+1)
			if v.highlightedLine >= 0 && line.OriginalIndex == v.highlightedLine {
				gutter = v.highlightStyle.Render(numStr)
			} else {
				gutter = v.lineNumberStyle.Render(numStr)
			}
		}

		availableWidth := v.width
		if v.showLineNumbers {
			availableWidth -= lineNumWidth + 1
		}
		content := v.renderer.Render(line)
		if availableWidth > 0 {
			content = ansi.Truncate(content, availableWidth, "…")
		}
		if v.showSelection && row == v.selected {
			content = v.selectionStyle.Render(content)
		}

		builder.WriteString(gutter)
		builder.WriteString(content)
	}

	// Pad with empty lines if needed
	for i := len(lines); i < v.height; i++ {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("~")
	}

	return builder.String()
}

// PercentScrolled returns how far through the content we are
func (v *Viewport) PercentScrolled() float64 {
	total := v.lineCount()
	if total == 0 {
		return 0
	}
	if total <= v.height {
		return 100
	}
	return float64(v.scrollOffset) / float64(total-v.height) * 100
}
