package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/texlog/internal/config"
	"github.com/TimelordUK/texlog/internal/source"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// Renderer applies styling to lines
type Renderer interface {
	Render(line *source.Line) string
}

// LevelStyles builds one foreground style per diagnostic level from the theme
func LevelStyles(theme config.ThemeConfig) map[texlog.Level]lipgloss.Style {
	colors := map[texlog.Level]string{
		texlog.LevelDebug:       theme.Levels.Debug,
		texlog.LevelInfo:        theme.Levels.Info,
		texlog.LevelTypesetting: theme.Levels.Typesetting,
		texlog.LevelWarning:     theme.Levels.Warning,
		texlog.LevelError:       theme.Levels.Error,
	}

	styles := make(map[texlog.Level]lipgloss.Style, len(colors))
	for level, color := range colors {
		style := lipgloss.NewStyle()
		if color != "" {
			style = style.Foreground(lipgloss.Color(color))
		}
		if level == texlog.LevelError {
			style = style.Bold(true)
		}
		styles[level] = style
	}
	return styles
}

// LevelRenderer colors lines that start a diagnostic by its level and hands
// every other line to a fallback renderer
type LevelRenderer struct {
	styles   map[texlog.Level]lipgloss.Style
	fallback Renderer
}

// NewLevelRenderer creates a renderer with the configured theme. A nil
// fallback renders other lines unstyled.
func NewLevelRenderer(cfg *config.Config, fallback Renderer) *LevelRenderer {
	if fallback == nil {
		fallback = NewPlainRenderer()
	}
	return &LevelRenderer{
		styles:   LevelStyles(cfg.Theme),
		fallback: fallback,
	}
}

// Style returns the style used for level
func (r *LevelRenderer) Style(level texlog.Level) lipgloss.Style {
	return r.styles[level]
}

// Render applies level styling to a line
func (r *LevelRenderer) Render(line *source.Line) string {
	level, ok := line.Level()
	if !ok {
		return r.fallback.Render(line)
	}
	return r.styles[level].Render(string(line.Content))
}

// PlainRenderer renders without styling
type PlainRenderer struct{}

// NewPlainRenderer creates a plain renderer
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// Render returns the line content as-is
func (r *PlainRenderer) Render(line *source.Line) string {
	return string(line.Content)
}
