package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TimelordUK/texlog/internal/config"
	"github.com/TimelordUK/texlog/internal/source"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

func TestLevelStylesCoverEveryLevel(t *testing.T) {
	styles := LevelStyles(config.DefaultConfig().Theme)
	for _, level := range texlog.Levels {
		_, ok := styles[level]
		assert.True(t, ok, level.String())
	}
	assert.True(t, styles[texlog.LevelError].GetBold())
}

func TestLevelRendererKeepsContent(t *testing.T) {
	r := NewLevelRenderer(config.DefaultConfig(), nil)

	d := texlog.Diagnostic{Level: texlog.LevelWarning, Message: "undefined"}
	styled := r.Render(&source.Line{Content: []byte("LaTeX Warning: undefined"), Diagnostic: &d})
	assert.Contains(t, styled, "LaTeX Warning: undefined")

	plain := r.Render(&source.Line{Content: []byte("(./main.tex")})
	assert.Equal(t, "(./main.tex", plain)
}

type upper struct{}

func (upper) Render(line *source.Line) string { return "UP:" + string(line.Content) }

func TestLevelRendererFallback(t *testing.T) {
	r := NewLevelRenderer(config.DefaultConfig(), upper{})
	assert.Equal(t, "UP:text", r.Render(&source.Line{Content: []byte("text")}))
}

func TestSyntaxRendererUsesTeXLexer(t *testing.T) {
	r := NewSyntaxRenderer("no-such-theme")
	assert.Equal(t, "TeX", r.Lexer())
	assert.Equal(t, "monokai", r.syntaxTheme)

	out := r.Render(&source.Line{Content: []byte(`l.20 \section{Intro}`)})
	assert.Contains(t, out, `\section`)
	assert.NotContains(t, out, "\n")

	assert.Empty(t, r.Highlight(""))
}

func TestHighlightBlockKeepsLines(t *testing.T) {
	r := NewSyntaxRenderer("monokai")
	out := r.HighlightBlock("l.3 \\foo\n\nhelp text")
	assert.Len(t, strings.Split(out, "\n"), 3)
}
