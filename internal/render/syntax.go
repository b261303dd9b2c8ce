package render

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/TimelordUK/texlog/internal/source"
)

// SyntaxRenderer highlights TeX source quoted in transcripts, such as the
// "l.<N>" context TeX prints after an error
type SyntaxRenderer struct {
	lexerName   string
	syntaxTheme string
}

// NewSyntaxRenderer creates a TeX highlighting renderer. Unknown themes
// fall back to monokai.
func NewSyntaxRenderer(theme string) *SyntaxRenderer {
	lexerName := "plaintext"
	if lexer := lexers.Get("tex"); lexer != nil {
		lexerName = lexer.Config().Name
	}
	if _, ok := styles.Registry[theme]; !ok {
		theme = "monokai"
	}
	return &SyntaxRenderer{
		lexerName:   lexerName,
		syntaxTheme: theme,
	}
}

// Lexer returns the name of the lexer in use
func (r *SyntaxRenderer) Lexer() string {
	return r.lexerName
}

// Render applies syntax highlighting to a line
func (r *SyntaxRenderer) Render(line *source.Line) string {
	return r.Highlight(string(line.Content))
}

// Highlight highlights a single line of text
func (r *SyntaxRenderer) Highlight(content string) string {
	if content == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, content, r.lexerName, "terminal256", r.syntaxTheme); err != nil {
		return content
	}

	// Remove any newlines that quick.Highlight adds
	highlighted := strings.ReplaceAll(buf.String(), "\n", "")
	return strings.ReplaceAll(highlighted, "\r", "")
}

// HighlightBlock highlights multi-line text line by line
func (r *SyntaxRenderer) HighlightBlock(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = r.Highlight(line)
	}
	return strings.Join(lines, "\n")
}
