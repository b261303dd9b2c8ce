package texlog

import (
	"strings"
	"unicode/utf8"
)

// DefaultWrapWidth is TeX's default max_print_line.
const DefaultWrapWidth = 79

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// logText is a transcript split into logical lines.
type logText struct {
	lines []string
	// starts[i] is the physical line index where logical line i begins.
	starts []int
}

// normalize converts CRLF and bare CR line endings to LF.
func normalize(text string) string {
	return lineEndings.Replace(text)
}

// reconstruct undoes TeX's hard wrapping. A physical line is glued onto the
// previous logical line when the previous physical line is exactly wrapWidth
// characters long, does not end in "...", and the line itself does not start
// a new error with "!".
func reconstruct(text string, wrapWidth int) *logText {
	physical := strings.Split(normalize(text), "\n")

	lt := &logText{
		lines:  make([]string, 0, len(physical)),
		starts: make([]int, 0, len(physical)),
	}
	lt.lines = append(lt.lines, physical[0])
	lt.starts = append(lt.starts, 0)

	for i := 1; i < len(physical); i++ {
		prev := physical[i-1]
		cur := physical[i]
		if isWrapped(prev, cur, wrapWidth) {
			lt.lines[len(lt.lines)-1] += cur
			continue
		}
		lt.lines = append(lt.lines, cur)
		lt.starts = append(lt.starts, i)
	}
	return lt
}

func isWrapped(prev, cur string, wrapWidth int) bool {
	if wrapWidth <= 0 {
		return false
	}
	return utf8.RuneCountInString(prev) == wrapWidth &&
		!strings.HasSuffix(prev, "...") &&
		!strings.HasPrefix(cur, "!")
}

// Lines returns the logical lines of a transcript using the given wrap width.
func Lines(text string, wrapWidth int) []string {
	return reconstruct(text, wrapWidth).lines
}
