package texlog

import "regexp"

var (
	blankLineRe  = regexp.MustCompile(`^\s*$`)
	errorStartRe = regexp.MustCompile(`^! `)
)

// cursor reads logical lines front to back with a single step of rewind.
type cursor struct {
	log *logText
	pos int
}

func newCursor(log *logText) *cursor {
	return &cursor{log: log, pos: -1}
}

// advance moves to the next line. It returns false once input is exhausted.
func (c *cursor) advance() (string, bool) {
	if c.pos+1 >= len(c.log.lines) {
		c.pos = len(c.log.lines)
		return "", false
	}
	c.pos++
	return c.log.lines[c.pos], true
}

// rewind un-consumes the line returned by the last advance.
func (c *cursor) rewind() {
	if c.pos >= 0 {
		c.pos--
	}
}

// physicalLine returns the 1-based transcript line of the current position.
func (c *cursor) physicalLine() int {
	if c.pos < 0 || c.pos >= len(c.log.starts) {
		return 0
	}
	return c.log.starts[c.pos] + 1
}

// collectUntilMatch gathers lines up to and including the first one matching
// pattern. With stopAtError set, a line opening a new "! " error ends the
// collection without being consumed.
func (c *cursor) collectUntilMatch(pattern *regexp.Regexp, stopAtError bool) []string {
	var lines []string
	for {
		line, ok := c.advance()
		if !ok {
			break
		}
		if stopAtError && errorStartRe.MatchString(line) {
			c.rewind()
			break
		}
		lines = append(lines, line)
		if pattern.MatchString(line) {
			break
		}
	}
	return lines
}

// collectUntilBlank gathers lines up to and including the next blank one.
func (c *cursor) collectUntilBlank(stopAtError bool) []string {
	return c.collectUntilMatch(blankLineRe, stopAtError)
}
