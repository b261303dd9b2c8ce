package texlog

import (
	"regexp"
	"strconv"
	"strings"
)

// fatalBanner closes a run that produced no output. It starts with "!" but
// repeats an error already reported.
const fatalBanner = "!  ==> Fatal error occurred, no output PDF file produced!"

var (
	fileLineErrorRe  = regexp.MustCompile(`^([./].*):(\d+): (.*)$`)
	runawayRe        = regexp.MustCompile(`^Runaway argument`)
	latexWarningRe   = regexp.MustCompile(`^LaTeX(?:3| Font)? Warning: (.*)$`)
	boxWarningRe     = regexp.MustCompile(`^(Over|Under)full \\(v|h)box`)
	packageWarningRe = regexp.MustCompile(`^((?:Package|Class|Module) \b.+\b Warning:.*)$`)
	packageNameRe    = regexp.MustCompile(`^(?:Package|Class|Module) (\b.+?\b) Warning`)
	linesRe          = regexp.MustCompile(`lines? (\d+)`)
	contextMarkerRe  = regexp.MustCompile(`^l\.\d+`)
	contextLineRe    = regexp.MustCompile(`l\.(\d+)`)
)

// classifier recognises one kind of event. parse is called with the line
// that matched and may consume further lines through the cursor.
type classifier struct {
	name  string
	match func(line string) bool
	parse func(p *pass, line string)
}

// classifiers are tried in order; the first match wins. The last entry
// accepts every line.
var classifiers = []classifier{
	{name: "fatal-error", match: isFatalError, parse: (*pass).parseFatalError},
	{name: "file-line-error", match: fileLineErrorRe.MatchString, parse: (*pass).parseFileLineError},
	{name: "runaway-argument", match: runawayRe.MatchString, parse: (*pass).parseRunawayArgument},
	{name: "latex-warning", match: latexWarningRe.MatchString, parse: (*pass).parseLatexWarning},
	{name: "box-warning", match: boxWarningRe.MatchString, parse: (*pass).parseBoxWarning},
	{name: "package-warning", match: packageWarningRe.MatchString, parse: (*pass).parsePackageWarning},
	{name: "file-context", match: func(string) bool { return true }, parse: (*pass).scanFiles},
}

func isFatalError(line string) bool {
	return strings.HasPrefix(line, "!") && line != fatalBanner
}

func (p *pass) parseFatalError(line string) {
	d := p.newDiagnostic(LevelError, strings.TrimSpace(strings.TrimPrefix(line, "!")), line)
	p.captureErrorContext(&d)
	p.emit(d)
}

func (p *pass) parseFileLineError(line string) {
	m := fileLineErrorRe.FindStringSubmatch(line)
	d := p.newDiagnostic(LevelError, m[3], line)
	d.File = strPtr(m[1])
	if n, err := strconv.Atoi(m[2]); err == nil {
		d.Line = intPtr(n)
	}
	p.captureErrorContext(&d)
	p.emit(d)
}

// captureErrorContext appends what TeX prints after an error banner: the
// lines up to the "l.<N>" marker, then two blank-terminated blocks. A new
// "! " error ends any block early.
func (p *pass) captureErrorContext(d *Diagnostic) {
	blocks := []string{
		strings.Join(p.cur.collectUntilMatch(contextMarkerRe, true), "\n"),
		strings.Join(p.cur.collectUntilBlank(true), "\n"),
		strings.Join(p.cur.collectUntilBlank(true), "\n"),
	}
	content := strings.Join(blocks, "\n")
	d.Content = strPtr(content)
	d.Raw += content
	if d.Line == nil {
		d.Line = findNumber(contextLineRe, d.Raw)
	}
}

func (p *pass) parseRunawayArgument(line string) {
	d := p.newDiagnostic(LevelError, line, line)
	first := p.cur.collectUntilBlank(true)
	second := p.cur.collectUntilBlank(true)
	d.Raw += strings.Join(first, "\n") + "\n" + strings.Join(second, "\n")
	d.Line = findNumber(contextLineRe, d.Raw)
	p.emit(d)
}

func (p *pass) parseLatexWarning(line string) {
	m := latexWarningRe.FindStringSubmatch(line)
	d := p.newDiagnostic(LevelWarning, m[1], line)
	d.Line = findNumber(linesRe, m[1])
	p.emit(d)
}

func (p *pass) parseBoxWarning(line string) {
	d := p.newDiagnostic(LevelTypesetting, line, line)
	d.Line = findNumber(linesRe, line)
	p.emit(d)
}

// parsePackageWarning reads a \PackageWarning, \ClassWarning or LaTeX3
// module warning. Continuation lines are prefixed with the name in
// parentheses; the first line without that prefix ends the warning and is
// left for the next dispatch.
func (p *pass) parsePackageWarning(line string) {
	name := packageNameRe.FindStringSubmatch(line)[1]
	continuation := regexp.MustCompile(`(?i)^\(` + regexp.QuoteMeta(name) + `\)\s*(.*)$`)

	fragments := []string{strings.TrimSpace(line)}
	d := p.newDiagnostic(LevelWarning, "", line)
	d.Line = findNumber(linesRe, line)

	for {
		next, ok := p.cur.advance()
		if !ok {
			break
		}
		m := continuation.FindStringSubmatch(next)
		if m == nil {
			p.cur.rewind()
			break
		}
		fragments = append(fragments, strings.TrimSpace(m[1]))
		d.Raw += next + "\n"
		if n := findNumber(linesRe, next); n != nil {
			d.Line = n
		}
	}

	d.Message = strings.Join(fragments, " ")
	p.emit(d)
}

func (p *pass) scanFiles(line string) {
	p.files.scan(line)
}

// findNumber returns the first capture of re in s as an int.
func findNumber(re *regexp.Regexp, s string) *int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return intPtr(n)
}
