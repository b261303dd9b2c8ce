package texlog

import "regexp"

var (
	filePathStartRe = regexp.MustCompile(`^/?([^ ()\\]+/)+`)
	filePathEndRe   = regexp.MustCompile(`[ )]`)
	extensionRe     = regexp.MustCompile(`\.\w+$`)
	bracketAheadRe  = regexp.MustCompile(`^\s*["()\[\]]`)
	nextPathEndRe   = regexp.MustCompile(`[ "()\[\]]`)
)

// FileEntry is a source file opened during a run, with the files it
// opened in turn.
type FileEntry struct {
	Path     string       `json:"path" yaml:"path"`
	Children []*FileEntry `json:"children,omitempty" yaml:"children,omitempty"`
}

// fileTracker follows the "(path" and ")" markers TeX prints as it opens
// and closes input files.
type fileTracker struct {
	stack []*FileEntry
	roots []*FileEntry
	// openParens counts "(" that did not introduce a path.
	openParens int
}

func newFileTracker() *fileTracker {
	return &fileTracker{}
}

// current returns the innermost open file.
func (t *fileTracker) current() (string, bool) {
	if len(t.stack) == 0 {
		return "", false
	}
	return t.stack[len(t.stack)-1].Path, true
}

func (t *fileTracker) currentPtr() *string {
	if path, ok := t.current(); ok {
		return strPtr(path)
	}
	return nil
}

func (t *fileTracker) depth() int {
	return len(t.stack)
}

// scan walks one logical line marker by marker.
func (t *fileTracker) scan(line string) {
	rest := line
	for {
		i := nextMarker(rest)
		if i < 0 {
			return
		}
		token := rest[i]
		rest = rest[i+1:]

		if token == '(' {
			path, remaining, ok := consumeFilePath(rest)
			if !ok {
				t.openParens++
				continue
			}
			t.open(path)
			rest = remaining
			continue
		}
		t.close()
	}
}

func (t *fileTracker) open(path string) {
	entry := &FileEntry{Path: path}
	if len(t.stack) == 0 {
		t.roots = append(t.roots, entry)
	} else {
		parent := t.stack[len(t.stack)-1]
		parent.Children = append(parent.Children, entry)
	}
	t.stack = append(t.stack, entry)
}

func (t *fileTracker) close() {
	if t.openParens > 0 {
		t.openParens--
		return
	}
	// The outermost file stays open for the rest of the run.
	if len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// nextMarker returns the index of the first "(" or ")" not preceded by a
// backslash, or -1.
func nextMarker(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != '(' && s[i] != ')' {
			continue
		}
		if i > 0 && s[i-1] == '\\' {
			continue
		}
		return i
	}
	return -1
}

// consumeFilePath reads a path from the start of s. TeX does not quote
// paths, so a space only ends the path once the text before it looks like a
// finished file name or the text after it opens a new bracketed token.
func consumeFilePath(s string) (path, rest string, ok bool) {
	if !filePathStartRe.MatchString(s) {
		return "", s, false
	}

	end := indexOf(filePathEndRe, s)
	for end != -1 && s[end] == ' ' {
		if extensionRe.MatchString(s[:end]) {
			break
		}
		remaining := s[end+1:]
		if bracketAheadRe.MatchString(remaining) {
			break
		}
		next := indexOf(nextPathEndRe, remaining)
		if next == -1 {
			end = -1
		} else {
			end += next + 1
		}
	}

	if end == -1 {
		return s, "", true
	}
	return s[:end], s[end:], true
}

func indexOf(re *regexp.Regexp, s string) int {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return -1
	}
	return loc[0]
}
