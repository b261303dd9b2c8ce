package texlog

import (
	"regexp"
	"strconv"
)

var (
	bannerRe   = regexp.MustCompile(`^This is (\S+), Version (\S+)`)
	outputRe   = regexp.MustCompile(`^Output written on (.+) \((\d+) pages?, (\d+) bytes\)\.`)
	noOutputRe = regexp.MustCompile(`^No pages of output\.`)
	rerunRe    = regexp.MustCompile(`Rerun to get|Label\(s\) may have changed|Please rerun LaTeX|Please \(re\)run`)
)

// Summary describes the outcome of a run as reported at the end of the
// transcript.
type Summary struct {
	Engine     string `json:"engine,omitempty" yaml:"engine,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	Pages      int    `json:"pages" yaml:"pages"`
	Bytes      int64  `json:"bytes" yaml:"bytes"`
	NoOutput   bool   `json:"no_output" yaml:"no_output"`
	NeedsRerun bool   `json:"needs_rerun" yaml:"needs_rerun"`
}

// HasOutput reports whether the run wrote an output file.
func (s Summary) HasOutput() bool {
	return s.OutputFile != ""
}

// Summarize extracts the run summary from text with default options.
func Summarize(text string) Summary {
	return NewParser().Summarize(text)
}

func summarize(lines []string) Summary {
	var s Summary
	for _, line := range lines {
		if m := bannerRe.FindStringSubmatch(line); m != nil && s.Engine == "" {
			s.Engine = m[1]
			s.Version = m[2]
			continue
		}
		if m := outputRe.FindStringSubmatch(line); m != nil {
			s.OutputFile = m[1]
			s.Pages, _ = strconv.Atoi(m[2])
			s.Bytes, _ = strconv.ParseInt(m[3], 10, 64)
			continue
		}
		if noOutputRe.MatchString(line) {
			s.NoOutput = true
			continue
		}
		if rerunRe.MatchString(line) {
			s.NeedsRerun = true
		}
	}
	return s
}
