package texlog

import (
	"fmt"
	"strings"
)

// Level represents a diagnostic severity. Levels are ordered by declaration,
// so comparisons use the enumeration position.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelTypesetting
	LevelWarning
	LevelError
)

// Levels lists every level from least to most severe.
var Levels = []Level{LevelDebug, LevelInfo, LevelTypesetting, LevelWarning, LevelError}

var levelNames = map[Level]string{
	LevelDebug:       "debug",
	LevelInfo:        "info",
	LevelTypesetting: "typesetting",
	LevelWarning:     "warning",
	LevelError:       "error",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// AtLeast reports whether l is as severe as min or more.
func (l Level) AtLeast(min Level) bool {
	return l >= min
}

// ParseLevel converts a level name to a Level. Matching is case-insensitive
// and "warn" is accepted for LevelWarning.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "typesetting", "box":
		return LevelTypesetting, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	}
	return LevelDebug, fmt.Errorf("unknown level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Filter returns the diagnostics whose level is min or above, in their
// original order. The input slice is left untouched.
func Filter(diags []Diagnostic, min Level) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d.Level.AtLeast(min) {
			out = append(out, d)
		}
	}
	return out
}

// Count tallies diagnostics per level.
func Count(diags []Diagnostic) map[Level]int {
	counts := make(map[Level]int, len(Levels))
	for _, l := range Levels {
		counts[l] = 0
	}
	for _, d := range diags {
		counts[d.Level]++
	}
	return counts
}
