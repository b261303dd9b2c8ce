package texlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOrder(t *testing.T) {
	for i := 1; i < len(Levels); i++ {
		assert.Less(t, Levels[i-1], Levels[i], "%s should sort before %s", Levels[i-1], Levels[i])
	}
	assert.True(t, LevelError.AtLeast(LevelWarning))
	assert.True(t, LevelTypesetting.AtLeast(LevelTypesetting))
	assert.False(t, LevelInfo.AtLeast(LevelTypesetting))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Typesetting", LevelTypesetting},
		{"box", LevelTypesetting},
		{"warn", LevelWarning},
		{"warning", LevelWarning},
		{" error ", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}

	_, err := ParseLevel("fatal")
	assert.Error(t, err)
}

func TestLevelText(t *testing.T) {
	for _, l := range Levels {
		text, err := l.MarshalText()
		require.NoError(t, err)

		var back Level
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, l, back)
	}

	_, err := Level(42).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "level(42)", Level(42).String())
}

func TestFilter(t *testing.T) {
	diags := Parse(mixedLog)
	require.NotEmpty(t, diags)

	for _, min := range Levels {
		filtered := Filter(diags, min)

		var want []Diagnostic
		for _, d := range diags {
			if d.Level >= min {
				want = append(want, d)
			}
		}
		assert.Len(t, filtered, len(want), "min=%s", min)
		for i := range want {
			assert.Equal(t, want[i], filtered[i])
		}
		assert.Equal(t, filtered, Filter(filtered, min), "filtering twice by %s", min)
	}
}

func TestFilterKeepsInput(t *testing.T) {
	diags := []Diagnostic{
		{Level: LevelWarning, Message: "a", Raw: "a\n"},
		{Level: LevelTypesetting, Message: "b", Raw: "b\n"},
		{Level: LevelError, Message: "c", Raw: "c\n"},
	}
	filtered := Filter(diags, LevelWarning)

	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].Message)
	assert.Equal(t, "c", filtered[1].Message)
	assert.Equal(t, "b", diags[1].Message)
}

func TestCount(t *testing.T) {
	counts := Count(Parse(mixedLog))
	assert.Equal(t, 1, counts[LevelError])
	assert.Equal(t, 2, counts[LevelWarning])
	assert.Equal(t, 1, counts[LevelTypesetting])
	assert.Equal(t, 0, counts[LevelDebug])
}
