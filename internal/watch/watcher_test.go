package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TimelordUK/texlog/pkg/texlog"
)

const firstRun = `This is pdfTeX, Version 3.141592653-2.6-1.40.25 (TeX Live 2023) (preloaded format=pdflatex)
(./main.tex
LaTeX Warning: Reference ` + "`a'" + ` on page 1 undefined on input line 4.

LaTeX Warning: Reference ` + "`b'" + ` on page 1 undefined on input line 9.

)
`

const secondRun = `This is pdfTeX, Version 3.141592653-2.6-1.40.25 (TeX Live 2023) (preloaded format=pdflatex)
(./main.tex
! Undefined control sequence.
l.7 \bogus
          

)
`

type countingRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *countingRecorder) Record(path string, _ []texlog.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[path]++
}

func (r *countingRecorder) count(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[path]
}

func waitFor(t *testing.T, w *Watcher, cond func(Update) bool) Update {
	t.Helper()
	timeout := time.After(10 * time.Second)
	for {
		select {
		case u, ok := <-w.Updates():
			require.True(t, ok, "updates closed")
			if cond(u) {
				return u
			}
		case <-timeout:
			t.Fatal("timed out waiting for update")
		}
	}
}

func TestNewRequiresPaths(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}

func TestWatcherParsesAndResetsOnNewRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.log")
	require.NoError(t, os.WriteFile(path, []byte(firstRun), 0644))

	rec := &countingRecorder{calls: map[string]int{}}
	w, err := New(context.Background(), []string{path}, WithPollInterval(20), WithRecorder(rec))
	require.NoError(t, err)
	assert.Equal(t, 1, w.LogCount())
	w.Run()
	defer w.Close()

	u := waitFor(t, w, func(u Update) bool { return len(u.Diagnostics) == 2 })
	assert.Equal(t, path, u.Path)
	assert.Equal(t, 1, u.Run)
	assert.Equal(t, "pdfTeX", u.Summary.Engine)
	assert.Equal(t, texlog.LevelWarning, u.Diagnostics[0].Level)

	// The engine runs again and the transcript gains a second banner.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(secondRun)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	u = waitFor(t, w, func(u Update) bool { return u.Run == 2 && len(u.Diagnostics) == 1 })
	assert.Equal(t, texlog.LevelError, u.Diagnostics[0].Level)
	assert.Equal(t, 7, *u.Diagnostics[0].Line)
	assert.GreaterOrEqual(t, rec.count(path), 2)
}

func TestWatcherPicksUpLateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "late.log")

	w, err := New(context.Background(), []string{path}, WithPollInterval(20))
	require.NoError(t, err)
	w.Run()
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(firstRun), 0644))
	u := waitFor(t, w, func(u Update) bool { return len(u.Diagnostics) == 2 })
	assert.Equal(t, path, u.Path)
}

func TestCloseClosesUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.log")
	require.NoError(t, os.WriteFile(path, []byte(firstRun), 0644))

	w, err := New(context.Background(), []string{path}, WithPollInterval(20))
	require.NoError(t, err)
	w.Run()
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	for range w.Updates() {
	}
}
