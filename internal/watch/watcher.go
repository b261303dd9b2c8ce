// Package watch follows transcripts while the engine writes them and
// re-parses them as they grow.
package watch

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/nxadm/tail"

	"github.com/TimelordUK/texlog/internal/logger"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// runBannerRe is the first line of every engine run.
var runBannerRe = regexp.MustCompile(`^This is \S+, Version `)

// Update carries the diagnostics of a transcript after it changed
type Update struct {
	Path        string
	Diagnostics []texlog.Diagnostic
	Summary     texlog.Summary
	// Run counts the engine runs seen in this transcript, starting at 1
	Run int
}

// Recorder receives every parse result, e.g. for metrics
type Recorder interface {
	Record(path string, diags []texlog.Diagnostic)
}

// logWatcher tracks a single transcript
type logWatcher struct {
	tail  *tail.Tail
	path  string
	name  string // Display name (basename)
	lines []string
	runs  int
	dirty bool
}

// Watcher tails transcripts and emits an Update for each one that changed
// since the last poll
type Watcher struct {
	logs     []*logWatcher
	parser   *texlog.Parser
	recorder Recorder
	pollMs   int // Poll interval in milliseconds
	updates  chan Update

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Watcher
type Option func(*Watcher)

// WithParser sets the parser used on each poll
func WithParser(p *texlog.Parser) Option {
	return func(w *Watcher) { w.parser = p }
}

// WithPollInterval sets the poll interval in milliseconds
func WithPollInterval(ms int) Option {
	return func(w *Watcher) {
		if ms > 0 {
			w.pollMs = ms
		}
	}
}

// WithRecorder reports every parse to r
func WithRecorder(r Recorder) Option {
	return func(w *Watcher) { w.recorder = r }
}

// New starts tailing paths from their beginning. Files that do not exist
// yet are picked up once the engine creates them.
func New(ctx context.Context, paths []string, opts ...Option) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no transcripts to watch")
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &Watcher{
		parser: texlog.NewParser(),
		pollMs: 250,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, path := range paths {
		t, err := tail.TailFile(path, tail.Config{
			Location:      &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
			Follow:        true,
			ReOpen:        true,
			Poll:          true,
			CompleteLines: true,
			Logger:        tail.DiscardingLogger,
		})
		if err != nil {
			for _, lw := range w.logs {
				lw.tail.Stop()
				lw.tail.Cleanup()
			}
			cancel()
			return nil, fmt.Errorf("failed to tail %s: %w", path, err)
		}
		w.logs = append(w.logs, &logWatcher{
			tail: t,
			path: path,
			name: filepath.Base(path),
		})
	}

	w.updates = make(chan Update, len(w.logs))
	return w, nil
}

// Updates returns the channel updates are delivered on. It is closed by Close.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Run starts reading the tails and the polling loop. It returns at once.
func (w *Watcher) Run() {
	for _, lw := range w.logs {
		w.wg.Add(1)
		go w.follow(lw)
	}

	w.wg.Add(1)
	go w.loop()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(time.Duration(w.pollMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// follow appends the lines of one tail to its buffer
func (w *Watcher) follow(lw *logWatcher) {
	defer w.wg.Done()
	log := logger.Get(w.ctx)

	for {
		select {
		case <-w.ctx.Done():
			return
		case line, ok := <-lw.tail.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				log.Warnw("tail error", "log", lw.name, "error", line.Err)
				continue
			}
			w.append(lw, line.Text)
		}
	}
}

func (w *Watcher) append(lw *logWatcher, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A new engine run rewrites the transcript from its banner.
	if runBannerRe.MatchString(text) {
		if len(lw.lines) > 0 {
			logger.Get(w.ctx).Debugw("new run", "log", lw.name, "previous_lines", len(lw.lines))
		}
		lw.lines = lw.lines[:0]
		lw.runs++
	}
	if lw.runs == 0 {
		lw.runs = 1
	}
	lw.lines = append(lw.lines, text)
	lw.dirty = true
}

// poll parses every transcript that changed and sends its update
func (w *Watcher) poll() {
	for _, u := range w.collect() {
		if w.recorder != nil {
			w.recorder.Record(u.Path, u.Diagnostics)
		}
		select {
		case w.updates <- u:
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Watcher) collect() []Update {
	w.mu.Lock()
	defer w.mu.Unlock()

	var updates []Update
	for _, lw := range w.logs {
		if !lw.dirty {
			continue
		}
		lw.dirty = false

		res := w.parser.ParseRun(strings.Join(lw.lines, "\n") + "\n")
		logger.Get(w.ctx).Debugw("parsed", "log", lw.name, "lines", len(lw.lines), "diagnostics", len(res.Diagnostics))
		updates = append(updates, Update{
			Path:        lw.path,
			Diagnostics: res.Diagnostics,
			Summary:     res.Summary,
			Run:         lw.runs,
		})
	}
	return updates
}

// LogCount returns the number of watched transcripts
func (w *Watcher) LogCount() int {
	return len(w.logs)
}

// Close stops the tails, waits for the goroutines and closes Updates
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		// Signal stop
		w.cancel()

		for _, lw := range w.logs {
			if stopErr := lw.tail.Stop(); stopErr != nil && err == nil {
				err = stopErr
			}
			lw.tail.Cleanup()
		}

		// Wait for goroutines to finish
		w.wg.Wait()
		close(w.updates)
	})
	return err
}
