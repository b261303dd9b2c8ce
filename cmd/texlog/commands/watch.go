package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TimelordUK/texlog/internal/logger"
	"github.com/TimelordUK/texlog/internal/metrics"
	"github.com/TimelordUK/texlog/internal/report"
	"github.com/TimelordUK/texlog/internal/watch"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

type watchOptions struct {
	minLevel    string
	format      string
	pollMs      int
	metricsAddr string
	maxUpdates  int
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file.log> [file.log ...]",
		Short: "Follow transcripts and print diagnostics after every change",
		Long: `Follow transcripts while TeX writes them. The diagnostics of a transcript
are printed again whenever it grows; a new engine run starts a fresh list.
With --metrics-addr the latest counts are served for Prometheus on /metrics.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.minLevel, "min-level", "l", "", "Only show diagnostics at or above this level")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: text, json or yaml")
	flags.IntVar(&opts.pollMs, "poll", 0, "Poll interval in milliseconds (default from config)")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9310")
	flags.IntVar(&opts.maxUpdates, "max-updates", 0, "Exit after this many updates (0 runs until interrupted)")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions, args []string) error {
	cfg := root.cfg

	minLevel := cfg.Parser.MinLevel
	if opts.minLevel != "" {
		level, err := texlog.ParseLevel(opts.minLevel)
		if err != nil {
			return fmt.Errorf("--min-level: %w", err)
		}
		minLevel = level
	}

	formatName := cfg.Output.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return fmt.Errorf("--format: %w", err)
	}

	pollMs := cfg.Watch.PollMs
	if opts.pollMs > 0 {
		pollMs = opts.pollMs
	}
	metricsAddr := cfg.Watch.MetricsAddr
	if opts.metricsAddr != "" {
		metricsAddr = opts.metricsAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := logger.Get(ctx)

	watchOpts := []watch.Option{
		watch.WithParser(root.parser()),
		watch.WithPollInterval(pollMs),
	}
	var m *metrics.Metrics
	if metricsAddr != "" {
		m = metrics.New()
		watchOpts = append(watchOpts, watch.WithRecorder(m))
	}

	w, err := watch.New(ctx, args, watchOpts...)
	if err != nil {
		return err
	}
	defer w.Close()

	g, ctx := errgroup.WithContext(ctx)
	if m != nil {
		g.Go(func() error { return m.Serve(ctx, metricsAddr) })
	}

	w.Run()
	log.Infow("watching", "logs", len(args), "poll_ms", pollMs)

	g.Go(func() error {
		defer cancel()
		seen := 0
		for {
			select {
			case <-ctx.Done():
				return nil
			case u, ok := <-w.Updates():
				if !ok {
					return nil
				}
				r := report.New(u.Path, texlog.Filter(u.Diagnostics, minLevel), u.Summary, true)
				if err := report.Write(cmd.OutOrStdout(), []report.Report{r}, report.Options{Format: format}); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				seen++
				if opts.maxUpdates > 0 && seen >= opts.maxUpdates {
					return nil
				}
			}
		}
	})

	return g.Wait()
}
