package commands

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/TimelordUK/texlog/internal/filter"
	"github.com/TimelordUK/texlog/internal/logger"
	"github.com/TimelordUK/texlog/internal/render"
	"github.com/TimelordUK/texlog/internal/report"
	"github.com/TimelordUK/texlog/internal/source"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

type parseOptions struct {
	minLevel  string
	format    string
	where     string
	output    string
	summary   bool
	jobs      int
	failOn    string
	content   bool
	color     string
	wrapWidth int
}

func newParseCmd(root *rootOptions) *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file.log ...|-]",
		Short: "Print the diagnostics of one or more transcripts",
		Long: `Parse transcripts and print their diagnostics. With no file, or "-",
the transcript is read from standard input.`,
		Example: `  texlog parse main.log
  texlog parse --min-level warning --format json build/*.log
  texlog parse --where 'AtLeast("warning") && File endsWith "ch1.tex"' main.log
  pdflatex -interaction=nonstopmode main.tex | texlog parse --fail-on error -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, root, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.minLevel, "min-level", "l", "", "Only show diagnostics at or above this level (default from config)")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: text, json or yaml (default from config)")
	flags.StringVarP(&opts.where, "where", "w", "", "Only show diagnostics matching this expression")
	flags.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	flags.BoolVarP(&opts.summary, "summary", "s", false, "Include the run summary")
	flags.IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "Transcripts parsed in parallel")
	flags.StringVar(&opts.failOn, "fail-on", "", "Exit with status 2 when a diagnostic at or above this level exists")
	flags.BoolVar(&opts.content, "content", false, "Show the error context TeX printed (text format)")
	flags.StringVar(&opts.color, "color", "", "Color text output: auto, on or off (default from config)")
	flags.IntVar(&opts.wrapWidth, "wrap-width", -1, "Column at which the engine wrapped lines; 0 disables unwrapping (default from config)")
	return cmd
}

type parsed struct {
	log    string
	result texlog.Result
}

func runParse(cmd *cobra.Command, root *rootOptions, opts *parseOptions, args []string) error {
	cfg := root.cfg
	log := logger.Get(cmd.Context())

	minLevel := cfg.Parser.MinLevel
	if opts.minLevel != "" {
		level, err := texlog.ParseLevel(opts.minLevel)
		if err != nil {
			return fmt.Errorf("--min-level: %w", err)
		}
		minLevel = level
	}

	var failOn *texlog.Level
	if opts.failOn != "" {
		level, err := texlog.ParseLevel(opts.failOn)
		if err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
		failOn = &level
	}

	formatName := cfg.Output.Format
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return fmt.Errorf("--format: %w", err)
	}

	var where *filter.Expression
	if opts.where != "" {
		if where, err = filter.Compile(opts.where); err != nil {
			return err
		}
	}

	if opts.wrapWidth >= 0 {
		cfg.Parser.WrapWidth = opts.wrapWidth
	}
	parser := root.parser()

	if len(args) == 0 {
		args = []string{"-"}
	}
	results, err := parseAll(cmd, parser, args, opts.jobs)
	if err != nil {
		return err
	}

	reports := make([]report.Report, 0, len(results))
	failed := false
	for _, p := range results {
		diags := p.result.Diagnostics
		if failOn != nil && len(texlog.Filter(diags, *failOn)) > 0 {
			failed = true
		}

		diags = texlog.Filter(diags, minLevel)
		if diags, err = filter.Apply(diags, where); err != nil {
			return err
		}
		log.Debugw("parsed", "log", p.log, "diagnostics", len(p.result.Diagnostics), "shown", len(diags))
		reports = append(reports, report.New(p.log, diags, p.result.Summary, opts.summary))
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	colorMode := cfg.Output.Color
	if opts.color != "" {
		colorMode = opts.color
	}
	writeOpts := report.Options{
		Format:  format,
		Content: opts.content || cfg.Output.ShowContent,
	}
	if format == report.FormatText && useColor(colorMode, out) {
		writeOpts.Styles = render.LevelStyles(cfg.Theme)
	}

	if err := report.Write(out, reports, writeOpts); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if failed {
		return &ExitError{Code: 2, Reason: fmt.Sprintf("found diagnostics at level %s or above", *failOn)}
	}
	return nil
}

// parseAll parses every transcript, at most jobs at a time, and returns the
// results in argument order
func parseAll(cmd *cobra.Command, parser *texlog.Parser, paths []string, jobs int) ([]parsed, error) {
	results := make([]parsed, len(paths))
	log := logger.Get(cmd.Context())

	g, _ := errgroup.WithContext(cmd.Context())
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			start := time.Now()
			var err error
			if path == "-" {
				results[i], err = parseStdin(cmd.InOrStdin(), parser)
			} else {
				results[i], err = parseFile(path, parser)
			}
			if err != nil {
				return err
			}
			log.Debugw("transcript parsed", "log", path, "elapsed", time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseFile(path string, parser *texlog.Parser) (parsed, error) {
	src, err := source.NewFileSource(path, parser)
	if err != nil {
		return parsed{}, fmt.Errorf("open transcript: %w", err)
	}
	defer src.Close()
	return parsed{log: path, result: src.Result()}, nil
}

func parseStdin(r io.Reader, parser *texlog.Parser) (parsed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return parsed{}, fmt.Errorf("read stdin: %w", err)
	}
	return parsed{log: "-", result: parser.ParseRun(string(data))}, nil
}

// useColor resolves auto against the output being a terminal
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "on":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return true
	case "off":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
