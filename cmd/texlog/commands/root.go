package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TimelordUK/texlog/internal/config"
	"github.com/TimelordUK/texlog/internal/logger"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

// ExitError carries a process exit code without printing anything more
type ExitError struct {
	Code   int
	Reason string
}

func (e *ExitError) Error() string {
	return e.Reason
}

type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "texlog",
		Short: "Read TeX and LaTeX transcripts",
		Long: `texlog turns the .log transcript written by TeX engines into a list of
diagnostics: errors, warnings and typesetting (over/underfull box) notices,
each with its source file and line where the transcript names them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", fmt.Sprintf("Path to configuration file (default: %s)", config.GetConfigPath()))
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")

	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newViewCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())

	root.CompletionOptions.DisableDescriptions = true
	return root
}

// load reads the config and sets up logging. The viewer owns the terminal,
// so it only logs to a file.
func (o *rootOptions) load(cmd *cobra.Command) error {
	// "config init" creates the file the other commands insist on.
	mustExist := cmd.Parent() == nil || cmd.Parent().Name() != "config"

	var err error
	if o.configPath != "" {
		if _, statErr := os.Stat(o.configPath); statErr != nil && mustExist {
			return fmt.Errorf("config: %w", statErr)
		}
		o.cfg, err = config.LoadFrom(o.configPath)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if o.logLevel != "" {
		o.cfg.Logging.Level = o.logLevel
	}
	logger.Init(o.cfg.Logging, cmd.Name() != "view")

	ctx := logger.WithContext(cmd.Context(), logger.Get(nil))
	cmd.SetContext(ctx)
	return nil
}

// parser builds a parser from the loaded config
func (o *rootOptions) parser() *texlog.Parser {
	return texlog.NewParser(texlog.WithWrapWidth(o.cfg.Parser.WrapWidth))
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Reason != "" {
				fmt.Fprintln(os.Stderr, exitErr.Reason)
			}
			return exitErr.Code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
