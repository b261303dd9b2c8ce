package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/TimelordUK/texlog/internal/ui"
	"github.com/TimelordUK/texlog/pkg/texlog"
)

func newViewCmd(root *rootOptions) *cobra.Command {
	var (
		follow   bool
		minLevel string
	)

	cmd := &cobra.Command{
		Use:   "view <file.log>",
		Short: "Browse the diagnostics of a transcript interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			if minLevel != "" {
				level, err := texlog.ParseLevel(minLevel)
				if err != nil {
					return fmt.Errorf("--min-level: %w", err)
				}
				cfg.Parser.MinLevel = level
			}

			model, err := ui.NewModelWithOptions(ui.ModelOptions{
				Filepath: args[0],
				Config:   cfg,
				Follow:   follow,
			})
			if err != nil {
				return err
			}
			defer model.Close()

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "F", false, "Re-read the transcript while the engine writes it")
	cmd.Flags().StringVarP(&minLevel, "min-level", "l", "", "Start with this minimum level")
	return cmd
}
