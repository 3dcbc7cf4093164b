package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/brensch/shottree/prompt"
	"github.com/brensch/shottree/shotlog"
	"github.com/brensch/shottree/shotlog/db"
)

func newPromptCmd(a *app) *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Interactively query players from a shot log or database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p := a.pipeline()

			var run prompt.Runner
			if src.db != "" {
				// Query the store per player instead of loading every row.
				store, err := db.New(src.db)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer store.Close()
				run = prompt.FromLookup(p, store.ShotsForPlayer, a.tax)
			} else {
				loaded, closeSrc, err := src.open(a, "")
				if err != nil {
					return err
				}
				defer closeSrc()
				shots, err := shotlog.Collect(ctx, loaded)
				if err != nil {
					return err
				}
				a.logger.Info("loaded shots", "count", len(shots))
				run = prompt.FromPipeline(p, shotlog.SliceSource(shots), a.tax)
			}

			_, err := tea.NewProgram(prompt.New(ctx, run), tea.WithContext(ctx)).Run()
			return err
		},
	}
	src.register(cmd)
	return cmd
}
