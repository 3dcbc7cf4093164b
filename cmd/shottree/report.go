package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brensch/shottree/analysis"
	"github.com/brensch/shottree/shotlog"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		src     sourceFlags
		workers int
		export  string
	)
	cmd := &cobra.Command{
		Use:   "report <player name>",
		Short: "Print the leaf-pair table with best and worst shot profiles",
		Example: `  shottree report stephen curry --csv shot_logs.csv
  shottree report "james harden" --db shots.db --workers 4 --export harden.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				workers = a.cfg.Workers
			}
			res, err := runAnalysis(cmd.Context(), a, &src, strings.Join(args, " "), workers)
			if err != nil {
				return err
			}
			if err := analysis.Report(cmd.OutOrStdout(), res, a.tax); err != nil {
				return err
			}
			if export != "" {
				if err := analysis.ExportParquet(export, res); err != nil {
					return err
				}
				a.logger.Info("exported summary", "path", export, "run_id", res.RunID.String())
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().IntVar(&workers, "workers", 0, "ingest partitions run concurrently (default from SHOTTREE_WORKERS)")
	cmd.Flags().StringVar(&export, "export", "", "write leaf-pair summary rows to this Parquet file")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "tree <player name>",
		Short: "Print the populated decision tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runAnalysis(cmd.Context(), a, &src, strings.Join(args, " "), 1)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Tree.String())
			return err
		},
	}
	src.register(cmd)
	return cmd
}

// runAnalysis streams the selected source through the pipeline. With more
// than one worker the source is loaded into memory and split first.
func runAnalysis(ctx context.Context, a *app, sf *sourceFlags, player string, workers int) (*analysis.Result, error) {
	src, closeSrc, err := sf.open(a, player)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	p := a.pipeline()
	if workers <= 1 {
		return p.Run(ctx, player, src)
	}

	shots, err := shotlog.Collect(ctx, shotlog.PlayerFilter{Source: src, Player: player})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("partitioning", "shots", len(shots), "workers", workers)
	return p.RunPartitioned(ctx, player, shotlog.Partition(shots, workers))
}
