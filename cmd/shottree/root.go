package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/brensch/shottree/analysis"
	"github.com/brensch/shottree/config"
	"github.com/brensch/shottree/logging"
	"github.com/brensch/shottree/taxonomy"
)

// app is the state shared by every subcommand once the root pre-run has
// resolved configuration.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	tax      *taxonomy.Taxonomy
	registry *prometheus.Registry
	metrics  *analysis.Metrics
}

func (a *app) pipeline() *analysis.Pipeline {
	return &analysis.Pipeline{Taxonomy: a.tax, Logger: a.logger, Metrics: a.metrics}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		logFormat    string
		logLevel     string
		taxonomyPath string
	)

	root := &cobra.Command{
		Use:   "shottree",
		Short: "Shot decision trees for NBA players",
		Long: `shottree tallies a player's shot attempts into a decision tree keyed by
shot category and binary shot attributes, then reports the attribute
combination with the best and worst make percentage.

Settings can also come from SHOTTREE_* environment variables; flags win.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-format") {
				cfg.LogFormat = logFormat
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("taxonomy") {
				cfg.TaxonomyPath = taxonomyPath
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}

			tax := taxonomy.Default()
			if cfg.TaxonomyPath != "" {
				if tax, err = taxonomy.Load(cfg.TaxonomyPath); err != nil {
					return fmt.Errorf("load taxonomy %s: %w", cfg.TaxonomyPath, err)
				}
			}

			a.cfg = cfg
			a.logger = logger
			a.tax = tax
			a.registry = prometheus.NewRegistry()
			a.metrics = analysis.NewMetrics(a.registry)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&logFormat, "log-format", "pretty", "log output: pretty, json or text")
	pf.StringVar(&logLevel, "log-level", "info", "minimum log level")
	pf.StringVar(&taxonomyPath, "taxonomy", "", "taxonomy YAML file (default: built-in)")

	root.AddCommand(
		newReportCmd(a),
		newTreeCmd(a),
		newImportCmd(a),
		newPlayersCmd(a),
		newFeedCmd(a),
		newPromptCmd(a),
		newServeCmd(a),
	)
	return root
}
