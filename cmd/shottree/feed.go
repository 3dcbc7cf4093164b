package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/brensch/shottree/analysis"
	"github.com/brensch/shottree/shotlog/feed"
)

func newFeedCmd(a *app) *cobra.Command {
	var (
		url         string
		metricsAddr string
		readTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "feed <player name>",
		Short: "Ingest shots from a live websocket feed and report when it ends",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if metricsAddr == "" {
				metricsAddr = a.cfg.MetricsAddr
			}
			if readTimeout <= 0 {
				readTimeout = a.cfg.FeedReadTimeout
			}
			ctx := cmd.Context()
			if metricsAddr != "" {
				stop := serveMetrics(ctx, a, metricsAddr)
				defer stop()
			}

			cfg := feed.DefaultConfig(url)
			cfg.ReadTimeout = readTimeout
			f := feed.New(cfg, a.logger)

			player := strings.Join(args, " ")
			res, err := a.pipeline().Run(ctx, player, f)
			stats := f.GetStats()
			a.logger.Info("feed closed", "shots", stats.Shots, "invalid", stats.Invalid)
			if err != nil {
				return err
			}
			return analysis.Report(cmd.OutOrStdout(), res, a.tax)
		},
	}
	f := cmd.Flags()
	f.StringVar(&url, "url", "", "websocket URL of the shot feed")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while ingesting")
	f.DurationVar(&readTimeout, "read-timeout", 0, "give up when no message arrives for this long (default from SHOTTREE_FEED_READ_TIMEOUT)")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

// serveMetrics exposes the app registry on /metrics until the returned stop
// func is called.
func serveMetrics(ctx context.Context, a *app, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server", "error", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
