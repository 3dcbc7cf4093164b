package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/brensch/shottree/server"
	"github.com/brensch/shottree/shotlog/db"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		dbPath string
		addr   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve player lists and reports as JSON over HTTP",
		Long: `Serves the shot database over HTTP:

  GET /api/players?limit=&offset=   players with attempt counts
  GET /api/report?player=NAME       leaf-pairs with best and worst paths
  GET /metrics                      Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				dbPath = a.cfg.DBPath
			}
			store, err := db.New(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer store.Close()

			srv := &http.Server{
				Addr:              addr,
				Handler:           server.New(store, a.pipeline(), a.registry, a.logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}
			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			a.logger.Info("serving", "addr", addr, "db", dbPath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database (default from SHOTTREE_DB)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
