package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/brensch/shottree/shotlog/db"
)

func newPlayersCmd(a *app) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List players in the shot database with attempt counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				dbPath = a.cfg.DBPath
			}
			store, err := db.New(dbPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer store.Close()

			players, err := store.Players(cmd.Context())
			if err != nil {
				return err
			}
			p := message.NewPrinter(language.English)
			out := cmd.OutOrStdout()
			for _, pc := range players {
				if _, err := p.Fprintf(out, "%-28s %10d %8d\n", pc.Name, pc.ID, pc.Shots); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database (default from SHOTTREE_DB)")
	return cmd
}
