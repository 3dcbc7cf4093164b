package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brensch/shottree/shotlog"
	"github.com/brensch/shottree/shotlog/boxscore"
	"github.com/brensch/shottree/shotlog/db"
)

var errNoSource = errors.New("exactly one of --csv, --parquet, --db or --html is required")

// sourceFlags selects where a command reads shots from.
type sourceFlags struct {
	csv     string
	parquet string
	db      string
	html    string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&s.csv, "csv", "", "shot log CSV file")
	f.StringVar(&s.parquet, "parquet", "", "shot Parquet file")
	f.StringVar(&s.db, "db", "", "SQLite shot database")
	f.StringVar(&s.html, "html", "", "URL of an HTML page with a shot table")
	cmd.MarkFlagsMutuallyExclusive("csv", "parquet", "db", "html")
}

// open returns the selected source and a close func for any resource it holds.
func (s *sourceFlags) open(a *app, player string) (shotlog.Source, func(), error) {
	noop := func() {}
	switch {
	case s.csv != "":
		return &shotlog.CSVSource{Path: s.csv, Logger: a.logger}, noop, nil
	case s.parquet != "":
		return shotlog.ParquetSource{Path: s.parquet}, noop, nil
	case s.db != "":
		store, err := db.New(s.db)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		return store.ShotsForPlayer(player), func() { _ = store.Close() }, nil
	case s.html != "":
		return boxscore.Page{URL: s.html, Config: boxscore.DefaultConfig(), Logger: a.logger}, noop, nil
	}
	return nil, nil, errNoSource
}
