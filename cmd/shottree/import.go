package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/brensch/shottree/shotlog"
	"github.com/brensch/shottree/shotlog/db"
)

const importBatchSize = 1000

func newImportCmd(a *app) *cobra.Command {
	var (
		csvPath    string
		dbPath     string
		parquetDir string
		logPath    string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a shot log CSV into SQLite and a Parquet copy",
		Long: `Loads every valid row of a shot log CSV into the SQLite store and writes the
same rows to a Parquet file. A digest of each imported file is recorded so
importing the same file twice is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dbPath == "" {
				dbPath = a.cfg.DBPath
			}
			if parquetDir == "" {
				parquetDir = filepath.Join(filepath.Dir(dbPath), "parquet")
			}
			if logPath == "" {
				logPath = dbPath + ".imports"
			}
			stats, err := importCSV(cmd.Context(), a, csvPath, dbPath, parquetDir, logPath)
			if err != nil {
				return err
			}
			if stats.duplicate {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s already imported\n", csvPath)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "read %d shots, inserted %d, skipped %d rows, parquet %s\n",
				stats.read, stats.inserted, stats.skipped, stats.parquetPath)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&csvPath, "csv", "", "shot log CSV file")
	f.StringVar(&dbPath, "db", "", "SQLite database (default from SHOTTREE_DB)")
	f.StringVar(&parquetDir, "parquet-dir", "", "directory for the Parquet copy (default: next to the database)")
	f.StringVar(&logPath, "import-log", "", "import digest log (default: <db>.imports)")
	_ = cmd.MarkFlagRequired("csv")
	return cmd
}

type importStats struct {
	duplicate   bool
	read        int
	inserted    int64
	skipped     int
	parquetPath string
}

func importCSV(ctx context.Context, a *app, csvPath, dbPath, parquetDir, logPath string) (st importStats, err error) {
	digest, err := shotlog.FileDigest(csvPath)
	if err != nil {
		return st, err
	}
	imports, err := shotlog.OpenImportLog(logPath)
	if err != nil {
		return st, err
	}
	defer func() { err = errors.Join(err, imports.Close()) }()

	if imports.Has(digest) {
		a.logger.Info("skipping known file", "path", csvPath, "digest", digest)
		st.duplicate = true
		return st, nil
	}

	store, err := db.New(dbPath)
	if err != nil {
		return st, fmt.Errorf("open db: %w", err)
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	bw, err := shotlog.NewBatchWriter(parquetDir)
	if err != nil {
		return st, err
	}

	batch := make([]shotlog.Shot, 0, importBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := store.InsertShots(ctx, batch)
		if err != nil {
			return err
		}
		st.inserted += n
		if err := bw.Write(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	src := &shotlog.CSVSource{Path: csvPath, Logger: a.logger}
	err = src.Each(ctx, func(s shotlog.Shot) error {
		st.read++
		batch = append(batch, s)
		if len(batch) == importBatchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return st, errors.Join(err, bw.Abort())
	}
	st.skipped = src.Skipped()

	if st.parquetPath, _, err = bw.Finalize(); err != nil {
		return st, err
	}
	if err := imports.Add(digest); err != nil {
		return st, err
	}
	a.logger.Info("import complete",
		"path", csvPath,
		"read", st.read,
		"inserted", st.inserted,
		"skipped", st.skipped,
		"parquet", st.parquetPath,
	)
	return st, nil
}
