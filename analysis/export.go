package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/brensch/shottree/decisiontree"
)

const summarySchema = "leafpair_summary_v1"

// SummaryRow is one leaf-pair of a run as written by ExportParquet.
type SummaryRow struct {
	RunID   string  `parquet:"run_id"`
	Subject string  `parquet:"subject"`
	Path    string  `parquet:"path"`
	Made    int64   `parquet:"made"`
	Missed  int64   `parquet:"missed"`
	Ratio   float64 `parquet:"ratio"`
	Best    bool    `parquet:"best"`
	Worst   bool    `parquet:"worst"`
}

// SummaryRows flattens a result into one row per leaf-pair. Best and Worst
// flag the first row whose path equals the search result.
func SummaryRows(res *Result) []SummaryRow {
	pairs := res.Tree.LeafPairs()
	rows := make([]SummaryRow, 0, len(pairs))
	bestKey, worstKey := pathKey(res.Best.Path), pathKey(res.Worst.Path)
	var bestSeen, worstSeen bool
	for _, lp := range pairs {
		key := pathKey(lp.Path)
		row := SummaryRow{
			RunID:   res.RunID.String(),
			Subject: res.Subject,
			Path:    key,
			Made:    int64(lp.Made),
			Missed:  int64(lp.Missed),
			Ratio:   lp.Ratio,
		}
		if !bestSeen && key == bestKey {
			row.Best, bestSeen = true, true
		}
		if !worstSeen && key == worstKey {
			row.Worst, worstSeen = true, true
		}
		rows = append(rows, row)
	}
	return rows
}

func pathKey(path []decisiontree.Value) string {
	parts := make([]string, len(path))
	for i, v := range path {
		parts[i] = v.String()
	}
	return strings.Join(parts, "/")
}

// ExportParquet writes the summary rows of res to path, replacing any
// existing file only once the new one is complete.
func ExportParquet(path string, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, SummaryRows(res),
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", summarySchema),
		parquet.KeyValueMetadata("run_id", res.RunID.String()),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write summary: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename summary: %w", err)
	}
	return nil
}
