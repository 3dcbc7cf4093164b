package shotlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

var errWriterClosed = errors.New("shotlog: batch writer is closed")

// BatchWriter streams shots into one Parquet file without holding them in
// memory. Rows land in outDir/tmp and the file only appears in outDir once
// Finalize succeeds; Abort throws the partial file away.
type BatchWriter struct {
	staging string
	final   string

	f    *os.File
	pw   *parquet.GenericWriter[Shot]
	rows int
}

func NewBatchWriter(outDir string) (*BatchWriter, error) {
	if outDir == "" {
		return nil, errors.New("shotlog: batch writer needs an output directory")
	}
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	staging := filepath.Join(outDir, "tmp")
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	name := fmt.Sprintf("shots_%d.parquet", time.Now().UnixNano())
	f, err := os.Create(filepath.Join(staging, name))
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	pw := parquet.NewGenericWriter[Shot](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", shotSchema),
	)
	return &BatchWriter{
		staging: f.Name(),
		final:   filepath.Join(outDir, name),
		f:       f,
		pw:      pw,
	}, nil
}

// OutPath is where Finalize places the file.
func (b *BatchWriter) OutPath() string { return b.final }

// Rows is the number of shots written so far.
func (b *BatchWriter) Rows() int { return b.rows }

func (b *BatchWriter) Write(shots []Shot) error {
	if b.pw == nil {
		return errWriterClosed
	}
	n, err := b.pw.Write(shots)
	b.rows += n
	if err != nil {
		return fmt.Errorf("write shots: %w", err)
	}
	return nil
}

// Finalize flushes the file and moves it into place. With no rows written
// nothing is published and outPath is empty.
func (b *BatchWriter) Finalize() (outPath string, rows int, err error) {
	if b.pw == nil {
		return "", 0, nil
	}
	if err := b.close(); err != nil {
		_ = os.Remove(b.staging)
		return "", 0, err
	}
	if b.rows == 0 {
		return "", 0, os.Remove(b.staging)
	}
	if err := os.Rename(b.staging, b.final); err != nil {
		return "", 0, fmt.Errorf("publish parquet: %w", err)
	}
	return b.final, b.rows, nil
}

// Abort closes the writer and deletes the staged file.
func (b *BatchWriter) Abort() error {
	if b.pw == nil {
		return nil
	}
	closeErr := b.close()
	return errors.Join(closeErr, os.Remove(b.staging))
}

func (b *BatchWriter) close() error {
	pwErr := b.pw.Close()
	syncErr := b.f.Sync()
	fErr := b.f.Close()
	b.pw, b.f = nil, nil
	if err := errors.Join(pwErr, syncErr, fErr); err != nil {
		return fmt.Errorf("close parquet: %w", err)
	}
	return nil
}
