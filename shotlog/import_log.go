package shotlog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ImportLog records which shot log files have already been imported.
// It is backed by an append-only file with one content digest per line.
//
// On open the file is read into memory; Add appends and fsyncs. A partial
// final line left by a crash is ignored on the next open.
type ImportLog struct {
	mu       sync.RWMutex
	path     string
	file     *os.File
	imported map[string]struct{}
}

func OpenImportLog(path string) (*ImportLog, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}

	imported := make(map[string]struct{})
	if f, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			digest := strings.TrimSpace(scanner.Text())
			if len(digest) != sha256.Size*2 {
				continue
			}
			imported[digest] = struct{}{}
		}
		_ = f.Close()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &ImportLog{
		path:     path,
		file:     file,
		imported: imported,
	}, nil
}

func (l *ImportLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *ImportLog) Has(digest string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.imported[digest]
	return ok
}

func (l *ImportLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.imported)
}

// Add appends digest to the log. Digests already present are ignored.
func (l *ImportLog) Add(digest string) error {
	if digest == "" {
		return fmt.Errorf("digest is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.imported[digest]; ok {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("log file is closed")
	}

	if _, err := l.file.WriteString(digest + "\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}

	l.imported[digest] = struct{}{}
	return nil
}

// FileDigest returns the hex SHA-256 of the file contents.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
