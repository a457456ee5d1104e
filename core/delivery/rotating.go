package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kilianp07/greetd/core/logger"
)

// RotatingJSONLStore stores entries in a JSONL file with automatic rotation.
// Queries read the rotated backups as well as the active file.
type RotatingJSONLStore struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	path   string
	log    logger.Logger
}

// NewRotatingJSONLStore creates a store with rotation options in megabytes and days.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int, log logger.Logger) (*RotatingJSONLStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		LocalTime:  true,
	}
	return &RotatingJSONLStore{writer: lj, path: path, log: orNop(log)}, nil
}

// Append writes the entry and triggers rotation if needed.
func (s *RotatingJSONLStore) Append(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("write delivery log: %w", err)
	}
	return nil
}

// Query reads backups oldest first, then the active file.
func (s *RotatingJSONLStore) Query(ctx context.Context, q Query) ([]Entry, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	var res []Entry
	for _, f := range files {
		if err := scanJSONL(ctx, f, s.log, q, &res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// files lists lumberjack backups (name-<timestamp>.ext) followed by path.
func (s *RotatingJSONLStore) files() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := strings.TrimSuffix(s.path, ext)
	backups, err := filepath.Glob(prefix + "-*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(backups)
	return append(backups, s.path), nil
}

// Close closes the underlying writer.
func (s *RotatingJSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writer.Close()
}
