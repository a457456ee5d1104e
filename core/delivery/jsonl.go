package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kilianp07/greetd/core/logger"
)

// JSONLStore stores entries as one JSON object per line.
type JSONLStore struct {
	path string
	log  logger.Logger
}

func NewJSONLStore(path string, log logger.Logger) (*JSONLStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &JSONLStore{path: path, log: orNop(log)}, nil
}

func (s *JSONLStore) Append(ctx context.Context, e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return appendLine(s.path, append(b, '\n'))
}

func (s *JSONLStore) Query(ctx context.Context, q Query) ([]Entry, error) {
	var res []Entry
	err := scanJSONL(ctx, s.path, s.log, q, &res)
	return res, err
}

func (s *JSONLStore) Close() error { return nil }

func scanJSONL(ctx context.Context, path string, log logger.Logger, q Query, out *[]Entry) error {
	return scanLines(ctx, path, log, "jsonl", func(n int, line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			skipMalformed(log, "jsonl", path, n, err)
			return
		}
		if e.Timestamp.IsZero() || e.Email == "" {
			skipMalformed(log, "jsonl", path, n, fmt.Errorf("%w: missing timestamp or email", ErrMalformedLine))
			return
		}
		if q.Match(e) {
			*out = append(*out, e)
		}
	})
}
