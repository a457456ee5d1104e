package delivery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kilianp07/greetd/core/logger"
)

const (
	// TimestampLayout is written to text logs. Parsing also accepts timestamps
	// without the fractional part.
	TimestampLayout = "2006-01-02 15:04:05.000000"
	parseLayout     = "2006-01-02 15:04:05"
	sentToSep       = " - Sent to "
	maxLineBytes    = 1 << 20
)

// recipientPattern matches the "(<email>):" group that separates name and message.
var recipientPattern = regexp.MustCompile(`\(([a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+)\):`)

// ErrMalformedLine is returned by ParseLine for lines not in the text log format.
var ErrMalformedLine = errors.New("malformed log line")

// FormatLine renders e in the text log format, without trailing newline:
//
//	2024-10-03 08:45:12.123456 - Sent to Jens (jens@python.org): Good morning Jens, hope you have a great day!
func FormatLine(e Entry) string {
	return fmt.Sprintf("%s%s%s (%s): %s", e.Timestamp.Format(TimestampLayout), sentToSep, e.Name, e.Email, e.Message)
}

// ParseLine decodes a text log line. Timestamps are interpreted in local time.
func ParseLine(line string) (Entry, error) {
	line = strings.TrimRight(line, "\r\n")
	ts, details, ok := strings.Cut(line, sentToSep)
	if !ok {
		return Entry{}, fmt.Errorf("%w: missing %q", ErrMalformedLine, strings.TrimSpace(sentToSep))
	}
	t, err := time.ParseInLocation(parseLayout, strings.TrimSpace(ts), time.Local)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: timestamp: %v", ErrMalformedLine, err)
	}
	// FormatLine writes the recipient right after the name, so the first
	// email-shaped group wins even when the name holds "(" or "):".
	loc := recipientPattern.FindStringSubmatchIndex(details)
	if loc == nil {
		return Entry{}, fmt.Errorf("%w: missing recipient", ErrMalformedLine)
	}
	return Entry{
		Timestamp: t,
		Name:      strings.TrimSpace(details[:loc[0]]),
		Email:     details[loc[2]:loc[3]],
		Message:   strings.TrimPrefix(details[loc[1]:], " "),
		raw:       line,
	}, nil
}

// TextStore appends human-readable lines to a flat file. It reads log files
// written by earlier versions of the tool.
type TextStore struct {
	path string
	log  logger.Logger
}

// NewTextStore returns a store for path. The file is created on first Append.
func NewTextStore(path string, log logger.Logger) (*TextStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &TextStore{path: path, log: orNop(log)}, nil
}

// Append writes one line and syncs it to disk.
func (s *TextStore) Append(ctx context.Context, e Entry) error {
	return appendLine(s.path, []byte(FormatLine(e)+"\n"))
}

// Query scans the whole file. Malformed lines are skipped.
func (s *TextStore) Query(ctx context.Context, q Query) ([]Entry, error) {
	var res []Entry
	err := scanLines(ctx, s.path, s.log, "text", func(n int, line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		e, err := ParseLine(line)
		if err != nil {
			skipMalformed(s.log, "text", s.path, n, err)
			return
		}
		if q.Match(e) {
			res = append(res, e)
		}
	})
	return res, err
}

func (s *TextStore) Close() error { return nil }

func ensureDir(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func appendLine(path string, b []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open delivery log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close delivery log: %w", cerr)
		}
	}()
	if _, err = f.Write(b); err != nil {
		return fmt.Errorf("write delivery log: %w", err)
	}
	return f.Sync()
}

// scanLines calls fn for every line of path with its 1-based number. A missing
// file yields no lines. Lines longer than maxLineBytes are skipped as malformed.
func scanLines(ctx context.Context, path string, log logger.Logger, backend string, fn func(n int, line string)) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open delivery log: %w", err)
	}
	defer func() { _ = f.Close() }()
	r := bufio.NewReaderSize(f, 64*1024)
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, tooLong, err := readLine(r)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read delivery log: %w", err)
		}
		n++
		if tooLong {
			skipMalformed(log, backend, path, n, fmt.Errorf("%w: longer than %d bytes", ErrMalformedLine, maxLineBytes))
			continue
		}
		fn(n, line)
	}
}

// readLine returns the next line without its terminator. An oversized line is
// consumed in full and reported with tooLong set.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, more, rerr := r.ReadLine()
		if rerr != nil {
			return "", false, rerr
		}
		if !tooLong {
			if len(buf)+len(chunk) > maxLineBytes {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !more {
			return string(buf), tooLong, nil
		}
	}
}

func skipMalformed(log logger.Logger, backend, path string, n int, err error) {
	malformedLines.WithLabelValues(backend).Inc()
	log.Warnf("skipping line %d of %s: %v", n, path, err)
}

func orNop(l logger.Logger) logger.Logger {
	if l == nil {
		return logger.Nop{}
	}
	return l
}
