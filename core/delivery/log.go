package delivery

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/greetd/core/model"
)

// DefaultRecentDays is the number of calendar days shown by Recent when days <= 0.
const DefaultRecentDays = 2

// Log is the delivery log used by dispatch: append plus the daily
// deduplication query. Calendar dates use now's location.
type Log struct {
	store Store
}

// NewLog wraps store.
func NewLog(store Store) *Log { return &Log{store: store} }

// Store returns the underlying store.
func (l *Log) Store() Store { return l.store }

// Record appends e, assigning an ID and timestamp when missing.
func (l *Log) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	e.Timestamp = e.Timestamp.Truncate(time.Microsecond)
	return l.store.Append(ctx, e)
}

// WasSentToday reports whether an entry for c's email exists on now's calendar date.
func (l *Log) WasSentToday(ctx context.Context, c model.Contact, now time.Time) (bool, error) {
	start := StartOfDay(now)
	entries, err := l.store.Query(ctx, Query{Start: start, End: start.AddDate(0, 0, 1), Email: c.Email})
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// Entries returns entries dated today or on the previous days-1 calendar days.
func (l *Log) Entries(ctx context.Context, now time.Time, days int) ([]Entry, error) {
	if days <= 0 {
		days = DefaultRecentDays
	}
	today := StartOfDay(now)
	return l.store.Query(ctx, Query{Start: today.AddDate(0, 0, -(days - 1)), End: today.AddDate(0, 0, 1)})
}

// Recent lazily yields the text lines of Entries. Nothing is read until the
// sequence is iterated, and every iteration reads the log again.
func (l *Log) Recent(ctx context.Context, now time.Time, days int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		entries, err := l.Entries(ctx, now, days)
		if err != nil {
			yield("", err)
			return
		}
		for _, e := range entries {
			if !yield(e.Line(), nil) {
				return
			}
		}
	}
}

// Line returns the text log line of e: the original line if e was read from a
// text log, the formatted entry otherwise.
func (e Entry) Line() string {
	if e.raw != "" {
		return e.raw
	}
	return FormatLine(e)
}

// StartOfDay returns midnight of t's date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
