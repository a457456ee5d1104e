// Package delivery records sent greetings in an append-only log and answers
// the "already sent today?" question used for daily deduplication.
package delivery

import (
	"context"
	"time"
)

// Entry captures one successful send.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel,omitempty"`

	// raw holds the original text line when the entry was read from a TextStore.
	raw string
}

// Query filters entries. Start is inclusive and End exclusive; zero values are unbounded.
type Query struct {
	Start time.Time
	End   time.Time
	Email string
}

// Match reports whether e passes the filter.
func (q Query) Match(e Entry) bool {
	if !q.Start.IsZero() && e.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && !e.Timestamp.Before(q.End) {
		return false
	}
	if q.Email != "" && e.Email != q.Email {
		return false
	}
	return true
}

// Store persists entries and supports querying. Entries are returned in append order.
// Querying a store that has never been written returns no entries and no error.
type Store interface {
	Append(ctx context.Context, e Entry) error
	Query(ctx context.Context, q Query) ([]Entry, error)
	Close() error
}
