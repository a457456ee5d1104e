package delivery

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists entries to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS deliveries (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        id TEXT NOT NULL,
        ts INTEGER NOT NULL,
        name TEXT NOT NULL,
        email TEXT NOT NULL,
        message TEXT NOT NULL,
        channel TEXT NOT NULL DEFAULT ''
    );
    CREATE INDEX IF NOT EXISTS deliveries_email_ts ON deliveries (email, ts);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append inserts the entry. Timestamps are stored as Unix microseconds.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deliveries (id, ts, name, email, message, channel) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UnixMicro(), e.Name, e.Email, e.Message, e.Channel)
	return err
}

// Query returns entries matching q in insertion order.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Entry, error) {
	var args []any
	query := `SELECT id, ts, name, email, message, channel FROM deliveries WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.UnixMicro())
	}
	if !q.End.IsZero() {
		query += ` AND ts < ?`
		args = append(args, q.End.UnixMicro())
	}
	if q.Email != "" {
		query += ` AND email = ?`
		args = append(args, q.Email)
	}
	query += ` ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Entry
	for rows.Next() {
		var (
			e  Entry
			ts int64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Name, &e.Email, &e.Message, &e.Channel); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMicro(ts)
		res = append(res, e)
	}
	return res, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
