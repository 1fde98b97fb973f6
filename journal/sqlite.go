package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists events in a SQLite database. Appends run in a
// transaction so the version check and the inserts are atomic.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	id      TEXT NOT NULL,
	stream  TEXT NOT NULL,
	type    TEXT NOT NULL,
	data    BLOB,
	version INTEGER NOT NULL,
	time    TEXT NOT NULL,
	UNIQUE (stream, version)
);
CREATE INDEX IF NOT EXISTS idx_events_stream ON events (stream, version);
`

// NewSQLiteStore opens (creating if needed) a SQLite-backed store at
// path. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite: %w", err)
	}
	// modernc's driver is not safe for concurrent writes over
	// multiple connections to the same memory database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, stream string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("journal: begin append: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersionTx(ctx, tx, stream)
	if err != nil {
		return 0, err
	}
	if expectedVersion != current {
		return 0, ErrConcurrencyConflict
	}

	for _, e := range events {
		e.Stream = stream
		e.Version = current + 1
		current++
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, stream, type, data, version, time) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Stream, e.Type, []byte(e.Data), e.Version, e.Time.Format(time.RFC3339Nano),
		)
		if err != nil {
			return 0, fmt.Errorf("journal: insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("journal: commit append: %w", err)
	}
	return current, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, stream string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stream, type, data, version, time FROM events WHERE stream = ? AND version >= ? ORDER BY version`,
		stream, fromVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: read stream: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ReadAll implements Store.
func (s *SQLiteStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	query := `SELECT id, stream, type, data, version, time FROM events`
	var conds []string
	var args []any
	if filter.StreamID != "" {
		conds = append(conds, "stream = ?")
		args = append(args, filter.StreamID)
	}
	if len(filter.Types) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Types))
		conds = append(conds, "type IN ("+placeholders[:len(placeholders)-1]+")")
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: read all: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// StreamVersion implements Store.
func (s *SQLiteStore) StreamVersion(ctx context.Context, stream string) (int, error) {
	var v sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream = ?`, stream,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("journal: stream version: %w", err)
	}
	if !v.Valid {
		return -1, nil
	}
	return int(v.Int64), nil
}

// DeleteStream implements Store.
func (s *SQLiteStore) DeleteStream(ctx context.Context, stream string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE stream = ?`, stream); err != nil {
		return fmt.Errorf("journal: delete stream: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func streamVersionTx(ctx context.Context, tx *sql.Tx, stream string) (int, error) {
	var v sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream = ?`, stream,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("journal: stream version: %w", err)
	}
	if !v.Valid {
		return -1, nil
	}
	return int(v.Int64), nil
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var (
			e    Event
			data []byte
			ts   string
		)
		if err := rows.Scan(&e.ID, &e.Stream, &e.Type, &data, &e.Version, &ts); err != nil {
			return nil, fmt.Errorf("journal: scan event: %w", err)
		}
		if len(data) > 0 {
			e.Data = data
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("journal: parse event time: %w", err)
		}
		e.Time = t
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate events: %w", err)
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
