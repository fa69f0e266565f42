package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists outcomes to a single SQLite file. Grounded on the
// teacher's graph/store/sqlite.go: WAL mode, a single writer connection,
// auto-migration on first use.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) a SQLite-backed Store at
// path. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("audit: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("audit: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTable(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			node_id INTEGER NOT NULL,
			state TEXT NOT NULL,
			failure TEXT NOT NULL DEFAULT '',
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("audit: create outcomes table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)"); err != nil {
		return fmt.Errorf("audit: create outcomes index: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordOutcome(ctx context.Context, o Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, node_id, state, failure, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		o.RunID, o.NodeID, o.State, o.Failure, o.StartedAt, o.FinishedAt)
	if err != nil {
		return fmt.Errorf("audit: record outcome: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT node_id, state, failure, started_at, finished_at FROM outcomes WHERE run_id = ? ORDER BY id ASC`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("audit: history query: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		o := Outcome{RunID: runID}
		if err := rows.Scan(&o.NodeID, &o.State, &o.Failure, &o.StartedAt, &o.FinishedAt); err != nil {
			return nil, fmt.Errorf("audit: history scan: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }
