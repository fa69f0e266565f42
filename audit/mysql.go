package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore persists outcomes to a MySQL/MariaDB database. Grounded on the
// teacher's graph/store/mysql.go: connection pooling tuned for a
// moderate-write workload, ping-on-open, auto-migration.
//
// The DSN format matches github.com/go-sql-driver/mysql, e.g.
// "user:pass@tcp(localhost:3306)/taskgraph?parseTime=true".
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore opens a connection pool against dsn and ensures the
// outcomes table exists.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("audit: open mysql: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: ping mysql: %w", err)
	}

	s := &MySQLStore{db: db}
	if err := s.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore) createTable(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS outcomes (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			run_id VARCHAR(255) NOT NULL,
			node_id BIGINT NOT NULL,
			state VARCHAR(32) NOT NULL,
			failure TEXT NOT NULL,
			started_at DATETIME(6) NOT NULL,
			finished_at DATETIME(6) NOT NULL,
			INDEX idx_outcomes_run_id (run_id)
		) ENGINE=InnoDB`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("audit: create outcomes table: %w", err)
	}
	return nil
}

func (s *MySQLStore) RecordOutcome(ctx context.Context, o Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, node_id, state, failure, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		o.RunID, o.NodeID, o.State, o.Failure, o.StartedAt, o.FinishedAt)
	if err != nil {
		return fmt.Errorf("audit: record outcome: %w", err)
	}
	return nil
}

func (s *MySQLStore) History(ctx context.Context, runID string) ([]Outcome, error) {
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

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() error { return s.db.Close() }
