// Package audit records an append-only history of operation outcomes for
// later inspection. It is deliberately NOT graph-state persistence: a
// Store is never read back by the scheduler to resume or reconstruct a
// run (spec.md's Non-goals explicitly exclude that). It only accumulates a
// record of what already happened.
//
// Grounded on github.com/dshills/langgraph-go's graph/store package,
// narrowed from its full CheckpointV2/idempotency-key/event-outbox
// machinery (all built for deterministic replay and resume-from-checkpoint)
// down to the single outcome-recording concern.
package audit

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested run has no recorded outcomes.
var ErrNotFound = errors.New("audit: not found")

// Outcome is one operation's terminal record.
type Outcome struct {
	RunID      string
	NodeID     int64
	State      string // "Completed", "Failed", or "Skipped"
	Failure    string // empty unless State == "Failed"
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store persists Outcomes and retrieves them by run.
type Store interface {
	// RecordOutcome appends one operation's terminal outcome. It must be
	// safe to call concurrently from multiple goroutines finalizing
	// different nodes of the same run.
	RecordOutcome(ctx context.Context, o Outcome) error

	// History returns every outcome recorded for runID, in the order they
	// were recorded. Returns ErrNotFound if runID has no recorded outcomes.
	History(ctx context.Context, runID string) ([]Outcome, error)
}
