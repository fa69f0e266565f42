package graph

import (
	"time"

	"github.com/madjic/taskgraph/audit"
	"github.com/madjic/taskgraph/graph/emit"
	"github.com/madjic/taskgraph/metrics"
)

// ExecuteOption configures a single Execute call, following the standard
// functional-option pattern: the idiomatic way to offer optional
// configuration without an options struct every caller must zero out by
// hand.
type ExecuteOption func(*runConfig)

type runConfig struct {
	emitter       emit.Emitter
	metrics       *metrics.Collector
	audit         audit.Store
	actionTimeout time.Duration
	runID         string
}

func newRunConfig(opts []ExecuteOption) *runConfig {
	cfg := &runConfig{emitter: emit.Null}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithEmitter routes observability events to e instead of discarding them.
func WithEmitter(e emit.Emitter) ExecuteOption {
	return func(cfg *runConfig) { cfg.emitter = e }
}

// WithMetrics records Prometheus metrics through c for the run.
func WithMetrics(c *metrics.Collector) ExecuteOption {
	return func(cfg *runConfig) { cfg.metrics = c }
}

// WithAuditStore records each node's terminal outcome to s as the run
// progresses. This is observational only: s is never consulted to decide
// what to run (spec.md's Non-goals exclude run-to-run persistence of graph
// state; the audit trail is not that).
func WithAuditStore(s audit.Store) ExecuteOption {
	return func(cfg *runConfig) { cfg.audit = s }
}

// WithActionTimeout bounds every launched action's execution time. The same
// limit applies to every node of the run; there is no per-node timeout
// setting. Zero (the default) means unlimited.
func WithActionTimeout(d time.Duration) ExecuteOption {
	return func(cfg *runConfig) { cfg.actionTimeout = d }
}

// WithRunID overrides the generated run identity used in emitted events,
// metrics labels, and audit records. If unset, Execute generates one.
func WithRunID(id string) ExecuteOption {
	return func(cfg *runConfig) { cfg.runID = id }
}
