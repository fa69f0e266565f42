// Package emit provides pluggable observability for scheduler runs: a
// structured Event, an Emitter interface, and a few ready-made
// implementations (log, in-memory, OpenTelemetry span).
package emit

// Event is one observability event emitted during a run.
type Event struct {
	// RunID identifies the Execute call that produced this event.
	RunID string

	// Seq is a monotonic sequence number within the run, used to order
	// events from concurrent pools deterministically for display/storage.
	// Zero for run-level events (run_cycle_detected, run_cancelled,
	// run_completed).
	Seq int64

	// NodeID identifies the node this event describes. Zero for run-level
	// events.
	NodeID int64

	// Msg names the event: "node_ready", "node_running", "node_completed",
	// "node_failed", "node_skipped", "run_cycle_detected", "run_cancelled",
	// "run_completed".
	Msg string

	// Meta carries event-specific structured detail, e.g. {"error": "..."}
	// on node_failed.
	Meta map[string]any
}
