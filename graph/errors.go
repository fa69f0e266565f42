package graph

import "fmt"

// InvalidArgumentError reports a malformed call into the scheduler: a
// global cap below 1 while a runnable node still uses the default pool, a
// runnable node with a nil action, or (from package idgraph) a duplicate or
// unregistered operation id.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return "taskgraph: invalid argument: " + e.Message
}

// InvalidStateError reports an edge edit attempted on a node that has
// already left NotStarted (spec.md §4.1 invariant 4).
type InvalidStateError struct {
	NodeID int64
	From   State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("taskgraph: node %d: edge edits forbidden once state is %s", e.NodeID, e.From)
}

// CycleError reports that a cycle was detected either before traversal
// began (non-signaled nodes unreachable from any root) or during Kahn
// peeling (spec.md §4.2).
type CycleError struct {
	// Remaining lists the node IDs still unresolved when the cycle was
	// detected, for diagnostics.
	Remaining []int64
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("taskgraph: cycle detected among %d node(s)", len(e.Remaining))
}

// CancellationError reports that a run was cancelled by the caller-supplied
// context before every node reached a terminal state.
type CancellationError struct {
	Cause error
}

func (e *CancellationError) Error() string {
	return "taskgraph: run cancelled: " + e.Cause.Error()
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// TimeoutError reports that an operation's action did not return before its
// configured timeout elapsed. It is recorded as the node's failure payload
// exactly like any other action error; it does not alter scheduling.
type TimeoutError struct {
	NodeID int64
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("taskgraph: node %d exceeded its action timeout", e.NodeID)
}
