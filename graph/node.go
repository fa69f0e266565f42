// Package graph implements the dependency-aware scheduling core: a graph
// builder, a validator that prunes to the runnable set and proves
// acyclicity, and the two executors (sequential and pooled-parallel) that
// drain it.
package graph

import "context"

// Action is the opaque, asynchronous body of an operation node. It receives
// a cancellation signal and either returns normally or returns a non-nil
// error, which becomes the node's failure payload.
//
// The scheduler never inspects the returned value itself; it exists only so
// a caller's closure can stash a result somewhere the caller controls.
type Action func(ctx context.Context) (result any, err error)

// State is a node's position in its lifecycle.
type State int

const (
	NotStarted State = iota
	ReadyToRun
	Running
	Completed
	Failed
	Skipped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case ReadyToRun:
		return "ReadyToRun"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Failed:
		return "Failed"
	case Skipped:
		return "Skipped"
	default:
		return "Unknown"
	}
}

// Node is one operation in the dependency graph: an identity, a weight used
// only as a tie-break among ready siblings, an optional pool, an opaque
// action, and the mutable lifecycle fields the scheduler owns once a run
// starts.
//
// Predecessors and successors are mutual: AddPredecessor on a Builder keeps
// both sides in sync (spec invariant 3). AddPredecessor and
// RemovePredecessor are rejected once the dependent node has left
// NotStarted (invariant 4); the predecessor's state is not checked.
type Node struct {
	id     int64
	Weight int
	Pool   Pool
	Action Action

	state   State
	failure error

	predecessors map[int64]*Node
	successors   map[int64]*Node

	// insSeq breaks weight ties deterministically (first-added-first, within
	// one pool, at one scheduling decision) rather than leaving map iteration
	// order to decide.
	insSeq uint64
}

// ID returns the node's process-wide, monotonically assigned identity.
func (n *Node) ID() int64 { return n.id }

// StateValue returns the node's current lifecycle state.
func (n *Node) StateValue() State { return n.state }

// Failure returns the captured failure payload, if any. Only meaningful
// when StateValue() == Failed.
func (n *Node) Failure() error { return n.failure }

// Signaled reports whether the node has reached a terminal state.
func (n *Node) Signaled() bool {
	switch n.state {
	case Completed, Failed, Skipped:
		return true
	default:
		return false
	}
}

// Faulted reports whether the node's terminal state is Failed or Skipped.
func (n *Node) Faulted() bool {
	switch n.state {
	case Failed, Skipped:
		return true
	default:
		return false
	}
}

// Predecessors returns the set of nodes that must complete before this node
// may run. The returned slice is a snapshot; mutating it has no effect on
// the graph.
func (n *Node) Predecessors() []*Node {
	out := make([]*Node, 0, len(n.predecessors))
	for _, p := range n.predecessors {
		out = append(out, p)
	}
	return out
}

// Successors returns the set of nodes that depend on this node. The
// returned slice is a snapshot; mutating it has no effect on the graph.
func (n *Node) Successors() []*Node {
	out := make([]*Node, 0, len(n.successors))
	for _, s := range n.successors {
		out = append(out, s)
	}
	return out
}

// reset restores a signaled node to NotStarted and clears its failure
// payload, for Execute's resetAfterDone option.
func (n *Node) reset() {
	n.state = NotStarted
	n.failure = nil
}
