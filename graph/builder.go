package graph

import (
	"sync"
	"sync/atomic"
)

// nextNodeID is the process-wide, monotonic node identity counter
// (spec.md §4.1: "values must be stable and unique across all nodes to
// feed the topological sort").
var nextNodeID atomic.Int64

// Builder constructs a graph of nodes and predecessor/successor edges. A
// single mutex per Builder guards all edge mutations, matching spec.md's
// "single process-wide mutex guards all edge mutations" — scoped to the
// Builder instance rather than truly process-global, which spec.md §9
// ("Process-wide state") explicitly allows as a behavior-preserving
// localization.
//
// Builder is also the object-graph front-end of spec.md §1: callers hold
// *Node identities directly and wire edges between them. The id-keyed
// front-end (package idgraph) layers a name-to-id admission rule on top of
// this same Builder.
type Builder struct {
	mu    sync.Mutex
	nodes map[int64]*Node
}

// NewBuilder creates an empty graph builder.
func NewBuilder() *Builder {
	return &Builder{nodes: make(map[int64]*Node)}
}

// AddNode creates and registers a node with the given weight and action,
// running in the default pool. Use AddNodeInPool to assign a non-default
// pool.
func (b *Builder) AddNode(weight int, action Action) *Node {
	return b.AddNodeInPool(weight, DefaultPool, action)
}

// AddNodeInPool creates and registers a node bound to the given pool.
func (b *Builder) AddNodeInPool(weight int, pool Pool, action Action) *Node {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := &Node{
		id:           nextNodeID.Add(1),
		Weight:       weight,
		Pool:         pool,
		Action:       action,
		state:        NotStarted,
		predecessors: make(map[int64]*Node),
		successors:   make(map[int64]*Node),
		insSeq:       uint64(len(b.nodes)),
	}
	b.nodes[n.id] = n
	return n
}

// Nodes returns every node registered with this builder, in no particular
// order.
func (b *Builder) Nodes() []*Node {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*Node, 0, len(b.nodes))
	for _, n := range b.nodes {
		out = append(out, n)
	}
	return out
}

// AddPredecessor records that n depends on p: p is added to n's predecessor
// set and n is added to p's successor set (spec.md invariant 3). Duplicates
// are silently ignored. Fails with InvalidStateError if n has left
// NotStarted (invariant 4).
func (b *Builder) AddPredecessor(n, p *Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n.state != NotStarted {
		return &InvalidStateError{NodeID: n.id, From: n.state}
	}
	n.predecessors[p.id] = p
	p.successors[n.id] = n
	return nil
}

// RemovePredecessor is the exact inverse of AddPredecessor. Fails with
// InvalidStateError if n has left NotStarted.
func (b *Builder) RemovePredecessor(n, p *Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n.state != NotStarted {
		return &InvalidStateError{NodeID: n.id, From: n.state}
	}
	delete(n.predecessors, p.id)
	delete(p.successors, n.id)
	return nil
}
