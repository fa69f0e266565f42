// Package idgraph is the id-keyed front-end of spec.md §4.1: an alternative
// to wiring *graph.Node pointers directly, where operations are registered
// under a caller-chosen string id and dependencies are named by that id.
// Registration order matters: a dependency id must already be registered
// before an operation naming it is added, matching the object-graph
// Builder's own requirement that a predecessor node already exist before
// AddPredecessor can reference it.
package idgraph

import (
	"fmt"

	"github.com/madjic/taskgraph/graph"
)

// Builder layers id-based admission on top of a graph.Builder. The zero
// value is not usable; construct with NewBuilder.
type Builder struct {
	inner *graph.Builder
	byID  map[string]*graph.Node
}

// NewBuilder creates an empty id-keyed builder.
func NewBuilder() *Builder {
	return &Builder{inner: graph.NewBuilder(), byID: make(map[string]*graph.Node)}
}

// AddOperation registers a new node under id, running in the default pool,
// depending on every node already registered under dependsOn. It fails if id
// is already taken or if any dependsOn id has not yet been registered.
func (b *Builder) AddOperation(id string, weight int, action graph.Action, dependsOn ...string) (*graph.Node, error) {
	return b.AddOperationInPool(id, weight, graph.DefaultPool, action, dependsOn...)
}

// AddOperationInPool is AddOperation with an explicit pool assignment.
func (b *Builder) AddOperationInPool(id string, weight int, pool graph.Pool, action graph.Action, dependsOn ...string) (*graph.Node, error) {
	if _, exists := b.byID[id]; exists {
		return nil, &graph.InvalidArgumentError{Message: fmt.Sprintf("idgraph: id %q already registered", id)}
	}

	preds := make([]*graph.Node, 0, len(dependsOn))
	for _, depID := range dependsOn {
		p, ok := b.byID[depID]
		if !ok {
			return nil, &graph.InvalidArgumentError{Message: fmt.Sprintf("idgraph: dependency id %q is not registered (register it before operations that depend on it)", depID)}
		}
		preds = append(preds, p)
	}

	n := b.inner.AddNodeInPool(weight, pool, action)
	for _, p := range preds {
		if err := b.inner.AddPredecessor(n, p); err != nil {
			return nil, err
		}
	}
	b.byID[id] = n
	return n, nil
}

// Node looks up a previously registered operation by id.
func (b *Builder) Node(id string) (*graph.Node, bool) {
	n, ok := b.byID[id]
	return n, ok
}

// MustNode is Node for callers certain id was already registered; it panics
// otherwise. Intended for callers that have already validated every id
// reference.
func (b *Builder) MustNode(id string) *graph.Node {
	n, ok := b.byID[id]
	if !ok {
		panic(fmt.Sprintf("idgraph: id %q is not registered", id))
	}
	return n
}

// Nodes returns every node registered with this builder, in no particular
// order, matching graph.Builder.Nodes.
func (b *Builder) Nodes() []*graph.Node {
	return b.inner.Nodes()
}
