package graph

import "container/heap"

// readyHeap orders nodes by descending weight, breaking ties by ascending
// insertion order, so "highest weight first, first-added-first among equal
// weights" is a well-defined total order. A container/heap.Interface over a
// (weight, insSeq) key, rather than a replay-deterministic hash, since this
// scheduler has no replay concept.
type readyHeap []*Node

func (h readyHeap) Len() int { return len(h) }

func (h readyHeap) Less(i, j int) bool {
	if h[i].Weight != h[j].Weight {
		return h[i].Weight > h[j].Weight
	}
	return h[i].insSeq < h[j].insSeq
}

func (h readyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *readyHeap) Push(x any) { *h = append(*h, x.(*Node)) }

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// poolQueue is the pending queue for one pool: every node of that pool
// still waiting to launch, ordered by weight.
type poolQueue struct {
	pool    Pool
	pending readyHeap
	running int
	cap     int
}

func newPoolQueue(pool Pool, globalCap int) *poolQueue {
	q := &poolQueue{pool: pool, cap: pool.effectiveCap(globalCap)}
	heap.Init(&q.pending)
	return q
}

func (q *poolQueue) add(n *Node) { heap.Push(&q.pending, n) }

// eligible reports whether every predecessor of n has reached a signaled
// state, i.e. n may be launched now.
func eligible(n *Node) bool {
	for _, p := range n.predecessors {
		if !p.Signaled() {
			return false
		}
	}
	return true
}

// drainEligible removes and returns up to (cap - running) eligible nodes
// from the pending heap, highest weight first, leaving ineligible nodes in
// place for a later pass.
func (q *poolQueue) drainEligible() []*Node {
	slots := q.cap - q.running
	if slots <= 0 || q.pending.Len() == 0 {
		return nil
	}

	var held []*Node
	var selected []*Node
	for slots > 0 && q.pending.Len() > 0 {
		n := heap.Pop(&q.pending).(*Node)
		if n.Signaled() {
			// A node can become signaled (skipped) while still sitting in a
			// pending queue if a predecessor failed after it was enqueued
			// here but before its own turn came up.
			continue
		}
		if eligible(n) {
			selected = append(selected, n)
			slots--
			continue
		}
		held = append(held, n)
	}
	for _, n := range held {
		heap.Push(&q.pending, n)
	}
	return selected
}

// reapSignaled removes any now-signaled node left sitting in the pending
// heap (e.g. skipped after a predecessor failed while this node was never
// eligible to launch).
func (q *poolQueue) reapSignaled() {
	var kept []*Node
	for q.pending.Len() > 0 {
		n := heap.Pop(&q.pending).(*Node)
		if !n.Signaled() {
			kept = append(kept, n)
		}
	}
	for _, n := range kept {
		heap.Push(&q.pending, n)
	}
}
