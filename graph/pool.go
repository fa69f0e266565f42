package graph

import "github.com/google/uuid"

// Pool is a named concurrency bucket. Two nodes share a pool iff their
// Pool.id values match. MaxParallelism bounds how many of the pool's nodes
// may be Running at once; the sentinel DefaultPool carries -1, meaning
// "borrow the run's global cap" (spec.md §3).
type Pool struct {
	id             uuid.UUID
	MaxParallelism int
}

// DefaultPool is the implicit pool every node without an explicit Pool
// belongs to. Its effective cap at run time is always the run's global cap.
var DefaultPool = Pool{id: uuid.Nil, MaxParallelism: -1}

// NewPool creates a pool with a fresh identity and the given cap, which
// must be >= 1.
func NewPool(maxParallelism int) Pool {
	return Pool{id: uuid.New(), MaxParallelism: maxParallelism}
}

// IsDefault reports whether p is the default pool.
func (p Pool) IsDefault() bool { return p.id == uuid.Nil }

// Equal reports whether p and o refer to the same pool.
func (p Pool) Equal(o Pool) bool { return p.id == o.id }

// effectiveCap resolves the pool's run-time cap against a run's global cap.
func (p Pool) effectiveCap(globalCap int) int {
	if p.MaxParallelism > 0 {
		return p.MaxParallelism
	}
	return globalCap
}
