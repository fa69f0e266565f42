package graph

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/madjic/taskgraph/audit"
	"github.com/madjic/taskgraph/graph/emit"
)

// Execute runs every node in nodes exactly once, as early as dependencies
// and pool capacity allow, per spec.md §6. It returns nil once every node
// has reached a terminal state, an *InvalidArgumentError if globalCap < 1
// while a runnable node uses the default pool, a *CycleError if the run set
// is not a DAG, or a *CancellationError if ctx is cancelled before
// completion.
//
// Node failures are never returned from Execute: they are recorded on the
// responsible node and drive skip-propagation (spec.md §7). Inspect each
// node's StateValue()/Failure() after Execute returns nil.
func Execute(ctx context.Context, globalCap int, nodes []*Node, resetAfterDone bool, opts ...ExecuteOption) error {
	cfg := newRunConfig(opts)
	if cfg.runID == "" {
		cfg.runID = uuid.New().String()
	}

	runSet, err := validate(nodes)
	if err != nil {
		var cycleErr *CycleError
		if errors.As(err, &cycleErr) {
			cfg.emitter.Emit(emit.Event{RunID: cfg.runID, Msg: "run_cycle_detected"})
			if cfg.metrics != nil {
				cfg.metrics.IncCycleAborted()
			}
		}
		return err
	}
	if len(runSet) == 0 {
		return nil
	}

	usesNonDefaultPool := false
	usesDefaultPool := false
	for _, n := range runSet {
		if n.Pool.IsDefault() {
			usesDefaultPool = true
		} else {
			usesNonDefaultPool = true
		}
	}
	if globalCap < 1 && usesDefaultPool {
		return &InvalidArgumentError{Message: "globalCap must be >= 1 when any runnable node uses the default pool"}
	}

	r := &run{
		ctx:  ctx,
		cfg:  cfg,
		seq:  new(atomic.Int64),
		runID: cfg.runID,
	}
	for _, n := range runSet {
		r.emitNode(n, "node_ready")
	}

	var runErr error
	if globalCap == 1 && !usesNonDefaultPool {
		runErr = r.runSequential(runSet)
	} else {
		runErr = r.runPooled(globalCap, runSet)
	}

	if resetAfterDone {
		for _, n := range runSet {
			if n.Signaled() {
				n.reset()
			}
		}
	}

	var cancelErr *CancellationError
	if runErr == nil {
		r.cfg.emitter.Emit(emit.Event{RunID: r.runID, Msg: "run_completed"})
	} else if errors.As(runErr, &cancelErr) {
		r.cfg.emitter.Emit(emit.Event{RunID: r.runID, Msg: "run_cancelled"})
	}
	return runErr
}

// run holds the state shared by both executors for one Execute call.
type run struct {
	ctx   context.Context
	cfg   *runConfig
	seq   *atomic.Int64
	runID string
}

func (r *run) nextSeq() int64 { return r.seq.Add(1) }

// runSequential is the fast path of spec.md §4.3: chosen only when
// globalCap == 1 and no runnable node overrides the default pool. It drains
// the run set one node at a time, highest weight first.
func (r *run) runSequential(runSet []*Node) error {
	pending := make(readyHeap, 0, len(runSet))
	pending = append(pending, runSet...)

	remaining := len(runSet)
	for remaining > 0 {
		if err := r.ctx.Err(); err != nil {
			return &CancellationError{Cause: err}
		}

		idx := -1
		anyPending := false
		for i, n := range pending {
			if n == nil || n.Signaled() {
				continue
			}
			anyPending = true
			if !eligible(n) {
				continue
			}
			if idx == -1 || pending.Less(i, idx) {
				idx = i
			}
		}
		if idx == -1 {
			if !anyPending {
				// Every node left was skipped after a predecessor failed.
				return nil
			}
			// Defensive: the validator should have made this unreachable.
			return &CycleError{}
		}

		n := pending[idx]
		pending[idx] = nil
		remaining--

		r.launchSync(n)
	}
	return nil
}

// launchSync runs one node's action to completion on the calling goroutine
// (used by the sequential executor, which never needs concurrent launches).
func (r *run) launchSync(n *Node) {
	if n.Signaled() {
		return
	}
	r.runAction(n)
}

// runPooled is spec.md §4.4: the run set is partitioned by pool, each pool
// launches up to its effective cap, and the main loop waits for the first
// completion across every pool before scheduling more work.
//
// Every write to a Node's state/failure happens on this goroutine, never on
// a worker goroutine: drainEligible/reapSignaled/allSignaled all read
// Node.state concurrently with whatever a worker is doing, so a worker is
// only ever allowed to run the opaque Action and hand its outcome back over
// results — markRunning and applyOutcome, the only places state is written,
// both run here before the corresponding goroutine is spawned or after its
// result is received.
func (r *run) runPooled(globalCap int, runSet []*Node) error {
	queues := make(map[uuid.UUID]*poolQueue)
	var poolOrder []uuid.UUID
	queueFor := func(p Pool) *poolQueue {
		q, ok := queues[p.id]
		if !ok {
			q = newPoolQueue(p, globalCap)
			queues[p.id] = q
			poolOrder = append(poolOrder, p.id)
		}
		return q
	}
	for _, n := range runSet {
		queueFor(n.Pool).add(n)
	}

	// results only wakes the main loop; it is not used to count completions.
	// Skip-propagation can signal a node Skipped before it is ever launched
	// (it was still sitting in a pool's pending queue), so termination is
	// decided by scanning runSet for "every node signaled", not by counting
	// channel receives.
	results := make(chan actionOutcome, len(runSet))
	var wg sync.WaitGroup

	allSignaled := func() bool {
		for _, n := range runSet {
			if !n.Signaled() {
				return false
			}
		}
		return true
	}

	for !allSignaled() {
		if err := r.ctx.Err(); err != nil {
			wg.Wait()
			return &CancellationError{Cause: err}
		}

		for _, id := range poolOrder {
			q := queues[id]
			q.reapSignaled()
			for _, n := range q.drainEligible() {
				if r.skipIfFaulted(n) {
					continue
				}
				r.markRunning(n)
				q.running++
				wg.Add(1)
				go func(n *Node) {
					defer wg.Done()
					results <- r.invokeAction(n)
				}(n)
			}
			if r.cfg.metrics != nil {
				r.cfg.metrics.SetActiveNodes(r.runID, id.String(), q.running)
				r.cfg.metrics.SetQueueDepth(r.runID, id.String(), q.pending.Len())
			}
		}

		anyRunning := false
		for _, q := range queues {
			if q.running > 0 {
				anyRunning = true
				break
			}
		}
		if !anyRunning {
			if allSignaled() {
				break
			}
			// Nothing running and nothing eligible to launch: the validator
			// should have ruled this out for a non-empty, acyclic run set.
			return &CycleError{}
		}

		select {
		case o := <-results:
			queues[o.node.Pool.id].running--
			r.applyOutcome(o)
		case <-r.ctx.Done():
			wg.Wait()
			return &CancellationError{Cause: r.ctx.Err()}
		}
	}

	// Defensive drain: any stragglers left in-flight after the loop above
	// (there should be none) are still awaited so Execute never returns
	// while a goroutine is still touching node state.
	wg.Wait()
	for len(results) > 0 {
		<-results
	}
	return nil
}

// actionOutcome is the pure result of invoking a node's action: it carries no
// reference to scheduler state beyond the node pointer itself and is safe to
// build on any goroutine, since building one never reads or writes
// Node.state.
type actionOutcome struct {
	node      *Node
	err       error
	startedAt time.Time
}

// invokeAction runs n's action to completion (optionally under a deadline)
// and returns its outcome. It never touches n.state or n.failure — the
// caller is responsible for having already marked n Running on the
// goroutine that owns scheduler state, and for applying the returned
// outcome back on that same goroutine. This is what lets the pooled
// executor run many actions concurrently while every state transition stays
// single-threaded.
func (r *run) invokeAction(n *Node) actionOutcome {
	start := time.Now()

	actionCtx := r.ctx
	var cancelTimeout context.CancelFunc
	if r.cfg.actionTimeout > 0 {
		actionCtx, cancelTimeout = context.WithTimeout(r.ctx, r.cfg.actionTimeout)
		defer cancelTimeout()
	}

	_, actionErr := n.Action(actionCtx)
	if r.cfg.actionTimeout > 0 && r.ctx.Err() == nil && actionCtx.Err() == context.DeadlineExceeded {
		actionErr = &TimeoutError{NodeID: n.id}
	}
	return actionOutcome{node: n, err: actionErr, startedAt: start}
}

// markRunning transitions n to Running. Must only be called on the
// goroutine that owns scheduler state, before invokeAction's goroutine is
// spawned.
func (r *run) markRunning(n *Node) {
	n.state = Running
	r.emitNode(n, "node_running")
	if r.cfg.metrics != nil {
		r.cfg.metrics.IncLaunched(r.runID)
	}
}

// applyOutcome is the other half of the launch wrapper of spec.md §4.4: it
// takes an invokeAction result and transitions the node to Completed or
// Failed — unless the node has already been overwritten to Skipped by a
// failing predecessor while the action was in flight, in which case the
// monotone rule in spec.md §4.5/§9 applies and this result is discarded.
// Must only be called on the goroutine that owns scheduler state.
func (r *run) applyOutcome(o actionOutcome) {
	n := o.node
	if n.state == Skipped {
		// A predecessor failed while this action was in flight; the
		// in-flight result is monotonically discarded.
		return
	}

	status := "success"
	if o.err != nil {
		status = "error"
	}
	if r.cfg.metrics != nil {
		r.cfg.metrics.ObserveLaunchLatency(r.runID, n.id, status, time.Since(o.startedAt))
	}

	if o.err != nil {
		n.state = Failed
		n.failure = o.err
		r.emitNode(n, "node_failed")
		if r.cfg.metrics != nil {
			r.cfg.metrics.IncFailed(r.runID)
		}
		r.recordOutcome(n, o.startedAt)
		r.propagateSkip(n)
		return
	}

	n.state = Completed
	r.emitNode(n, "node_completed")
	r.recordOutcome(n, o.startedAt)
}

// runAction is the synchronous combination of markRunning/invokeAction/
// applyOutcome used by the sequential executor, which only ever has one
// goroutine touching state to begin with.
func (r *run) runAction(n *Node) {
	if r.skipIfFaulted(n) {
		return
	}
	r.markRunning(n)
	r.applyOutcome(r.invokeAction(n))
}

// skipIfFaulted marks n Skipped and reports true if any predecessor is
// already faulted, without ever invoking n's action. Must only be called on
// the goroutine that owns scheduler state.
func (r *run) skipIfFaulted(n *Node) bool {
	for _, p := range n.predecessors {
		if p.Faulted() {
			r.skip(n)
			return true
		}
	}
	return false
}

// skip marks n Skipped without ever invoking its action, used when a
// predecessor is already faulted before n is launched.
func (r *run) skip(n *Node) {
	if n.Signaled() {
		return
	}
	n.state = Skipped
	r.emitNode(n, "node_skipped")
	if r.cfg.metrics != nil {
		r.cfg.metrics.IncSkipped(r.runID)
	}
	r.recordOutcome(n, time.Now())
	r.propagateSkip(n)
}

// propagateSkip is the transitive, eager skip-propagation of spec.md §4.5:
// every node reachable by following successors from n is set Skipped,
// including a node that is currently Running — whose own eventual
// completion must not overwrite this.
func (r *run) propagateSkip(n *Node) {
	var walk func(*Node)
	walk = func(cur *Node) {
		for _, s := range cur.successors {
			switch s.state {
			case NotStarted, ReadyToRun, Running:
				s.state = Skipped
				r.emitNode(s, "node_skipped")
				if r.cfg.metrics != nil {
					r.cfg.metrics.IncSkipped(r.runID)
				}
				r.recordOutcome(s, time.Now())
				walk(s)
			}
		}
	}
	walk(n)
}

func (r *run) emitNode(n *Node, msg string) {
	meta := map[string]any{}
	if n.state == Failed && n.failure != nil {
		meta["error"] = n.failure.Error()
	}
	r.cfg.emitter.Emit(emit.Event{RunID: r.runID, Seq: r.nextSeq(), NodeID: n.id, Msg: msg, Meta: meta})
}

func (r *run) recordOutcome(n *Node, startedAt time.Time) {
	if r.cfg.audit == nil {
		return
	}
	failure := ""
	if n.failure != nil {
		failure = n.failure.Error()
	}
	_ = r.cfg.audit.RecordOutcome(context.Background(), audit.Outcome{
		RunID:      r.runID,
		NodeID:     n.id,
		State:      n.state.String(),
		Failure:    failure,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	})
}
