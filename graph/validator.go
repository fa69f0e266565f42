package graph

import "fmt"

// validate computes the run set for a caller-supplied node set and proves
// it is acyclic, per spec.md §4.2.
//
// Step 1: roots are nodes with no successors that are not yet signaled.
// Step 2: starting from each root, predecessors are traversed recursively;
// every newly-seen non-signaled node is admitted to the run set and marked
// ReadyToRun. Step 3: if the run set ends up empty while some caller node is
// still non-signaled, every non-signaled node must be unreachable from any
// root, which is only possible if they form a cycle among themselves — fail
// with CycleError before even attempting Kahn peeling.
//
// Once the run set is known, Kahn's algorithm proves it acyclic: repeatedly
// remove nodes whose in-run-set predecessor count is zero. If an iteration
// removes nothing while nodes remain, a cycle exists — fail with CycleError
// and restore every admitted node to NotStarted.
func validate(nodes []*Node) ([]*Node, error) {
	for _, n := range nodes {
		if !n.Signaled() && n.Action == nil {
			return nil, &InvalidArgumentError{Message: fmt.Sprintf("node %d: action reference is nil", n.id)}
		}
	}

	byID := make(map[int64]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.id] = n
	}

	anyNonSignaled := false
	var roots []*Node
	for _, n := range nodes {
		if n.Signaled() {
			continue
		}
		anyNonSignaled = true
		if len(n.successors) == 0 {
			roots = append(roots, n)
		}
	}

	if !anyNonSignaled {
		return nil, nil
	}

	runSet := make(map[int64]*Node)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Signaled() {
			return
		}
		if _, seen := runSet[n.id]; seen {
			return
		}
		runSet[n.id] = n
		n.state = ReadyToRun
		for _, p := range n.predecessors {
			walk(p)
		}
	}
	for _, r := range roots {
		walk(r)
	}

	if len(runSet) == 0 {
		// Every non-signaled node is unreachable from any root: a cycle
		// among them is the only way that can happen.
		return nil, cycleAmong(nodes)
	}

	ordered := make([]*Node, 0, len(runSet))
	for _, n := range runSet {
		ordered = append(ordered, n)
	}

	if err := kahnCheck(ordered, runSet); err != nil {
		for _, n := range ordered {
			n.state = NotStarted
		}
		return nil, err
	}

	return ordered, nil
}

// kahnCheck proves runSet acyclic via Kahn's algorithm, restricted to edges
// whose endpoints are both in runSet. It mutates nothing; it only reports
// whether peeling can consume every node.
func kahnCheck(nodes []*Node, runSet map[int64]*Node) error {
	indegree := make(map[int64]int, len(nodes))
	for _, n := range nodes {
		count := 0
		for pid := range n.predecessors {
			if _, inSet := runSet[pid]; inSet {
				count++
			}
		}
		indegree[n.id] = count
	}

	queue := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if indegree[n.id] == 0 {
			queue = append(queue, n)
		}
	}

	removed := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		removed++
		for _, s := range n.successors {
			if _, inSet := runSet[s.id]; !inSet {
				continue
			}
			indegree[s.id]--
			if indegree[s.id] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if removed != len(nodes) {
		remaining := make([]int64, 0, len(nodes)-removed)
		for _, n := range nodes {
			if indegree[n.id] > 0 {
				remaining = append(remaining, n.id)
			}
		}
		return &CycleError{Remaining: remaining}
	}
	return nil
}

// cycleAmong builds a CycleError listing every non-signaled node, used when
// the root-traversal phase itself finds no roots to start from.
func cycleAmong(nodes []*Node) *CycleError {
	var remaining []int64
	for _, n := range nodes {
		if !n.Signaled() {
			remaining = append(remaining, n.id)
		}
	}
	return &CycleError{Remaining: remaining}
}
