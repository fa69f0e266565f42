package graph

import (
	"errors"
	"testing"
)

func TestValidateLinearChainAdmitsAllAsReadyToRun(t *testing.T) {
	b := NewBuilder()
	a := b.AddNode(0, noop)
	c := b.AddNode(0, noop)
	mustAddPred(t, b, c, a)

	runSet, err := validate(b.Nodes())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(runSet) != 2 {
		t.Fatalf("len(runSet) = %d, want 2", len(runSet))
	}
	for _, n := range runSet {
		if n.StateValue() != ReadyToRun {
			t.Errorf("node %d state = %s, want ReadyToRun", n.ID(), n.StateValue())
		}
	}
}

func TestValidateSkipsAlreadySignaledNodes(t *testing.T) {
	b := NewBuilder()
	a := b.AddNode(0, noop)
	a.state = Completed
	c := b.AddNode(0, noop)
	mustAddPred(t, b, c, a)

	// AddPredecessor requires NotStarted on the dependent, not the
	// predecessor, so c (still NotStarted) may depend on an already-Completed a.
	runSet, err := validate(b.Nodes())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(runSet) != 1 || runSet[0].ID() != c.ID() {
		t.Fatalf("runSet = %v, want just [c]", runSet)
	}
}

func TestValidateEmptyWhenEverythingSignaled(t *testing.T) {
	b := NewBuilder()
	a := b.AddNode(0, noop)
	a.state = Completed

	runSet, err := validate(b.Nodes())
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(runSet) != 0 {
		t.Fatalf("len(runSet) = %d, want 0", len(runSet))
	}
}

func TestValidateCycleRestoresNotStarted(t *testing.T) {
	b := NewBuilder()
	a := b.AddNode(0, noop)
	bb := b.AddNode(0, noop)
	c := b.AddNode(0, noop)
	root := b.AddNode(0, noop) // keeps a root reachable so traversal admits the cycle

	mustAddPred(t, b, root, c)
	mustAddPred(t, b, a, bb)
	mustAddPred(t, b, bb, c)
	mustAddPred(t, b, c, a)

	_, err := validate(b.Nodes())
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("validate err = %v, want *CycleError", err)
	}
	for _, n := range []*Node{a, bb, c} {
		if n.StateValue() != NotStarted {
			t.Errorf("node %d state = %s, want NotStarted after cycle rollback", n.ID(), n.StateValue())
		}
	}
}

func TestValidateRejectsNilAction(t *testing.T) {
	b := NewBuilder()
	n := b.AddNode(0, nil)

	_, err := validate(b.Nodes())
	var invalidArg *InvalidArgumentError
	if !errors.As(err, &invalidArg) {
		t.Fatalf("validate err = %v, want *InvalidArgumentError", err)
	}
	if n.StateValue() != NotStarted {
		t.Fatalf("node state = %s, want NotStarted (nil action must be rejected before any mutation)", n.StateValue())
	}
}

func TestValidateIgnoresNilActionOnAlreadySignaledNode(t *testing.T) {
	b := NewBuilder()
	n := b.AddNode(0, nil)
	n.state = Skipped

	if _, err := validate(b.Nodes()); err != nil {
		t.Fatalf("validate: %v, want nil (a signaled node's action is never invoked)", err)
	}
}

func TestEligibleRequiresAllPredecessorsSignaled(t *testing.T) {
	b := NewBuilder()
	a := b.AddNode(0, noop)
	c := b.AddNode(0, noop)
	mustAddPred(t, b, c, a)

	if eligible(c) {
		t.Fatal("eligible(c) = true before a is signaled")
	}
	a.state = Completed
	if !eligible(c) {
		t.Fatal("eligible(c) = false after a completed")
	}
}
