package main

import (
	"context"
	"os"
	"testing"

	"github.com/madjic/taskgraph/graph"
)

func TestParseGraphDefDefaults(t *testing.T) {
	def, err := parseGraphDef([]byte("nodes: []\n"))
	if err != nil {
		t.Fatalf("parseGraphDef: %v", err)
	}
	if def.GlobalCap != 1 {
		t.Fatalf("GlobalCap = %d, want 1 (default)", def.GlobalCap)
	}
}

func TestGraphDefBuildDiamond(t *testing.T) {
	data, err := os.ReadFile("testdata/diamond.yaml")
	if err != nil {
		t.Fatalf("read testdata: %v", err)
	}
	def, err := parseGraphDef(data)
	if err != nil {
		t.Fatalf("parseGraphDef: %v", err)
	}

	nodes, err := def.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("len(nodes) = %d, want 4", len(nodes))
	}

	if err := graph.Execute(context.Background(), def.GlobalCap, nodes, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, n := range nodes {
		if n.StateValue() != graph.Completed {
			t.Errorf("node %d state = %s, want Completed", n.ID(), n.StateValue())
		}
	}
}

func TestGraphDefBuildUnknownDependency(t *testing.T) {
	data := []byte(`
nodes:
  - id: a
    depends_on: [never-defined]
    action: {kind: sleep}
`)
	def, err := parseGraphDef(data)
	if err != nil {
		t.Fatalf("parseGraphDef: %v", err)
	}
	if _, err := def.build(); err == nil {
		t.Fatal("build: want error for unknown dependency id, got nil")
	}
}

func TestGraphDefBuildFailingAction(t *testing.T) {
	data := []byte(`
nodes:
  - id: a
    action: {kind: sleep, fail: true}
  - id: b
    depends_on: [a]
    action: {kind: sleep}
`)
	def, err := parseGraphDef(data)
	if err != nil {
		t.Fatalf("parseGraphDef: %v", err)
	}
	nodes, err := def.build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := graph.Execute(context.Background(), def.GlobalCap, nodes, false); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, n := range nodes {
		if len(n.Predecessors()) == 0 {
			if n.StateValue() != graph.Failed {
				t.Errorf("root node state = %s, want Failed", n.StateValue())
			}
		} else {
			if n.StateValue() != graph.Skipped {
				t.Errorf("dependent node state = %s, want Skipped", n.StateValue())
			}
		}
	}
}
