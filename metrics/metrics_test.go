package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestCollectorRegistersAndRecords(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := New(registry)

	c.SetActiveNodes("run-1", "pool-a", 2)
	c.SetQueueDepth("run-1", "pool-a", 3)
	c.ObserveLaunchLatency("run-1", 42, "success", 15*time.Millisecond)
	c.IncLaunched("run-1")
	c.IncFailed("run-1")
	c.IncSkipped("run-1")
	c.IncCycleAborted()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"taskgraph_active_nodes",
		"taskgraph_queue_depth",
		"taskgraph_launch_latency_ms",
		"taskgraph_nodes_launched_total",
		"taskgraph_nodes_failed_total",
		"taskgraph_nodes_skipped_total",
		"taskgraph_cycle_aborted_total",
	} {
		if !names[want] {
			t.Errorf("missing registered metric family %q", want)
		}
	}
}

func TestCollectorNilReceiverIsNoop(t *testing.T) {
	var c *Collector
	// None of these may panic: every method checks for a nil receiver.
	c.SetActiveNodes("run-1", "pool-a", 1)
	c.SetQueueDepth("run-1", "pool-a", 1)
	c.ObserveLaunchLatency("run-1", 1, "success", time.Millisecond)
	c.IncLaunched("run-1")
	c.IncFailed("run-1")
	c.IncSkipped("run-1")
	c.IncCycleAborted()
}

func TestObserveLaunchLatencyLabelsNodeID(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := New(registry)
	c.ObserveLaunchLatency("run-1", 7, "error", 5*time.Millisecond)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found bool
	for _, f := range families {
		if f.GetName() != "taskgraph_launch_latency_ms" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, lbl := range m.GetLabel() {
				if lbl.GetName() == "node_id" && lbl.GetValue() == "7" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Fatal("no launch_latency_ms sample carried node_id=7")
	}
}
