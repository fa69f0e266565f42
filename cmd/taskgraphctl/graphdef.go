package main

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/madjic/taskgraph/graph"
	"github.com/madjic/taskgraph/idgraph"
)

type poolDef struct {
	Name           string `yaml:"name"`
	MaxParallelism int    `yaml:"max_parallelism"`
}

// actionDef is the declarative action body a graph file can express without
// shelling out to arbitrary code. "sleep" is the only kind: it waits
// Duration and then succeeds, or fails with a synthetic error if Fail is
// set — enough to exercise every scheduling path from the command line.
type actionDef struct {
	Kind     string        `yaml:"kind"`
	Duration time.Duration `yaml:"duration"`
	Fail     bool          `yaml:"fail"`
}

type nodeDef struct {
	ID        string    `yaml:"id"`
	Weight    int       `yaml:"weight"`
	Pool      string    `yaml:"pool"`
	DependsOn []string  `yaml:"depends_on"`
	Action    actionDef `yaml:"action"`
}

type graphDef struct {
	GlobalCap      int       `yaml:"global_cap"`
	ResetAfterDone bool      `yaml:"reset_after_done"`
	Pools          []poolDef `yaml:"pools"`
	Nodes          []nodeDef `yaml:"nodes"`
}

func parseGraphDef(data []byte) (*graphDef, error) {
	var def graphDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("taskgraphctl: parse graph definition: %w", err)
	}
	if def.GlobalCap <= 0 {
		def.GlobalCap = 1
	}
	return &def, nil
}

// build constructs the runnable node set described by def. It uses a fresh
// idgraph.Builder so the YAML's own string ids drive dependency wiring; a
// node whose depends_on names an id later in the file (or never defined)
// fails here rather than producing a silently wrong graph.
func (def *graphDef) build() ([]*graph.Node, error) {
	pools := make(map[string]graph.Pool, len(def.Pools))
	for _, p := range def.Pools {
		if p.MaxParallelism <= 0 {
			return nil, fmt.Errorf("taskgraphctl: pool %q: max_parallelism must be >= 1", p.Name)
		}
		pools[p.Name] = graph.NewPool(p.MaxParallelism)
	}

	b := idgraph.NewBuilder()
	for _, n := range def.Nodes {
		pool := graph.DefaultPool
		if n.Pool != "" {
			p, ok := pools[n.Pool]
			if !ok {
				return nil, fmt.Errorf("taskgraphctl: node %q: unknown pool %q", n.ID, n.Pool)
			}
			pool = p
		}

		action, err := n.Action.build(n.ID)
		if err != nil {
			return nil, err
		}

		if _, err := b.AddOperationInPool(n.ID, n.Weight, pool, action, n.DependsOn...); err != nil {
			return nil, err
		}
	}
	return b.Nodes(), nil
}

func (a actionDef) build(nodeID string) (graph.Action, error) {
	switch a.Kind {
	case "", "sleep":
		return func(ctx context.Context) (any, error) {
			if a.Duration > 0 {
				select {
				case <-time.After(a.Duration):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			if a.Fail {
				return nil, fmt.Errorf("taskgraphctl: node %q: synthetic failure", nodeID)
			}
			return nil, nil
		}, nil
	default:
		return nil, fmt.Errorf("taskgraphctl: node %q: unknown action kind %q", nodeID, a.Kind)
	}
}
