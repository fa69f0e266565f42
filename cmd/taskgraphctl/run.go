package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/madjic/taskgraph/audit"
	"github.com/madjic/taskgraph/graph"
	"github.com/madjic/taskgraph/graph/emit"
	"github.com/madjic/taskgraph/metrics"
)

func newRunCmd() *cobra.Command {
	var (
		globalCap      int
		resetAfterDone bool
		logFormat      string
		auditSQLite    string
		metricsAddr    string
		actionTimeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <graph.yaml>",
		Short: "Load a graph definition and execute it to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("taskgraphctl: read %s: %w", args[0], err)
			}

			def, err := parseGraphDef(data)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("global-cap") {
				def.GlobalCap = globalCap
			}
			if cmd.Flags().Changed("reset-after-done") {
				def.ResetAfterDone = resetAfterDone
			}

			nodes, err := def.build()
			if err != nil {
				return err
			}

			var emitter emit.Emitter
			switch logFormat {
			case "json":
				emitter = emit.NewLogEmitter(cmd.OutOrStdout(), true)
			case "", "text":
				emitter = emit.NewLogEmitter(cmd.OutOrStdout(), false)
			default:
				return fmt.Errorf("taskgraphctl: unknown --log-format %q", logFormat)
			}
			opts := []graph.ExecuteOption{graph.WithEmitter(emitter)}

			registry := prometheus.NewRegistry()
			opts = append(opts, graph.WithMetrics(metrics.New(registry)))

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
				server := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					_ = server.ListenAndServe()
				}()
				defer server.Close()
			}

			if auditSQLite != "" {
				store, err := audit.NewSQLiteStore(auditSQLite)
				if err != nil {
					return err
				}
				defer store.Close()
				opts = append(opts, graph.WithAuditStore(store))
			}

			if actionTimeout > 0 {
				opts = append(opts, graph.WithActionTimeout(actionTimeout))
			}

			if err := graph.Execute(cmd.Context(), def.GlobalCap, nodes, def.ResetAfterDone, opts...); err != nil {
				return err
			}
			return reportOutcome(cmd, nodes)
		},
	}

	cmd.Flags().IntVar(&globalCap, "global-cap", 1, "maximum concurrent default-pool operations (overrides the graph file)")
	cmd.Flags().BoolVar(&resetAfterDone, "reset-after-done", false, "reset every node to NotStarted once the run completes (overrides the graph file)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "event log format: text or json")
	cmd.Flags().StringVar(&auditSQLite, "audit-sqlite", "", "path to a SQLite file recording each node's terminal outcome")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address for the duration of the run")
	cmd.Flags().DurationVar(&actionTimeout, "action-timeout", 0, "maximum duration for a single node's action (0 = unlimited)")

	return cmd
}

func reportOutcome(cmd *cobra.Command, nodes []*graph.Node) error {
	failed := 0
	for _, n := range nodes {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", n.ID(), n.StateValue())
		if n.StateValue() == graph.Failed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("taskgraphctl: %d node(s) failed", failed)
	}
	return nil
}
