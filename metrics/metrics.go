// Package metrics provides a Prometheus-backed observability collector for
// the scheduler, grounded on github.com/dshills/langgraph-go's
// graph/metrics.go PrometheusMetrics: the same factory-via-promauto shape,
// narrowed to this scheduler's own signals (no LLM merge-conflict or token
// metrics — not applicable here) and with a pool_id label added since pool
// capacity is this scheduler's central resource.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records scheduler-run metrics. The zero value is not usable;
// construct with New.
type Collector struct {
	activeNodes  *prometheus.GaugeVec
	queueDepth   *prometheus.GaugeVec
	launchLat    *prometheus.HistogramVec
	launched     *prometheus.CounterVec
	failed       *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	cycleAborted prometheus.Counter
}

// New registers every metric with registry and returns a Collector. A nil
// registry uses prometheus.DefaultRegisterer.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	f := promauto.With(registry)

	return &Collector{
		activeNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "taskgraph",
			Name:      "active_nodes",
			Help:      "Number of nodes currently Running, per pool.",
		}, []string{"run_id", "pool_id"}),
		queueDepth: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "taskgraph",
			Name:      "queue_depth",
			Help:      "Number of nodes pending launch, per pool.",
		}, []string{"run_id", "pool_id"}),
		launchLat: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskgraph",
			Name:      "launch_latency_ms",
			Help:      "Time from launch to terminal state, in milliseconds.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"run_id", "node_id", "status"}),
		launched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskgraph",
			Name:      "nodes_launched_total",
			Help:      "Total nodes launched.",
		}, []string{"run_id"}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskgraph",
			Name:      "nodes_failed_total",
			Help:      "Total nodes that ended Failed.",
		}, []string{"run_id"}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskgraph",
			Name:      "nodes_skipped_total",
			Help:      "Total nodes that ended Skipped.",
		}, []string{"run_id"}),
		cycleAborted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "taskgraph",
			Name:      "cycle_aborted_total",
			Help:      "Total runs aborted by CycleError before launching any node.",
		}),
	}
}

func (c *Collector) SetActiveNodes(runID, poolID string, n int) {
	if c == nil {
		return
	}
	c.activeNodes.WithLabelValues(runID, poolID).Set(float64(n))
}

func (c *Collector) SetQueueDepth(runID, poolID string, n int) {
	if c == nil {
		return
	}
	c.queueDepth.WithLabelValues(runID, poolID).Set(float64(n))
}

func (c *Collector) ObserveLaunchLatency(runID string, nodeID int64, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.launchLat.WithLabelValues(runID, strconv.FormatInt(nodeID, 10), status).Observe(float64(d.Milliseconds()))
}

func (c *Collector) IncLaunched(runID string) {
	if c == nil {
		return
	}
	c.launched.WithLabelValues(runID).Inc()
}

func (c *Collector) IncFailed(runID string) {
	if c == nil {
		return
	}
	c.failed.WithLabelValues(runID).Inc()
}

func (c *Collector) IncSkipped(runID string) {
	if c == nil {
		return
	}
	c.skipped.WithLabelValues(runID).Inc()
}

func (c *Collector) IncCycleAborted() {
	if c == nil {
		return
	}
	c.cycleAborted.Inc()
}
