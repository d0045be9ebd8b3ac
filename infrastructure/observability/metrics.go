package observability

import (
	"strconv"
	"time"

	"canvaschat/application/queries/bus"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for context assembly.
// It satisfies ports.ContextMetrics and bus.Metrics.
type Collector struct {
	registry *prometheus.Registry

	// Business metrics
	ContextsAssembled *prometheus.CounterVec
	NodesExcluded     *prometheus.CounterVec
	ChainLength       prometheus.Histogram

	// Query bus metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Store metrics
	BreakerStateChanges *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	contextsAssembled := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contexts_assembled_total",
			Help:      "Total number of assembled prompt contexts",
		},
		[]string{"duplicate_suppressed"},
	)

	nodesExcluded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_excluded_total",
			Help:      "Chain nodes that contributed no messages, by reason",
		},
		[]string{"reason"},
	)

	chainLength := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_length",
			Help:      "Number of nodes in assembled chains",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	queries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Query bus dispatches by query type and outcome",
		},
		[]string{"metric", "query"},
	)

	queryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query handler duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	breakerStateChanges := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_state_changes_total",
			Help:      "Circuit breaker transitions of the chat store",
		},
		[]string{"breaker", "to"},
	)

	registry.MustRegister(
		contextsAssembled,
		nodesExcluded,
		chainLength,
		queries,
		queryDuration,
		breakerStateChanges,
	)

	return &Collector{
		registry:            registry,
		ContextsAssembled:   contextsAssembled,
		NodesExcluded:       nodesExcluded,
		ChainLength:         chainLength,
		Queries:             queries,
		QueryDuration:       queryDuration,
		BreakerStateChanges: breakerStateChanges,
	}
}

// ObserveChainLength records the length of a built chain
func (c *Collector) ObserveChainLength(length int) {
	c.ChainLength.Observe(float64(length))
}

// RecordExclusion counts a node left out of a context
func (c *Collector) RecordExclusion(reason string) {
	c.NodesExcluded.WithLabelValues(reason).Inc()
}

// RecordAssembled counts an assembled context
func (c *Collector) RecordAssembled(duplicateSuppressed bool) {
	c.ContextsAssembled.WithLabelValues(strconv.FormatBool(duplicateSuppressed)).Inc()
}

// RecordBreakerState counts a circuit breaker transition
func (c *Collector) RecordBreakerState(name, to string) {
	c.BreakerStateChanges.WithLabelValues(name, to).Inc()
}

// Increment implements bus.Metrics
func (c *Collector) Increment(metric, label string) {
	c.Queries.WithLabelValues(metric, label).Inc()
}

// StartTimer implements bus.Metrics
func (c *Collector) StartTimer(metric, label string) bus.Timer {
	return &queryTimer{
		start:    time.Now(),
		observer: c.QueryDuration.WithLabelValues(label),
	}
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes the current metrics in the node exporter textfile format
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

type queryTimer struct {
	start    time.Time
	observer prometheus.Observer
}

func (t *queryTimer) Stop() {
	t.observer.Observe(time.Since(t.start).Seconds())
}
