// Package metrics implements the scheduler.Metrics and topic-level
// collectors HORUS exposes over /metrics, the same promauto-backed
// pattern the teacher's monitoring package uses for its HTTP/gRPC
// surface, retargeted at tick timing and channel backpressure.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the scheduler, topic registry,
// and log sink report through. Each instance owns a private registry so
// tests (and multiple horusd instances in one process) can construct more
// than one without tripping duplicate-collector panics against the global
// default registry.
type Metrics struct {
	registry *prometheus.Registry

	TickDuration     prometheus.Histogram
	NodeTickDuration *prometheus.HistogramVec
	NodeOverruns     *prometheus.CounterVec
	NodesRunning     prometheus.Gauge
	NodesCrashed     prometheus.Gauge

	TopicPublishes *prometheus.CounterVec
	TopicDrops     *prometheus.CounterVec
	SubscriberLag  *prometheus.GaugeVec

	LogRecords prometheus.Counter

	Uptime    prometheus.Gauge
	startTime time.Time
}

// New builds HORUS's metric collectors against a fresh private registry.
// Use Registry() to serve it from the introspection HTTP handler.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "horus_scheduler_tick_duration_seconds",
			Help:    "Wall-clock duration of one full scheduler tick across all nodes",
			Buckets: []float64{.0005, .001, .002, .004, .008, .0133, .0167, .02, .05, .1},
		}),
		NodeTickDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "horus_node_tick_duration_seconds",
			Help:    "Duration of a single node's tick() call",
			Buckets: []float64{.0001, .0005, .001, .002, .004, .008, .0133, .0167, .02, .05},
		}, []string{"node"}),
		NodeOverruns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "horus_node_overruns_total",
			Help: "Total number of ticks where a node's tick() exceeded the scheduler period",
		}, []string{"node"}),
		NodesRunning: factory.NewGauge(prometheus.GaugeOpts{
			Name: "horus_nodes_running",
			Help: "Number of nodes currently in the running state",
		}),
		NodesCrashed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "horus_nodes_crashed",
			Help: "Number of nodes that have crashed (a tick() call panicked)",
		}),

		TopicPublishes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "horus_topic_publishes_total",
			Help: "Total number of messages published to a topic",
		}, []string{"topic"}),
		TopicDrops: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "horus_topic_drops_total",
			Help: "Total number of messages a subscriber dropped because the writer overran its ring slot",
		}, []string{"topic"}),
		SubscriberLag: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "horus_topic_subscriber_lag",
			Help: "Difference between a topic's write sequence and a subscriber's cursor",
		}, []string{"topic", "node"}),

		LogRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "horus_logsink_records_total",
			Help: "Total number of records appended to the bounded log sink",
		}),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "horus_uptime_seconds",
			Help: "Seconds since this horusd process started",
		}),
	}

	go m.trackUptime()
	return m
}

// Registry returns the private Prometheus registry this instance's
// collectors were registered against, for the introspection HTTP handler to
// serve.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) trackUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// ObserveTick implements scheduler.Metrics.
func (m *Metrics) ObserveTick(durationNs int64) {
	m.TickDuration.Observe(float64(durationNs) / 1e9)
}

// ObserveNodeTick implements scheduler.Metrics.
func (m *Metrics) ObserveNodeTick(node string, durationNs int64) {
	m.NodeTickDuration.WithLabelValues(node).Observe(float64(durationNs) / 1e9)
}

// IncOverrun implements scheduler.Metrics.
func (m *Metrics) IncOverrun(node string) {
	m.NodeOverruns.WithLabelValues(node).Inc()
}

// RecordPublish is called by a publishing handle's recorder to bump
// per-topic publish volume.
func (m *Metrics) RecordPublish(topic string) {
	m.TopicPublishes.WithLabelValues(topic).Inc()
}

// RecordDrop adds n to a topic's total dropped-message count, observed from
// a subscriber's Dropped() delta between receives.
func (m *Metrics) RecordDrop(topic string, n uint64) {
	if n == 0 {
		return
	}
	m.TopicDrops.WithLabelValues(topic).Add(float64(n))
}

// SetSubscriberLag records the gap between a topic's write sequence and one
// subscriber's cursor.
func (m *Metrics) SetSubscriberLag(topic, node string, lag uint64) {
	m.SubscriberLag.WithLabelValues(topic, node).Set(float64(lag))
}

// SetNodeCounts updates the running/crashed node gauges from a scheduler
// snapshot.
func (m *Metrics) SetNodeCounts(running, crashed int) {
	m.NodesRunning.Set(float64(running))
	m.NodesCrashed.Set(float64(crashed))
}

// IncLogRecord implements the logsink observer hook.
func (m *Metrics) IncLogRecord() {
	m.LogRecords.Inc()
}
