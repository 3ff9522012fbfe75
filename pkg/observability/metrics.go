package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsNamespace prefixes every metric name.
const metricsNamespace = "eclass"

// Metrics implements [ExtractHooks] and [CacheHooks] on top of Prometheus
// collectors. A batch run registers it, extracts, and then writes the
// registry to a textfile for node_exporter to pick up.
//
// All operations are safe for concurrent use.
type Metrics struct {
	// LoadsTotal counts graph loads. Labels: status (success, error)
	LoadsTotal *prometheus.CounterVec

	// GraphClasses is the class count of the last loaded graph.
	GraphClasses prometheus.Gauge

	// GraphNodes is the node count of the last loaded graph.
	GraphNodes prometheus.Gauge

	// ExtractionsTotal counts extractor runs. Labels: extractor, status
	ExtractionsTotal *prometheus.CounterVec

	// ExtractSeconds measures extractor run time. Labels: extractor
	ExtractSeconds *prometheus.HistogramVec

	// CacheRequestsTotal counts cache lookups. Labels: key_type, result (hit, miss)
	CacheRequestsTotal *prometheus.CounterVec

	// CacheWrittenBytes counts bytes stored in the cache. Labels: key_type
	CacheWrittenBytes *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// It panics if they are already registered there.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoadsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "loads_total",
			Help:      "Number of e-graph loads by status",
		}, []string{"status"}),
		GraphClasses: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_classes",
			Help:      "Class count of the last loaded e-graph",
		}),
		GraphNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "graph_nodes",
			Help:      "Node count of the last loaded e-graph",
		}),
		ExtractionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "extractions_total",
			Help:      "Number of extractor runs by extractor and status",
		}, []string{"extractor", "status"}),
		ExtractSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "extract_seconds",
			Help:      "Extractor run time",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"extractor"}),
		CacheRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		CacheWrittenBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),
	}
}

// Install registers m as both the extraction and the cache hooks.
func (m *Metrics) Install() {
	SetExtractHooks(m)
	SetCacheHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, classCount, nodeCount int, _ time.Duration, err error) {
	m.LoadsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.GraphClasses.Set(float64(classCount))
		m.GraphNodes.Set(float64(nodeCount))
	}
}

func (m *Metrics) OnExtractStart(context.Context, string, int) {}

func (m *Metrics) OnExtractComplete(_ context.Context, extractor string, duration time.Duration, err error) {
	m.ExtractionsTotal.WithLabelValues(extractor, status(err)).Inc()
	if err == nil {
		m.ExtractSeconds.WithLabelValues(extractor).Observe(duration.Seconds())
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheRequestsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheRequestsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheWrittenBytes.WithLabelValues(keyType).Add(float64(size))
}

// WriteTextfile writes everything registered in g to path in the Prometheus
// text format, atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
