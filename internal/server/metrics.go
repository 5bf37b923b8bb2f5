package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/matzehuels/mindcraft/pkg/observability"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

const namespace = "mindcraft"

// Metrics implements every observability hook interface on top of a private
// Prometheus registry, and counts HTTP requests and websocket clients.
type Metrics struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	saves        *prometheus.CounterVec
	dropped      prometheus.Counter
	mapNodes     prometheus.Gauge
	mapEdges     prometheus.Gauge
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
	renders      *prometheus.CounterVec
	renderBytes  *prometheus.HistogramVec
	renderTime   *prometheus.HistogramVec
	cacheEvents  *prometheus.CounterVec
	requests     *prometheus.CounterVec
	requestTime  *prometheus.HistogramVec
	clients      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime and process collectors, on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_loads_total",
			Help:      "Map loads by status",
		}, []string{"status"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_saves_total",
			Help:      "Map saves by status",
		}, []string{"status"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "map_dropped_connections_total",
			Help:      "Connections dropped on load because an endpoint did not resolve",
		}),
		mapNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_nodes",
			Help:      "Nodes in the most recently loaded map",
		}),
		mapEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_edges",
			Help:      "Edges in the most recently loaded map",
		}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by backend, operation and status",
		}, []string{"backend", "op", "status"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "latency_seconds",
			Help:      "Store read and write latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"backend", "op"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "total",
			Help:      "Exports by format and status",
		}, []string{"format", "status"}),
		renderBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "size_bytes",
			Help:      "Export output size in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"format"}),
		renderTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Export duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"format"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Render cache hits, misses and sets",
		}, []string{"key_type", "event"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected websocket clients",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loads, m.saves, m.dropped, m.mapNodes, m.mapEdges,
		m.storeOps, m.storeLatency,
		m.renders, m.renderBytes, m.renderTime,
		m.cacheEvents,
		m.requests, m.requestTime, m.clients,
	)
	return m
}

// Registry returns the registry backing /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Register installs m as the global hooks for every event category.
func (m *Metrics) Register() {
	observability.SetPersistenceHooks(m)
	observability.SetStoreHooks(m)
	observability.SetRenderHooks(m)
	observability.SetCacheHooks(m)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLoad(_ context.Context, _ string, nodes, edges, dropped int, _ time.Duration, err error) {
	m.loads.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	m.dropped.Add(float64(dropped))
	m.mapNodes.Set(float64(nodes))
	m.mapEdges.Set(float64(edges))
}

func (m *Metrics) OnSave(_ context.Context, _ string, _, _ int, _ time.Duration, err error) {
	m.saves.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) OnRead(_ context.Context, backend, _ string, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, "read", status(err)).Inc()
	m.storeLatency.WithLabelValues(backend, "read").Observe(d.Seconds())
}

func (m *Metrics) OnWrite(_ context.Context, backend, _ string, _ int, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, "write", status(err)).Inc()
	m.storeLatency.WithLabelValues(backend, "write").Observe(d.Seconds())
}

func (m *Metrics) OnDelete(_ context.Context, backend, _ string, err error) {
	m.storeOps.WithLabelValues(backend, "delete", status(err)).Inc()
}

func (m *Metrics) OnRenderStart(context.Context, string, int) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	m.renders.WithLabelValues(format, status(err)).Inc()
	if err != nil {
		return
	}
	m.renderBytes.WithLabelValues(format).Observe(float64(size))
	m.renderTime.WithLabelValues(format).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) observeRequest(route string, code int, d time.Duration) {
	if code == 0 {
		code = 200
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestTime.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) setClients(n int) { m.clients.Set(float64(n)) }
