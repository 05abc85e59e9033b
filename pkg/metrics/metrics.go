// Package metrics exports Prometheus metrics through the observability hooks.
//
// A [Metrics] value implements every hook interface of
// [observability]. Register it once at startup:
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.Install()
//
// and expose the registry with promhttp.Handler. All metric names carry the
// catdiagram_ prefix.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/catdiagram/pkg/observability"
)

const namespace = "catdiagram"

// Metrics holds the collectors fed by the hooks.
type Metrics struct {
	LayoutDuration *prometheus.HistogramVec
	Checks         *prometheus.CounterVec
	CheckDuration  prometheus.Histogram
	Expansions     prometheus.Counter
	Embeddings     prometheus.Counter
	SearchAborts   *prometheus.CounterVec
	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	CacheOps       *prometheus.CounterVec
	CacheBytes     prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	HTTPInFlight   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LayoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_duration_seconds",
			Help:      "Time spent computing grid layouts.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"mode", "outcome"}),
		Checks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Commutativity checks by status and reason.",
		}, []string{"status", "reason"}),
		CheckDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Time spent in commutativity checks.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		Expansions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_expansions_total",
			Help:      "Embedding search nodes expanded.",
		}),
		Embeddings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_embeddings_total",
			Help:      "Axiom embeddings found.",
		}),
		SearchAborts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_aborts_total",
			Help:      "Embedding searches stopped early.",
		}, []string{"reason"}),
		Renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Artifacts rendered by format.",
		}, []string{"format", "outcome"}),
		RenderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent rendering a request's formats.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by entry kind.",
		}, []string{"kind", "op"}),
		CacheBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests being served.",
		}),
	}
}

// Install registers m as the pipeline, search, cache and HTTP hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetSearchHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// =============================================================================
// Pipeline
// =============================================================================

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, mode string, d time.Duration, err error) {
	m.LayoutDuration.WithLabelValues(mode, outcome(err)).Observe(d.Seconds())
}

func (m *Metrics) OnCheckStart(context.Context, int, int) {}

func (m *Metrics) OnCheckComplete(_ context.Context, status, reason string, expansions int64, d time.Duration, err error) {
	if err != nil {
		status, reason = "error", ""
	}
	if reason == "" {
		reason = "none"
	}
	m.Checks.WithLabelValues(status, reason).Inc()
	m.CheckDuration.Observe(d.Seconds())
	m.Expansions.Add(float64(expansions))
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	for _, f := range formats {
		m.Renders.WithLabelValues(f, outcome(err)).Inc()
	}
	m.RenderDuration.Observe(d.Seconds())
}

// =============================================================================
// Search
// =============================================================================

func (m *Metrics) OnAxiomSearched(_ context.Context, _ int, embeddings int, _ int64) {
	m.Embeddings.Add(float64(embeddings))
}

func (m *Metrics) OnSearchAborted(_ context.Context, reason string) {
	m.SearchAborts.WithLabelValues(reason).Inc()
}

// =============================================================================
// Cache
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, kind string) {
	m.CacheOps.WithLabelValues(kind, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, kind string) {
	m.CacheOps.WithLabelValues(kind, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, kind string, size int) {
	m.CacheOps.WithLabelValues(kind, "set").Inc()
	m.CacheBytes.Add(float64(size))
}

// =============================================================================
// HTTP
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPInFlight.Dec()
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.SearchHooks   = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)
