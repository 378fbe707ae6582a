// Package prom implements the observability hooks with Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	m.Register()  // installs the hooks globally
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/bookplot/pkg/observability"
)

const namespace = "bookplot"

// Metrics holds the collectors behind every hook.
type Metrics struct {
	stageDuration  *prometheus.HistogramVec
	stageErrors    *prometheus.CounterVec
	gamesTotal     prometheus.Counter
	fitIterations  prometheus.Histogram
	fitUnconverged prometheus.Counter
	cacheEvents    *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpErrors     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		stageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Pipeline stages that returned an error.",
		}, []string{"stage"}),
		gamesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_aggregated_total",
			Help:      "Games scored into opening books.",
		}),
		fitIterations: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_iterations",
			Help:      "Fixed-point iterations per Dirichlet fit.",
			Buckets:   prometheus.ExponentialBuckets(10, 2, 11),
		}),
		fitUnconverged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fit_unconverged_total",
			Help:      "Fits that stopped at the iteration limit.",
		}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_events_total",
			Help:      "Cache hits, misses and writes by key type.",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API responses by route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "API requests that failed with an error.",
		}, []string{"method", "route"}),
	}
}

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPipelineHooks(pipelineHooks{m})
	observability.SetCacheHooks(cacheHooks{m})
	observability.SetHTTPHooks(httpHooks{m})
}

func (m *Metrics) stageDone(stage string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

type pipelineHooks struct{ m *Metrics }

func (pipelineHooks) OnAggregateStart(context.Context, string) {}

func (h pipelineHooks) OnAggregateComplete(_ context.Context, _ string, games, _ int, d time.Duration, err error) {
	h.m.gamesTotal.Add(float64(games))
	h.m.stageDone("aggregate", d, err)
}

func (pipelineHooks) OnFitStart(context.Context, int) {}

func (h pipelineHooks) OnFitComplete(_ context.Context, iterations int, converged bool, d time.Duration, err error) {
	h.m.fitIterations.Observe(float64(iterations))
	if !converged {
		h.m.fitUnconverged.Inc()
	}
	h.m.stageDone("fit", d, err)
}

func (pipelineHooks) OnRenderStart(context.Context, []string) {}

func (h pipelineHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	h.m.stageDone("render", d, err)
}

type cacheHooks struct{ m *Metrics }

func (h cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

type httpHooks struct{ m *Metrics }

func (httpHooks) OnRequest(context.Context, string, string) {}

func (h httpHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (h httpHooks) OnError(_ context.Context, method, route string, _ error) {
	h.m.httpErrors.WithLabelValues(method, route).Inc()
}
