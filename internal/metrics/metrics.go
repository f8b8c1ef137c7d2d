// Package metrics defines Prometheus metrics for conceptmap and feeds them
// from the observability hooks.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	errs "github.com/matzehuels/conceptmap/pkg/errors"
	"github.com/matzehuels/conceptmap/pkg/observability"
)

// Metrics holds every collector. Create one per registry with [New].
type Metrics struct {
	MutationsTotal   *prometheus.CounterVec
	MutationDuration *prometheus.HistogramVec
	MutationsActive  prometheus.Gauge
	GraphNodes       prometheus.Gauge
	UndosTotal       *prometheus.CounterVec

	OracleRequests *prometheus.CounterVec
	OracleDuration *prometheus.HistogramVec
	OracleTokens   *prometheus.CounterVec
	OracleErrors   *prometheus.CounterVec

	CacheEvents *prometheus.CounterVec
	CacheBytes  *prometheus.CounterVec

	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_mutations_total",
				Help: "Graph mutations by kind and outcome code",
			},
			[]string{"kind", "code"},
		),
		MutationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conceptmap_mutation_duration_seconds",
				Help:    "Time from request to commit or rejection",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"kind"},
		),
		MutationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "conceptmap_mutations_in_flight",
			Help: "Mutations waiting on the oracle",
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "conceptmap_graph_nodes",
			Help: "Node count after the last committed mutation",
		}),
		UndosTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_undos_total",
				Help: "Undo requests by result",
			},
			[]string{"result"},
		),
		OracleRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_oracle_requests_total",
				Help: "Oracle calls by provider, model and kind",
			},
			[]string{"provider", "model", "kind"},
		),
		OracleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conceptmap_oracle_duration_seconds",
				Help:    "Oracle response time",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"provider", "model", "status"},
		),
		OracleTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_oracle_tokens_total",
				Help: "Tokens consumed by direction",
			},
			[]string{"provider", "model", "direction"},
		),
		OracleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_oracle_errors_total",
				Help: "Oracle failures by error code",
			},
			[]string{"provider", "model", "code"},
		),
		CacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_cache_events_total",
				Help: "Cache hits, misses and sets",
			},
			[]string{"key_type", "event"},
		),
		CacheBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_cache_written_bytes_total",
				Help: "Bytes written to the cache",
			},
			[]string{"key_type"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conceptmap_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conceptmap_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}

	reg.MustRegister(
		m.MutationsTotal, m.MutationDuration, m.MutationsActive, m.GraphNodes, m.UndosTotal,
		m.OracleRequests, m.OracleDuration, m.OracleTokens, m.OracleErrors,
		m.CacheEvents, m.CacheBytes,
		m.RequestDuration, m.RequestsTotal,
	)
	return m
}

// Install registers m as the global mutation, oracle and cache hooks.
func (m *Metrics) Install() {
	observability.SetMutationHooks(mutationHooks{m})
	observability.SetOracleHooks(oracleHooks{m})
	observability.SetCacheHooks(cacheHooks{m})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	s := strconv.Itoa(status)
	m.RequestsTotal.WithLabelValues(method, path, s).Inc()
	m.RequestDuration.WithLabelValues(method, path, s).Observe(d.Seconds())
}

func codeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "unknown"
}

type mutationHooks struct{ m *Metrics }

func (h mutationHooks) OnMutationStart(context.Context, string, string) {
	h.m.MutationsActive.Inc()
}

func (h mutationHooks) OnMutationComplete(_ context.Context, kind, _ string, nodeCount int, d time.Duration, err error) {
	h.m.MutationsActive.Dec()
	h.m.MutationsTotal.WithLabelValues(kind, codeLabel(err)).Inc()
	h.m.MutationDuration.WithLabelValues(kind).Observe(d.Seconds())
	if err == nil {
		h.m.GraphNodes.Set(float64(nodeCount))
	}
}

func (h mutationHooks) OnUndo(_ context.Context, ok bool) {
	result := "applied"
	if !ok {
		result = "boundary"
	}
	h.m.UndosTotal.WithLabelValues(result).Inc()
}

type oracleHooks struct{ m *Metrics }

func (h oracleHooks) OnRequest(_ context.Context, provider, model, kind string) {
	h.m.OracleRequests.WithLabelValues(provider, model, kind).Inc()
}

func (h oracleHooks) OnResponse(_ context.Context, provider, model string, status, in, out int, d time.Duration) {
	h.m.OracleDuration.WithLabelValues(provider, model, strconv.Itoa(status)).Observe(d.Seconds())
	h.m.OracleTokens.WithLabelValues(provider, model, "input").Add(float64(in))
	h.m.OracleTokens.WithLabelValues(provider, model, "output").Add(float64(out))
}

func (h oracleHooks) OnError(_ context.Context, provider, model string, err error) {
	h.m.OracleErrors.WithLabelValues(provider, model, codeLabel(err)).Inc()
}

type cacheHooks struct{ m *Metrics }

func (h cacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h cacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.m.CacheEvents.WithLabelValues(keyType, "set").Inc()
	h.m.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}
