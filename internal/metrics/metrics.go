// Package metrics exposes Prometheus counters for the fetcher and the query runtime.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipespark"

// Metrics holds the collectors on a private registry so tests and several
// commands can create their own without clashing. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	FetchRequests *prometheus.CounterVec
	FetchPartial  prometheus.Counter
	FetchFallback *prometheus.CounterVec

	Resolved     *prometheus.CounterVec
	LiveDuration *prometheus.HistogramVec
	CacheLookups *prometheus.CounterVec

	SnapshotReloads *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
}

// New registers all collectors, plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FetchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_requests_total",
				Help:      "Build-time fetches per resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		FetchPartial: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_partial_total",
				Help:      "Paginated recipe fetches that stopped after page 1 failed part way",
			},
		),
		FetchFallback: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_fallback_total",
				Help:      "Resources kept from local files because the live fetch failed",
			},
			[]string{"resource"},
		),
		Resolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolve_total",
				Help:      "Resolved queries by resource, source and staleness",
			},
			[]string{"resource", "source", "stale"},
		),
		LiveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "live_fetch_duration_seconds",
				Help:      "Duration of live content API calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource", "outcome"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Response cache lookups by result",
			},
			[]string{"result"},
		),
		SnapshotReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_reloads_total",
				Help:      "Snapshot reloads triggered by file changes",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route pattern and status code",
			},
			[]string{"route", "status"},
		),
	}

	m.registry.MustRegister(
		m.FetchRequests,
		m.FetchPartial,
		m.FetchFallback,
		m.Resolved,
		m.LiveDuration,
		m.CacheLookups,
		m.SnapshotReloads,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch counts one build-time fetch.
func (m *Metrics) ObserveFetch(resource string, err error) {
	if m == nil {
		return
	}
	m.FetchRequests.WithLabelValues(resource, outcome(err)).Inc()
}

// ObservePartial counts a paginated fetch that kept a partial result.
func (m *Metrics) ObservePartial() {
	if m == nil {
		return
	}
	m.FetchPartial.Inc()
}

// ObserveFallback counts a resource kept from local files.
func (m *Metrics) ObserveFallback(resource string) {
	if m == nil {
		return
	}
	m.FetchFallback.WithLabelValues(resource).Inc()
}

// ObserveResolve counts one resolved query.
func (m *Metrics) ObserveResolve(resource, source string, stale bool) {
	if m == nil {
		return
	}
	s := "false"
	if stale {
		s = "true"
	}
	m.Resolved.WithLabelValues(resource, source, s).Inc()
}

// ObserveLive records the duration of a live call started at start.
func (m *Metrics) ObserveLive(resource string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.LiveDuration.WithLabelValues(resource, outcome(err)).Observe(time.Since(start).Seconds())
}

// ObserveCache counts a cache lookup; result is hit, stale or miss.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveReload counts a snapshot reload.
func (m *Metrics) ObserveReload(err error) {
	if m == nil {
		return
	}
	m.SnapshotReloads.WithLabelValues(outcome(err)).Inc()
}

// ObserveHTTP counts one served request.
func (m *Metrics) ObserveHTTP(route string, status int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
