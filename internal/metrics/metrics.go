// Package metrics exposes Prometheus metrics for profile merges, candidate
// searches, resume analyses and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resume_screener"

// Manager owns a private registry and every collector registered on it.
type Manager struct {
	registry *prometheus.Registry

	merges         *prometheus.CounterVec
	mergeDuration  prometheus.Histogram
	searches       *prometheus.CounterVec
	searchDuration prometheus.Histogram
	searchResults  prometheus.Histogram
	analyses       *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewManager creates a Manager with Go runtime and process collectors.
func NewManager() *Manager {
	reg := prometheus.NewRegistry()
	m := &Manager{
		registry: reg,
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_merges_total",
			Help:      "Skill profile merges by outcome.",
		}, []string{"outcome"}),
		mergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "profile_merge_duration_seconds",
			Help:      "Time spent merging an analysis into a profile.",
			Buckets:   prometheus.DefBuckets,
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_searches_total",
			Help:      "Candidate searches by outcome.",
		}, []string{"outcome"}),
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_search_duration_seconds",
			Help:      "Time spent ranking candidates.",
			Buckets:   prometheus.DefBuckets,
		}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_search_results",
			Help:      "Number of candidates returned per search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resume_analyses_total",
			Help:      "Resume analyses by outcome.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.merges, m.mergeDuration,
		m.searches, m.searchDuration, m.searchResults,
		m.analyses,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Registry returns the underlying registry, mainly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveMerge records one merge outcome.
func (m *Manager) ObserveMerge(outcome string, elapsed time.Duration) {
	m.merges.WithLabelValues(outcome).Inc()
	m.mergeDuration.Observe(elapsed.Seconds())
}

// ObserveSearch records one search outcome and its result count.
func (m *Manager) ObserveSearch(outcome string, results int, elapsed time.Duration) {
	m.searches.WithLabelValues(outcome).Inc()
	m.searchDuration.Observe(elapsed.Seconds())
	m.searchResults.Observe(float64(results))
}

// ObserveAnalysis records one resume analysis outcome.
func (m *Manager) ObserveAnalysis(outcome string) {
	m.analyses.WithLabelValues(outcome).Inc()
}

// ObserveHTTP records a finished request.
func (m *Manager) ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
