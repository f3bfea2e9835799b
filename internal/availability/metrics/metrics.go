// Package metrics holds the Prometheus collectors of the availability service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hostavail/internal/availability/domain"
)

type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	decisions       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	decisionLatency prometheus.Histogram
	cacheLookups    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New builds a private registry with the service collectors plus the Go
// runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_decisions_total",
			Help: "Availability decisions by outcome",
		}, []string{"outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_rejections_total",
			Help: "Rejected candidate users by reason and assignment",
		}, []string{"reason", "assignment"}),
		decisionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "availability_decision_duration_seconds",
			Help:    "Time spent deciding availability, fetches included",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_event_type_cache_lookups_total",
			Help: "Event type cache lookups by result",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}

	registry.MustRegister(
		m.decisions,
		m.rejections,
		m.decisionLatency,
		m.cacheLookups,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveDecision records a finished decision. A nil decision means the
// request failed before any verdict was reached.
func (m *Metrics) ObserveDecision(decision *domain.Decision, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.decisionLatency.Observe(elapsed.Seconds())

	switch {
	case decision == nil:
		m.decisions.WithLabelValues("error").Inc()
		return
	case decision.Accepted():
		m.decisions.WithLabelValues("accepted").Inc()
	default:
		m.decisions.WithLabelValues("rejected").Inc()
	}

	for _, v := range decision.Verdicts {
		if v.IsAvailable {
			continue
		}
		m.rejections.WithLabelValues(string(v.Reason), v.User.Assignment.String()).Inc()
	}
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
