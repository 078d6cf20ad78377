package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vininfo"

// Email kinds
const (
	KindReminder     = "reminder"
	KindMarketing    = "marketing"
	KindVerification = "verification"
)

// Metrics groups the service collectors on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	emails       *prometheus.CounterVec
	dispatchRuns *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Emails handed to the provider by kind and outcome.",
		}, []string{"kind", "status"}),
		dispatchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_runs_total",
			Help:      "Reminder dispatch runs by trigger.",
		}, []string{"trigger"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.emails,
		m.dispatchRuns,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// EmailSent counts a delivered email
func (m *Metrics) EmailSent(kind string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(kind, "sent").Inc()
}

// EmailFailed counts a failed email
func (m *Metrics) EmailFailed(kind string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(kind, "failed").Inc()
}

// DispatchRun counts a dispatcher run started by trigger ("cron", "scheduler").
func (m *Metrics) DispatchRun(trigger string) {
	if m == nil {
		return
	}
	m.dispatchRuns.WithLabelValues(trigger).Inc()
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
