// Package metrics owns the prometheus registry and the pipeline collectors.
// A nil *Metrics is valid and records nothing
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const ns = "supplysync"

// Metrics bundles the collectors on a private registry
type Metrics struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	crawlPages *prometheus.CounterVec
	staged     prometheus.Counter
	suppressed *prometheus.CounterVec

	diffRows    *prometheus.CounterVec
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec

	schedulerTriggers *prometheus.CounterVec
}

// New builds and registers every collector plus the go/process collectors
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 120},
		}, []string{"method", "route", "status"}),
		crawlPages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "crawl_pages_total",
			Help: "Pages visited by the crawler by page kind and outcome.",
		}, []string{"kind", "outcome"}),
		staged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "staged_total",
			Help: "Records written to staging.",
		}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "suppressed_total",
			Help: "Extracted records dropped before staging, by reason.",
		}, []string{"reason"}),
		diffRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "diff_rows_total",
			Help: "Diff rows written by type.",
		}, []string{"type"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "import_runs_total",
			Help: "Finished import runs by type and status.",
		}, []string{"type", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "import_run_duration_seconds",
			Help:    "Wall time of import runs.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"type"}),
		schedulerTriggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "scheduler_triggers_total",
			Help: "Refresh jobs triggered by the scheduler by outcome.",
		}, []string{"outcome"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpLatency,
		m.crawlPages, m.staged, m.suppressed,
		m.diffRows, m.runs, m.runDuration,
		m.schedulerTriggers,
	)
	return m
}

// Registry exposes the registry for tests and custom collectors
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// RecordRequest counts one HTTP request
func (m *Metrics) RecordRequest(method, route string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	status := classifyStatus(statusCode)
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// CrawlPage counts a visited page, kind is list|detail|series|seed, outcome ok|failed
func (m *Metrics) CrawlPage(kind, outcome string) {
	if m == nil {
		return
	}
	m.crawlPages.WithLabelValues(kind, outcome).Inc()
}

// Staged counts one staged record
func (m *Metrics) Staged() {
	if m == nil {
		return
	}
	m.staged.Inc()
}

// Suppressed counts one dropped record
func (m *Metrics) Suppressed(reason string) {
	if m == nil {
		return
	}
	m.suppressed.WithLabelValues(reason).Inc()
}

// DiffRows adds n rows of a diff type
func (m *Metrics) DiffRows(diffType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.diffRows.WithLabelValues(diffType).Add(float64(n))
}

// RunFinished records a finished run
func (m *Metrics) RunFinished(runType, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(runType, status).Inc()
	m.runDuration.WithLabelValues(runType).Observe(d.Seconds())
}

// SchedulerTrigger records one scheduler-triggered refresh outcome: ok|failed|locked
func (m *Metrics) SchedulerTrigger(outcome string) {
	if m == nil {
		return
	}
	m.schedulerTriggers.WithLabelValues(outcome).Inc()
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}
