package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of one server instance.
type Metrics struct {
	registry *prometheus.Registry

	// Tool metrics
	ToolCalls   *prometheus.CounterVec
	ToolLatency *prometheus.HistogramVec

	// Upstream API metrics
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec

	// Report metrics
	ReportRows *prometheus.HistogramVec

	// Write metrics
	Mutations *prometheus.CounterVec
}

// NewMetrics creates the metrics on a private registry, so several servers
// (or tests) can coexist in one process.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		ToolCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total tool invocations by outcome",
			},
			[]string{"tool", "outcome"},
		),
		ToolLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_latency_seconds",
				Help:      "Tool invocation latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool"},
		),

		UpstreamRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Google Ads API requests by operation and HTTP status",
			},
			[]string{"operation", "status"},
		),
		UpstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_latency_seconds",
				Help:      "Google Ads API request latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),

		ReportRows: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_rows",
				Help:      "Rows aggregated per analytics report",
				Buckets:   []float64{0, 10, 50, 100, 200, 500, 1000, 5000},
			},
			[]string{"report"},
		),

		Mutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Write operations by entity and mode (dry_run, applied, rejected)",
			},
			[]string{"entity", "mode"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler for this instance.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveTool records a tool invocation.
func (m *Metrics) ObserveTool(tool, outcome string, latency time.Duration) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolLatency.WithLabelValues(tool).Observe(latency.Seconds())
}

// ObserveUpstream records a Google Ads API request.
func (m *Metrics) ObserveUpstream(operation, status string, latency time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(operation, status).Inc()
	m.UpstreamLatency.WithLabelValues(operation).Observe(latency.Seconds())
}

// ObserveRows records how many rows fed a report.
func (m *Metrics) ObserveRows(report string, rows int) {
	if m == nil {
		return
	}
	m.ReportRows.WithLabelValues(report).Observe(float64(rows))
}

// CountMutation records a write by mode.
func (m *Metrics) CountMutation(entity, mode string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(entity, mode).Inc()
}
