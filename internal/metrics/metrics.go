package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	parses        *prometheus.CounterVec
	parseNodes    *prometheus.HistogramVec
	revisionCalls *prometheus.CounterVec
	exportsFetch  *prometheus.CounterVec
	driveDuration *prometheus.HistogramVec
}

// New creates collectors on a fresh registry, along with the Go runtime
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		parses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ideagraph_parses_total",
				Help: "Mind map parses by source format and result",
			},
			[]string{"format", "result"},
		),
		parseNodes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ideagraph_parse_nodes",
				Help:    "Number of nodes in each parsed mind map",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"format"},
		),
		revisionCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ideagraph_revision_listings_total",
				Help: "Revision listing calls by result",
			},
			[]string{"result"},
		),
		exportsFetch: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ideagraph_revision_exports_total",
				Help: "Revision plain-text exports by outcome (fetched, placeholder, error)",
			},
			[]string{"outcome"},
		),
		driveDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ideagraph_drive_request_duration_seconds",
				Help:    "Duration of Drive API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// ObserveParse records one parse attempt.
func (m *Metrics) ObserveParse(format string, nodes int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.parses.WithLabelValues(format, "error").Inc()
		return
	}
	m.parses.WithLabelValues(format, "ok").Inc()
	m.parseNodes.WithLabelValues(format).Observe(float64(nodes))
}

// ObserveListing records one revision listing call.
func (m *Metrics) ObserveListing(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.revisionCalls.WithLabelValues(result).Inc()
}

// ObserveExport records the outcome of one revision export.
func (m *Metrics) ObserveExport(outcome string) {
	if m == nil {
		return
	}
	m.exportsFetch.WithLabelValues(outcome).Inc()
}

// ObserveDrive records the duration in seconds of a Drive call.
func (m *Metrics) ObserveDrive(op string, seconds float64) {
	if m == nil {
		return
	}
	m.driveDuration.WithLabelValues(op).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
