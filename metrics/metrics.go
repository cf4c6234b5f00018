package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Domain metrics
	OTPsIssued        *prometheus.CounterVec
	OTPVerifications  *prometheus.CounterVec
	DocumentsUploaded prometheus.Counter
	DocumentDownloads prometheus.Counter
	InvoicesOverdue   prometheus.Counter
	WSConnections     prometheus.Gauge
}

// New creates and registers all application metrics on a private registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),

		OTPsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otps_issued_total",
			Help:      "Total number of one-time codes issued",
		}, []string{"purpose"}),
		OTPVerifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_verifications_total",
			Help:      "One-time code verifications by outcome",
		}, []string{"purpose", "result"}),
		DocumentsUploaded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_uploaded_total",
			Help:      "Total number of documents uploaded",
		}),
		DocumentDownloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_downloads_total",
			Help:      "Total number of signed download links handed out",
		}),
		InvoicesOverdue: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_marked_overdue_total",
			Help:      "Invoices moved to Overdue by the scheduler",
		}),
		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Current number of open activity websocket connections",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
