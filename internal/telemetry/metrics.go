package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dashboard"

// Metrics holds the prometheus instruments of the ingest pipeline and the
// HTTP layer.
type Metrics struct {
	Ingest        *prometheus.CounterVec
	IngestRows    *prometheus.GaugeVec
	SkippedRows   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers every instrument on reg. Pass prometheus.NewRegistry() in
// tests to keep them isolated.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Ingest: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_total",
				Help:      "Dataset ingest attempts by outcome",
			},
			[]string{"dataset", "status"},
		),
		IngestRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ingest_rows",
				Help:      "Records currently held per dataset",
			},
			[]string{"dataset"},
		),
		SkippedRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingest_skipped_rows_total",
				Help:      "CSV rows dropped during normalization",
			},
			[]string{"dataset"},
		),
		StageDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Time spent per pipeline stage",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"dataset", "stage"},
		),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		gatherer: reg,
	}
}

// ObserveStage records the elapsed time of a pipeline stage. Safe on a nil receiver.
func (m *Metrics) ObserveStage(dataset, stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(dataset, stage).Observe(time.Since(start).Seconds())
}

func (m *Metrics) RecordIngest(dataset string, rows, skipped int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Ingest.WithLabelValues(dataset, "error").Inc()
		return
	}
	m.Ingest.WithLabelValues(dataset, "ok").Inc()
	m.IngestRows.WithLabelValues(dataset).Set(float64(rows))
	m.SkippedRows.WithLabelValues(dataset).Add(float64(skipped))
}

func (m *Metrics) RecordRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
