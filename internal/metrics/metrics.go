// Package metrics exposes prometheus collectors for the map server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dataset state values reported by the dataset_state gauge.
const (
	StateNotLoaded = 0
	StateLoaded    = 1
	StateError     = 2
)

// Metrics groups all collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	LakesLoaded    prometheus.Gauge
	RecordsSkipped *prometheus.CounterVec
	DatasetState   prometheus.Gauge
	Tiles          *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lakemap",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"path", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lakemap",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
		LakesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lakemap",
			Name:      "lakes_loaded",
			Help:      "Number of lakes in the loaded dataset.",
		}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lakemap",
			Name:      "lake_records_skipped_total",
			Help:      "Dataset records dropped during validation, by reason.",
		}, []string{"reason"}),
		DatasetState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lakemap",
			Name:      "dataset_state",
			Help:      "Dataset load state: 0 not loaded, 1 loaded, 2 error.",
		}),
		Tiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lakemap",
			Name:      "tiles_processed_total",
			Help:      "Mirrored tiles by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		m.Requests,
		m.Duration,
		m.LakesLoaded,
		m.RecordsSkipped,
		m.DatasetState,
		m.Tiles,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Observe records one finished request. Route should be a bounded label,
// not the raw URL path.
func (m *Metrics) Observe(route string, code int, d time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.Duration.WithLabelValues(route).Observe(d.Seconds())
}
