// Package metrics exposes sensor fetch and scan progress collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "silo_scanner"

// Fetch attempt results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics groups all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	fetchAttempts *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	silosScanned  *prometheus.CounterVec
	progress      prometheus.Gauge
	disconnected  prometheus.Gauge
	retryCycle    prometheus.Gauge
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_fetch_attempts_total",
			Help:      "Sensor API fetch attempts by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sensor_fetch_duration_seconds",
			Help:      "Latency of a single sensor API request.",
			Buckets:   prometheus.DefBuckets,
		}),
		silosScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "silos_scanned_total",
			Help:      "Silos processed by the scan controller, by outcome.",
		}, []string{"outcome"}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_progress_percent",
			Help:      "Progress of the current scan (100..130 during retry cycles).",
		}),
		disconnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "disconnected_silos",
			Help:      "Silos currently on the disconnected list.",
		}),
		retryCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scan_retry_cycle",
			Help:      "Current retry cycle, 0 outside the retry phase.",
		}),
	}
	reg.MustRegister(m.fetchAttempts, m.fetchDuration, m.silosScanned, m.progress, m.disconnected, m.retryCycle)
	return m
}

func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
	if err != nil {
		m.fetchAttempts.WithLabelValues(ResultError).Inc()
		return
	}
	m.fetchAttempts.WithLabelValues(ResultOK).Inc()
}

func (m *Metrics) SiloScanned(disconnected bool) {
	if m == nil {
		return
	}
	outcome := "connected"
	if disconnected {
		outcome = "disconnected"
	}
	m.silosScanned.WithLabelValues(outcome).Inc()
}

// SetScanState publishes the controller's progress gauges.
func (m *Metrics) SetScanState(progress float64, disconnected, retryCycle int) {
	if m == nil {
		return
	}
	m.progress.Set(progress)
	m.disconnected.Set(float64(disconnected))
	m.retryCycle.Set(float64(retryCycle))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
