package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	TranslationsTotal   *prometheus.CounterVec
	TranslationDuration prometheus.Histogram
	ElementsTotal       prometheus.Counter
	ConnectionsActive   prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.TranslationsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "airflownet_translations_total",
			Help: "Total number of translations",
		},
		[]string{"result"}, // valid, failed, rejected
	)
	m.TranslationDuration = promauto.With(reg).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "airflownet_translation_duration_seconds",
			Help:    "Duration of translations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)
	m.ElementsTotal = promauto.With(reg).NewCounter(
		prometheus.CounterOpts{
			Name: "airflownet_elements_derived_total",
			Help: "Total number of derived airflow elements",
		},
	)
	m.ConnectionsActive = promauto.With(reg).NewGauge(
		prometheus.GaugeOpts{
			Name: "airflownet_websocket_connections",
			Help: "Number of open websocket connections",
		},
	)
	return m
}

// RecordTranslation records a finished translation.
func (m *Metrics) RecordTranslation(result string, duration time.Duration) {
	m.TranslationsTotal.WithLabelValues(result).Inc()
	m.TranslationDuration.Observe(duration.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
