// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapcrown_dataset_loads_total",
		Help: "Dataset fetches by category and result",
	}, []string{"category", "result"})
	DatasetLoadDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapcrown_dataset_load_duration_ms",
		Help:    "Dataset fetch and parse duration in milliseconds",
		Buckets: []float64{5, 20, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"category"})
	EnrichRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapcrown_enrich_requests_total",
		Help: "External enrichment calls by service and result",
	}, []string{"service", "result"})
	EnrichCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapcrown_enrich_cache_total",
		Help: "Enrichment cache lookups by kind and outcome",
	}, []string{"kind", "outcome"})
	QuizAnswersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mapcrown_quiz_answers_total",
		Help: "Quiz answers by mode and correctness",
	}, []string{"mode", "result"})
	StaleWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mapcrown_stale_enrichment_discarded_total",
		Help: "Enrichment results dropped because the selection changed",
	})
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mapcrown_active_sessions",
		Help: "Sessions currently held in memory",
	})
	HTTPRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mapcrown_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetLoadDurationMs)
	prometheus.MustRegister(EnrichRequestsTotal)
	prometheus.MustRegister(EnrichCacheTotal)
	prometheus.MustRegister(QuizAnswersTotal)
	prometheus.MustRegister(StaleWritesTotal)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(HTTPRequestDurationMs)
}

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the default registry for Prometheus scraping.
func Handler() http.Handler { return promhttp.Handler() }
