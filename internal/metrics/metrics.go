package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OpenMeteoAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daycast_openmeteo_api_calls_total",
			Help: "Total Open-Meteo API calls",
		},
		[]string{"endpoint", "status"},
	)

	OpenMeteoAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "daycast_openmeteo_api_latency_seconds",
			Help:    "Open-Meteo API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ObservationsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daycast_observations_ingested_total",
			Help: "Total observation records successfully stored",
		},
		[]string{"granularity"},
	)

	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daycast_pipeline_runs_total",
			Help: "Total analysis pipeline runs",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "daycast_pipeline_duration_seconds",
			Help:    "Analysis pipeline run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReportsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daycast_reports_upserted_total",
			Help: "Total daily reports written",
		},
	)
)
