// Package metrics provides the centralized Prometheus metrics registry for the picks service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PipelineRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nba_picks",
		Name:      "pipeline_runs_total",
		Help:      "Total number of picks generation pipeline runs",
	})
	PipelineRunsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nba_picks",
		Name:      "pipeline_runs_failed_total",
		Help:      "Total number of pipeline runs aborted by a market line outage",
	})
	PlayersScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "nba_picks",
		Name:      "players_scored_total",
		Help:      "Total number of players successfully scored",
	})
	PlayersSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nba_picks",
		Name:      "players_skipped_total",
		Help:      "Total number of players excluded from a run, by reason",
	}, []string{"reason"})
	CacheReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nba_picks",
		Name:      "cache_reads_total",
		Help:      "Total cache slot reads, by slot and outcome",
	}, []string{"slot", "outcome"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nba_picks",
		Name:      "upstream_requests_total",
		Help:      "Total requests issued to upstream data providers",
	}, []string{"provider", "endpoint"})
)

// Gauge metrics
var (
	PredictionsCached = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nba_picks",
		Name:      "predictions_cached",
		Help:      "Number of predictions in the last successful run",
	})
	PlayersWithOdds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "nba_picks",
		Name:      "players_with_odds",
		Help:      "Number of players with prop lines in the last run",
	})
)

// Histogram metrics
var (
	PipelineRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nba_picks",
		Name:      "pipeline_run_duration_seconds",
		Help:      "Duration of picks generation pipeline runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
	})
	HistoryFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "nba_picks",
		Name:      "history_fetch_duration_seconds",
		Help:      "Duration of per-player game log fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// Skip reason label values
const (
	ReasonNoIdentity          = "no_identity"
	ReasonInsufficientHistory = "insufficient_history"
	ReasonFetchError          = "fetch_error"
	ReasonFetchTimeout        = "fetch_timeout"
	ReasonScoringError        = "scoring_error"
)

// Init registers all metrics with the global registry. Safe to call multiple times.
func Init() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			PipelineRunsTotal,
			PipelineRunsFailedTotal,
			PlayersScoredTotal,
			PlayersSkippedTotal,
			CacheReadsTotal,
			UpstreamRequestsTotal,
			PredictionsCached,
			PlayersWithOdds,
			PipelineRunDuration,
			HistoryFetchDuration,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the metrics endpoint
func Handler() http.Handler {
	return promhttp.HandlerFor(Init(), promhttp.HandlerOpts{})
}
