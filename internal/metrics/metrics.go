// Package metrics provides the Prometheus registry for fplpanel runs.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/fplpanel/internal/models"
)

const namespace = "fplpanel"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of runs by kind and status",
	}, []string{"kind", "status"})
	FilesMergedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_merged_total",
		Help:      "Total number of source files merged",
	})
	FilesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_skipped_total",
		Help:      "Total number of source files skipped",
	}, []string{"reason"})
	RowsMergedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_merged_total",
		Help:      "Total number of rows written to merged panels",
	})
	DuplicatesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "duplicates_dropped_total",
		Help:      "Total number of duplicate rows dropped while merging",
	})
)

// Gauge metrics
var (
	LastRunTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last successful run by kind",
	}, []string{"kind"})
	PanelPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "panel_players",
		Help:      "Distinct players in the last combined panel",
	})
)

// Histogram metrics
var (
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of pipeline stages in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RunsTotal)
		registry.MustRegister(FilesMergedTotal)
		registry.MustRegister(FilesSkippedTotal)
		registry.MustRegister(RowsMergedTotal)
		registry.MustRegister(DuplicatesDroppedTotal)

		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(PanelPlayers)

		registry.MustRegister(StageDuration)

		// ingestion metrics
		registry.MustRegister(APIRequestsTotal)
		registry.MustRegister(APIFailuresTotal)
		registry.MustRegister(PlayersIngestedTotal)

		// selection metrics
		registry.MustRegister(SelectionsTotal)
		registry.MustRegister(SelectionPredictedPoints)
		registry.MustRegister(SelectionBudgetRemaining)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler. It also serves collectors
// registered on the default registry, such as the model metrics.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{GetRegistry(), prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

// RecordRun records a finished run.
func RecordRun(kind, status string, finishedUnix float64) {
	RunsTotal.WithLabelValues(kind, status).Inc()
	if status == models.RunStatusSucceeded {
		LastRunTimestamp.WithLabelValues(kind).Set(finishedUnix)
	}
}

// RecordFileMerged records a merged source file.
func RecordFileMerged() {
	FilesMergedTotal.Inc()
}

// RecordFileSkipped records a skipped source file.
func RecordFileSkipped(reason string) {
	FilesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordMerge records the row counts of a merge.
func RecordMerge(rowsOut, duplicates int) {
	RowsMergedTotal.Add(float64(rowsOut))
	DuplicatesDroppedTotal.Add(float64(duplicates))
}

// UpdatePanelPlayers sets the distinct player gauge.
func UpdatePanelPlayers(n int) {
	PanelPlayers.Set(float64(n))
}

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, durationSeconds float64) {
	StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}
