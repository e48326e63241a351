package ml

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelFitsTotal tracks fits by model type and outcome
	ModelFitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fplpanel",
			Name:      "model_fits_total",
			Help:      "Total number of model fits",
		},
		[]string{"model_type", "status"},
	)

	// ModelFitDuration tracks fit latency
	ModelFitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fplpanel",
			Name:      "model_fit_duration_seconds",
			Help:      "Model fit duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"model_type"},
	)

	// ModelPredictionsTotal counts scored rows
	ModelPredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fplpanel",
			Name:      "model_predictions_total",
			Help:      "Total number of rows scored",
		},
		[]string{"model_type"},
	)

	// ModelServiceErrorsTotal tracks remote model service errors
	ModelServiceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fplpanel",
			Name:      "model_service_errors_total",
			Help:      "Total number of model service errors",
		},
		[]string{"method", "error_type"},
	)

	// ModelEvalError holds the latest evaluation errors
	ModelEvalError = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fplpanel",
			Name:      "model_eval_error",
			Help:      "Latest evaluation error of the fitted model",
		},
		[]string{"model_type", "metric"},
	)
)
