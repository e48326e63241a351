package ml

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// Regressor fits a numeric target and scores new rows
type Regressor interface {
	Name() string
	Fit(ctx context.Context, x mat.Matrix, y []float64) error
	Predict(ctx context.Context, x mat.Matrix) ([]float64, error)
}

// HealthChecker is implemented by regressors backed by a service
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
