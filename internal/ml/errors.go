// Package ml trains regressors on the engineered design matrix and scores
// evaluation rows, in-process or through a remote model service.
package ml

import "errors"

var (
	// ErrModelServiceUnavailable indicates the model service is unreachable or not serving
	ErrModelServiceUnavailable = errors.New("model service unavailable")

	// ErrInvalidPrediction indicates the prediction response is invalid
	ErrInvalidPrediction = errors.New("invalid prediction response")

	// ErrConnectionFailed indicates the model service connection failed
	ErrConnectionFailed = errors.New("model service connection failed")

	// ErrNotFitted indicates Predict was called before Fit
	ErrNotFitted = errors.New("model not fitted")

	// ErrShapeMismatch indicates matrix and target dimensions disagree
	ErrShapeMismatch = errors.New("dimension mismatch")

	// ErrSingular indicates the normal equations could not be solved
	ErrSingular = errors.New("singular design matrix")
)
