package logger

import (
	"github.com/sirupsen/logrus"
)

// ModelLogger provides dedicated logging for model operations.
type ModelLogger struct {
	*logrus.Entry
}

// NewModelLogger creates a new model logger.
func NewModelLogger(baseLogger *logrus.Logger) *ModelLogger {
	return &ModelLogger{
		Entry: baseLogger.WithField("component", "model"),
	}
}

// LogPredictionRequest logs a prediction batch.
func (ml *ModelLogger) LogPredictionRequest(modelType string, rows, featuresCount int, latencyMs float64) {
	ml.WithFields(logrus.Fields{
		"model_type":     modelType,
		"rows":           rows,
		"features_count": featuresCount,
		"latency_ms":     latencyMs,
	}).Debug("Prediction request completed")
}

// LogModelFit logs a completed fit.
func (ml *ModelLogger) LogModelFit(modelType string, rows, featuresCount int, trainingDuration float64, hyperparameters map[string]interface{}) {
	ml.WithFields(logrus.Fields{
		"model_type":        modelType,
		"rows":              rows,
		"features_count":    featuresCount,
		"training_duration": trainingDuration,
		"hyperparameters":   hyperparameters,
	}).Info("Model fit completed")
}

// LogModelServiceError logs a failed call to the model service.
func (ml *ModelLogger) LogModelServiceError(method string, errorReason string) {
	ml.WithFields(logrus.Fields{
		"method":       method,
		"error_reason": errorReason,
	}).Error("Model service call failed")
}
