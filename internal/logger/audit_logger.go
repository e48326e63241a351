package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger records the run trail: when runs start and how they end.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogRunStarted logs the start of a merge, ingest or pipeline run.
func (al *AuditLogger) LogRunStarted(runID, kind string, startedAt time.Time) {
	al.WithFields(logrus.Fields{
		"run_id":     runID,
		"kind":       kind,
		"started_at": startedAt.Unix(),
	}).Info("Run started")
}

// LogRunFinished logs the outcome of a run.
func (al *AuditLogger) LogRunFinished(runID, kind, status string, rowsIn, rowsOut int, duration time.Duration, errMsg string) {
	entry := al.WithFields(logrus.Fields{
		"run_id":      runID,
		"kind":        kind,
		"status":      status,
		"rows_in":     rowsIn,
		"rows_out":    rowsOut,
		"duration_ms": duration.Milliseconds(),
	})
	if errMsg != "" {
		entry.WithField("error", errMsg).Error("Run failed")
		return
	}
	entry.Info("Run finished")
}

// LogOutputWritten logs a file the run produced.
func (al *AuditLogger) LogOutputWritten(runID, kind, path string, rows int) {
	al.WithFields(logrus.Fields{
		"run_id": runID,
		"kind":   kind,
		"path":   path,
		"rows":   rows,
	}).Info("Output written")
}
