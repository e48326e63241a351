package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/logger"
	"github.com/yourusername/fplpanel/internal/metrics"
	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/repository"
)

// RunTracker records the lifecycle of a run in the audit log, the
// Prometheus run counters and, when configured, the run history table.
// History write failures are logged and never fail the run.
type RunTracker struct {
	runs   repository.RunRepository
	audit  *logger.AuditLogger
	logger *logrus.Entry
}

// NewRunTracker creates a tracker. runs may be nil.
func NewRunTracker(runs repository.RunRepository, log *logrus.Logger) *RunTracker {
	if log == nil {
		log = logger.Discard()
	}
	return &RunTracker{
		runs:   runs,
		audit:  logger.NewAuditLogger(log),
		logger: log.WithField("component", "run_tracker"),
	}
}

// Start opens a run of the given kind
func (t *RunTracker) Start(ctx context.Context, kind string) *models.PipelineRun {
	run := models.NewPipelineRun(kind)
	t.audit.LogRunStarted(run.ID.String(), kind, run.StartedAt)
	if t.runs != nil {
		if err := t.runs.Create(ctx, run); err != nil {
			t.logger.WithError(err).WithField("run_id", run.ID).Warn("Failed to record run start")
		}
	}
	return run
}

// Finish closes a run with status, or RunStatusFailed when err is set
func (t *RunTracker) Finish(ctx context.Context, run *models.PipelineRun, status string, err error) {
	if err != nil {
		status = models.RunStatusFailed
	}
	run.Finish(status, err)
	duration := run.FinishedAt.Sub(run.StartedAt)

	t.audit.LogRunFinished(run.ID.String(), run.Kind, run.Status, run.RowsIn, run.RowsOut, duration, run.Error)
	metrics.RecordRun(run.Kind, run.Status, float64(run.FinishedAt.Unix()))
	metrics.ObserveStage(run.Kind, duration.Seconds())

	if t.runs != nil {
		// the caller's context may already be cancelled
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := t.runs.Update(saveCtx, run); err != nil {
			t.logger.WithError(err).WithField("run_id", run.ID).Warn("Failed to record run outcome")
		}
	}
}

// Output logs a file the run wrote
func (t *RunTracker) Output(run *models.PipelineRun, path string, rows int) {
	t.audit.LogOutputWritten(run.ID.String(), run.Kind, path, rows)
}
