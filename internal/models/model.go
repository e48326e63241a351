package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Run kinds
const (
	RunKindMerge    = "merge"
	RunKindIngest   = "ingest"
	RunKindPipeline = "pipeline"
)

// Run statuses
const (
	RunStatusRunning    = "running"
	RunStatusSucceeded  = "succeeded"
	RunStatusInfeasible = "infeasible"
	RunStatusFailed     = "failed"
)

// PipelineRun records one execution of a pipeline command
type PipelineRun struct {
	ID         uuid.UUID       `db:"id" json:"id" validate:"required"`
	Kind       string          `db:"kind" json:"kind" validate:"required,oneof=merge ingest pipeline"`
	Status     string          `db:"status" json:"status" validate:"required"`
	ModelType  string          `db:"model_type" json:"model_type"`
	Season     int             `db:"season" json:"season"`
	Gameweek   int             `db:"gw" json:"gw"`
	RowsIn     int             `db:"rows_in" json:"rows_in"`
	RowsOut    int             `db:"rows_out" json:"rows_out"`
	Metrics    json.RawMessage `db:"metrics" json:"metrics"`
	Error      string          `db:"error" json:"error,omitempty"`
	StartedAt  time.Time       `db:"started_at" json:"started_at" validate:"required"`
	FinishedAt *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}

// NewPipelineRun starts a run record with a fresh id
func NewPipelineRun(kind string) *PipelineRun {
	return &PipelineRun{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the finishing time and status
func (r *PipelineRun) Finish(status string, err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	r.Status = status
	if err != nil {
		r.Error = err.Error()
	}
}

// SetMetrics stores the metrics map as JSON
func (r *PipelineRun) SetMetrics(m map[string]float64) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	r.Metrics = data
	return nil
}

// GetMetric retrieves a metric value from the Metrics JSON
func (r *PipelineRun) GetMetric(name string) (float64, bool, error) {
	if r.Metrics == nil {
		return 0, false, nil
	}

	var metrics map[string]float64
	if err := json.Unmarshal(r.Metrics, &metrics); err != nil {
		return 0, false, err
	}

	v, ok := metrics[name]
	return v, ok, nil
}

// Duration returns how long the run took, or zero while it is running
func (r *PipelineRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
