// Package scheduler runs the ingest and pipeline stages on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/logger"
	"github.com/yourusername/fplpanel/internal/service"
)

// Ingester refreshes the current season panel from the API
type Ingester interface {
	Ingest(ctx context.Context, opts service.IngestOptions) (*service.IngestResult, error)
}

// PipelineRunner executes one full pipeline run
type PipelineRunner interface {
	Run(ctx context.Context) (*service.PipelineResult, error)
}

// Config holds scheduler settings
type Config struct {
	// Ingest is run before every pipeline run when non-nil
	Ingest        Ingester
	IngestOptions service.IngestOptions
	Pipeline      PipelineRunner
	// JobTimeout bounds a single tick; zero means 4 hours
	JobTimeout      time.Duration
	GracefulTimeout time.Duration
}

// Scheduler manages scheduled pipeline jobs
type Scheduler struct {
	cron            *cron.Cron
	ingest          Ingester
	ingestOpts      service.IngestOptions
	pipeline        PipelineRunner
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Ticks that arrive while a run is
// still in progress are skipped.
func NewScheduler(cfg Config, log *logrus.Logger) (*Scheduler, error) {
	if cfg.Pipeline == nil {
		return nil, errors.New("pipeline runner is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	entry := log.WithField("component", "scheduler")
	cronLog := logger.NewCronLogger(entry)

	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 4 * time.Hour
	}
	if cfg.GracefulTimeout <= 0 {
		cfg.GracefulTimeout = 30 * time.Second
	}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		ingest:          cfg.Ingest,
		ingestOpts:      cfg.IngestOptions,
		pipeline:        cfg.Pipeline,
		logger:          entry,
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      cfg.JobTimeout,
		gracefulTimeout: cfg.GracefulTimeout,
	}, nil
}

// SchedulePipeline adds the ingest-then-run job on cronExpression
func (s *Scheduler) SchedulePipeline(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()
		_ = s.RunOnce(ctx)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":   cronExpression,
		"ingest": s.ingest != nil,
	}).Info("Scheduled pipeline job")

	return nil
}

// RunOnce performs one tick: an optional ingestion followed by a pipeline
// run. A failed ingestion is logged and the pipeline runs on the panels
// already on disk.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if s.ingest != nil {
		res, err := s.ingest.Ingest(ctx, s.ingestOpts)
		if err != nil {
			s.logger.WithError(err).Warn("Scheduled ingestion failed, running pipeline on existing panels")
		} else {
			s.logger.WithFields(logrus.Fields{
				"players": res.Players,
				"rows":    res.Rows,
			}).Info("Scheduled ingestion completed")
		}
	}

	res, err := s.pipeline.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled pipeline run failed")
		return err
	}

	fields := logrus.Fields{"rows": res.Rows}
	if res.Selection != nil {
		fields["picks"] = len(res.Selection.Picks)
	}
	if res.Infeasible != nil {
		fields["infeasible"] = res.Infeasible.Error()
	}
	s.logger.WithFields(fields).Info("Scheduled pipeline run completed")
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running job to finish, up to
// the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	timer := time.NewTimer(s.gracefulTimeout)
	defer timer.Stop()

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-timer.C:
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}
