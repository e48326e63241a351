package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/datasource"
	"github.com/yourusername/fplpanel/internal/logger"
	"github.com/yourusername/fplpanel/internal/metrics"
	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/normalize"
	"github.com/yourusername/fplpanel/internal/panel"
)

// MergeOptions describes one merge
type MergeOptions struct {
	Root string
	// Glob selects files under Root; empty means every CSV file
	Glob string
	// Output is the merged CSV path; empty skips writing
	Output string
	// TargetSchema is a CSV file whose header becomes the exact output column list
	TargetSchema string
	// Season is the default season for sources without one
	Season int
}

// SkippedSource is a discovered file that contributed no records
type SkippedSource struct {
	Path   string
	Reason string
}

// MergeResult summarizes a merge
type MergeResult struct {
	Panel   *panel.Panel
	Report  panel.Report
	Files   int
	Skipped []SkippedSource
	Output  string
}

// MergeService discovers, normalizes and merges per-player CSV sources
type MergeService struct {
	tables  datasource.TableSource
	tracker *RunTracker
	plog    *logger.PipelineLogger
	logger  *logrus.Logger
}

// NewMergeService creates a merge service. tracker may be nil.
func NewMergeService(tables datasource.TableSource, tracker *RunTracker, log *logrus.Logger) *MergeService {
	if log == nil {
		log = logger.Discard()
	}
	return &MergeService{
		tables:  tables,
		tracker: tracker,
		plog:    logger.NewPipelineLogger(log),
		logger:  log,
	}
}

// Merge runs the full merge and writes the output. A run with no usable
// input fails with panel.ErrNoUsableInput and writes nothing.
func (s *MergeService) Merge(ctx context.Context, opts MergeOptions) (res *MergeResult, err error) {
	if s.tracker != nil {
		run := s.tracker.Start(ctx, models.RunKindMerge)
		run.Season = opts.Season
		defer func() {
			if res != nil {
				run.RowsIn = res.Report.RowsIn
				run.RowsOut = res.Report.RowsOut
			}
			s.tracker.Finish(ctx, run, models.RunStatusSucceeded, err)
			if err == nil && res.Output != "" {
				s.tracker.Output(run, res.Output, res.Report.RowsOut)
			}
		}()
	}

	var schema []string
	if opts.TargetSchema != "" {
		schema, err = s.readSchema(opts.TargetSchema)
		if err != nil {
			return nil, err
		}
	}

	res, err = s.Load(ctx, opts.Root, opts.Glob, opts.Season, schema)
	if err != nil {
		return nil, err
	}

	if opts.Output != "" {
		if err := res.Panel.Write(opts.Output); err != nil {
			return nil, fmt.Errorf("failed to write merged panel: %w", err)
		}
		res.Output = opts.Output
	}

	s.plog.LogMergeComplete(res.Output, res.Report.Sources, res.Report.RowsIn, res.Report.Duplicates,
		res.Report.RowsOut, len(res.Panel.Columns))
	return res, nil
}

// Load discovers and merges sources without writing. Unreadable or
// rejected files are skipped with one warning each.
func (s *MergeService) Load(ctx context.Context, root, glob string, season int, schema []string) (*MergeResult, error) {
	start := time.Now()
	defer func() { metrics.ObserveStage("merge", time.Since(start).Seconds()) }()

	paths, err := s.tables.Discover(root, glob)
	if err != nil {
		return nil, fmt.Errorf("failed to discover sources under %s: %w", root, err)
	}

	res := &MergeResult{Files: len(paths)}
	normalizer := normalize.NewNormalizer(normalize.Options{DefaultSeason: season})
	sources := make([]*normalize.Source, 0, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, err := s.tables.ReadTable(path)
		if err != nil {
			s.skip(res, path, "unreadable", err)
			continue
		}
		src, err := normalizer.Normalize(table)
		if err != nil {
			s.skip(res, path, "rejected", err)
			continue
		}
		if len(src.Records) == 0 {
			s.skip(res, path, "no_valid_rows", fmt.Errorf("all %d rows rejected", src.RejectedRows))
			continue
		}

		s.plog.LogSourceMerged(path, len(src.Records), src.RejectedRows, src.InvalidCells, src.Inferred)
		metrics.RecordFileMerged()
		sources = append(sources, src)
	}

	merged, report, err := panel.NewMerger(panel.Options{TargetSchema: schema}).Merge(sources)
	res.Report = report
	if err != nil {
		if errors.Is(err, panel.ErrNoUsableInput) {
			return nil, fmt.Errorf("%d files under %s, %d skipped: %w", len(paths), root, len(res.Skipped), err)
		}
		return nil, err
	}
	res.Panel = merged
	metrics.RecordMerge(report.RowsOut, report.Duplicates)

	for _, c := range report.FixtureConflicts {
		s.logger.WithFields(logrus.Fields{
			"season":          c.Season,
			"element":         c.Element,
			"gw":              c.Gameweek,
			"kept_fixture":    c.KeptFixture,
			"dropped_fixture": c.DroppedFixture,
		}).Warn("Second fixture in gameweek dropped by dedup")
	}

	if len(report.ColumnsAdded) > 0 {
		s.logger.WithField("columns", report.ColumnsAdded).Info("Target schema columns filled with missing values")
	}
	return res, nil
}

func (s *MergeService) skip(res *MergeResult, path, reason string, err error) {
	res.Skipped = append(res.Skipped, SkippedSource{Path: path, Reason: err.Error()})
	s.plog.LogSourceSkipped(path, err.Error())
	metrics.RecordFileSkipped(reason)
}

func (s *MergeService) readSchema(path string) ([]string, error) {
	table, err := s.tables.ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read target schema: %w", err)
	}
	if len(table.Header) == 0 {
		return nil, fmt.Errorf("target schema %s has no header", path)
	}
	return normalize.StandardizeColumns(table.Header), nil
}
