package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/config"
	"github.com/yourusername/fplpanel/internal/features"
	"github.com/yourusername/fplpanel/internal/identity"
	"github.com/yourusername/fplpanel/internal/logger"
	"github.com/yourusername/fplpanel/internal/metrics"
	"github.com/yourusername/fplpanel/internal/ml"
	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/panel"
	"github.com/yourusername/fplpanel/internal/repository"
	"github.com/yourusername/fplpanel/internal/squad"
)

// RegressorFactory builds a regressor for the given feature columns
type RegressorFactory func(features []string) (ml.Regressor, error)

// PipelineConfig holds every stage's settings
type PipelineConfig struct {
	PanelsDir  string
	PanelsGlob string
	Features   features.Config
	Selection  squad.Config
	ModelType  string

	EngineeredOutput  string
	PredictionsOutput string
	SquadOutput       string
}

// PipelineConfigFromConfig converts the loaded configuration
func PipelineConfigFromConfig(cfg *config.Config) (PipelineConfig, error) {
	current, train, err := cfg.Features.Seasons()
	if err != nil {
		return PipelineConfig{}, err
	}
	stats, err := cfg.Features.Stats()
	if err != nil {
		return PipelineConfig{}, err
	}
	if len(stats) == 0 {
		stats = features.DefaultBaseStats
	}
	formation, err := cfg.Selection.Positions()
	if err != nil {
		return PipelineConfig{}, err
	}

	return PipelineConfig{
		PanelsDir:  cfg.Panels.Dir,
		PanelsGlob: cfg.Panels.Glob,
		Features: features.Config{
			Windows:            cfg.Features.Windows,
			BaseStats:          stats,
			Derived:            features.DefaultDerived,
			TrainSeasons:       train,
			CurrentSeason:      current,
			TrainGameweekUntil: cfg.Features.TrainGWUntil,
			TargetGameweek:     cfg.Features.TargetGW,
			DropColumns:        cfg.Features.DropColumns,
		},
		Selection: squad.Config{
			Formation:  formation,
			Budget:     decimal.NewFromFloat(cfg.Selection.Budget),
			MaxPerTeam: cfg.Selection.MaxPlayersPerTeam,
		},
		ModelType:         cfg.Model.Type,
		EngineeredOutput:  cfg.Panels.Output,
		PredictionsOutput: cfg.Selection.PredictionsOutput,
		SquadOutput:       cfg.Selection.Output,
	}, nil
}

// PipelineResult summarizes a pipeline run
type PipelineResult struct {
	Merge       panel.Report
	Identity    identity.Report
	Rows        int
	TrainRows   int
	EvalRows    int
	Features    []string
	Predictions []models.Prediction
	Evaluation  ml.Evaluation
	// Selection is nil when the squad was infeasible
	Selection  *squad.Selection
	Infeasible *squad.InfeasibleError
}

// PipelineService runs panels → identity → features → model → squad
type PipelineService struct {
	cfg          PipelineConfig
	merge        *MergeService
	newRegressor RegressorFactory
	panels       repository.PanelRepository
	tracker      *RunTracker
	plog         *logger.PipelineLogger
	logger       *logrus.Logger
}

// NewPipelineService creates the pipeline. panels and tracker may be nil.
func NewPipelineService(
	cfg PipelineConfig,
	merge *MergeService,
	newRegressor RegressorFactory,
	panels repository.PanelRepository,
	tracker *RunTracker,
	log *logrus.Logger,
) (*PipelineService, error) {
	if err := cfg.Features.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	if newRegressor == nil {
		return nil, fmt.Errorf("regressor factory is required")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &PipelineService{
		cfg:          cfg,
		merge:        merge,
		newRegressor: newRegressor,
		panels:       panels,
		tracker:      tracker,
		plog:         logger.NewPipelineLogger(log),
		logger:       log,
	}, nil
}

// LoadPanels combines every season panel under the panels directory
func (s *PipelineService) LoadPanels(ctx context.Context) (*panel.Panel, panel.Report, error) {
	res, err := s.merge.Load(ctx, s.cfg.PanelsDir, s.cfg.PanelsGlob, 0, nil)
	if err != nil {
		return nil, panel.Report{}, err
	}
	return res.Panel, res.Report, nil
}

// Run executes the pipeline. An infeasible squad is not an error: the
// result carries the InfeasibleError and no squad file is written.
func (s *PipelineService) Run(ctx context.Context) (res *PipelineResult, err error) {
	var run *models.PipelineRun
	if s.tracker != nil {
		run = s.tracker.Start(ctx, models.RunKindPipeline)
		run.ModelType = s.cfg.ModelType
		run.Season = s.cfg.Features.CurrentSeason
		run.Gameweek = s.cfg.Features.TargetGameweek
		defer func() {
			status := models.RunStatusSucceeded
			if res != nil {
				run.RowsIn = res.Merge.RowsOut
				if res.Selection != nil {
					run.RowsOut = len(res.Selection.Picks)
				}
				if res.Infeasible != nil {
					status = models.RunStatusInfeasible
				}
				if res.Evaluation.N > 0 {
					_ = run.SetMetrics(res.Evaluation.Metrics())
				}
			}
			s.tracker.Finish(ctx, run, status, err)
		}()
	}

	res = &PipelineResult{}

	merged, report, err := s.LoadPanels(ctx)
	if err != nil {
		return nil, err
	}
	res.Merge = report

	stage := time.Now()
	resolver := identity.NewResolver(identity.Options{CurrentSeason: s.cfg.Features.CurrentSeason}, s.logger.WithField("component", "identity"))
	records, idReport := resolver.Resolve(merged.Records)
	res.Identity = idReport
	s.plog.LogIdentityResolved(idReport.Input, idReport.Players, idReport.EmptyNames, idReport.NotRetained,
		len(idReport.Collisions), idReport.CurrentSeason)
	metrics.UpdatePanelPlayers(idReport.Players)
	metrics.ObserveStage("identity", time.Since(stage).Seconds())

	if s.panels != nil {
		if _, err := s.panels.UpsertRecords(ctx, records); err != nil {
			return nil, fmt.Errorf("failed to persist panel: %w", err)
		}
	}

	stage = time.Now()
	engine, err := features.NewEngine(s.cfg.Features)
	if err != nil {
		return nil, err
	}
	built := engine.Build(records, merged.Columns)
	train, eval := engine.Partition(built.Rows)
	design, err := engine.BuildDesign(built.Columns, train, eval)
	if err != nil {
		return nil, err
	}
	res.Rows, res.TrainRows, res.EvalRows, res.Features = len(built.Rows), len(train), len(eval), design.Features
	s.plog.LogFeaturesBuilt(len(built.Rows), len(built.Columns), len(train), len(eval), len(design.Features))
	metrics.ObserveStage("features", time.Since(stage).Seconds())

	if s.cfg.EngineeredOutput != "" {
		if err := panel.WriteFile(s.cfg.EngineeredOutput, built.Columns, featureRows(built.Rows)); err != nil {
			return nil, fmt.Errorf("failed to write engineered panel: %w", err)
		}
		s.output(run, s.cfg.EngineeredOutput, len(built.Rows))
	}

	preds, err := s.trainAndPredict(ctx, design, eval)
	if err != nil {
		return nil, err
	}
	res.Predictions = preds
	res.Evaluation = ml.Evaluate(predictedValues(preds), actualValues(preds))
	res.Evaluation.Record(s.modelType())

	if s.cfg.PredictionsOutput != "" {
		if err := panel.WriteFile(s.cfg.PredictionsOutput, PredictionColumns, predictionRows(preds)); err != nil {
			return nil, fmt.Errorf("failed to write predictions: %w", err)
		}
		s.output(run, s.cfg.PredictionsOutput, len(preds))
	}

	stage = time.Now()
	sel, err := squad.Select(squad.FromPredictions(preds), s.cfg.Selection)
	metrics.ObserveStage("select", time.Since(stage).Seconds())
	var infeasible *squad.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		res.Infeasible = infeasible
		unmet := make(map[string]int, len(infeasible.Unmet))
		for p, n := range infeasible.Unmet {
			unmet[string(p)] = n
		}
		s.plog.LogSquadInfeasible(unmet, infeasible.Picked)
		metrics.RecordInfeasibleSelection()
		return res, nil
	case err != nil:
		return nil, err
	}

	res.Selection = sel
	s.plog.LogSquadSelected(len(sel.Picks), sel.TotalPrice.StringFixed(1), sel.Remaining.StringFixed(1), sel.TotalScore())
	metrics.RecordSelection(sel.TotalScore(), sel.Remaining.InexactFloat64())

	if s.cfg.SquadOutput != "" {
		if err := panel.WriteFile(s.cfg.SquadOutput, SquadColumns, squadRows(sel)); err != nil {
			return nil, fmt.Errorf("failed to write squad: %w", err)
		}
		s.output(run, s.cfg.SquadOutput, len(sel.Picks))
	}
	return res, nil
}

// trainAndPredict fits on the training matrix and scores the evaluation
// rows. Predictions are sorted by predicted points, highest first.
func (s *PipelineService) trainAndPredict(ctx context.Context, design *features.Design, eval []models.FeatureRow) ([]models.Prediction, error) {
	reg, err := s.newRegressor(design.Features)
	if err != nil {
		return nil, fmt.Errorf("failed to create regressor: %w", err)
	}

	start := time.Now()
	if err := reg.Fit(ctx, design.TrainX, design.TrainY); err != nil {
		return nil, fmt.Errorf("failed to fit %s model: %w", reg.Name(), err)
	}
	s.plog.LogModelTrained(reg.Name(), len(design.TrainY), time.Since(start), nil)
	metrics.ObserveStage("train", time.Since(start).Seconds())

	if design.EvalX == nil {
		s.logger.WithField("target_gw", s.cfg.Features.TargetGameweek).Warn("No evaluation rows for the target gameweek")
		return nil, nil
	}

	scores, err := reg.Predict(ctx, design.EvalX)
	if err != nil {
		return nil, fmt.Errorf("failed to predict with %s model: %w", reg.Name(), err)
	}

	preds := make([]models.Prediction, len(eval))
	for i, row := range eval {
		rec := row.Record
		team := rec.TeamNameCurrent
		if team == "" {
			team = rec.TeamNameGW
		}
		preds[i] = models.Prediction{
			PlayerKey: rec.PlayerKey(),
			Season:    rec.Season,
			Gameweek:  rec.Gameweek,
			FullName:  rec.FullName,
			Position:  rec.Position,
			Team:      team,
			Price:     rec.Price,
			Predicted: scores[i],
			Actual:    row.TargetNext,
			Index:     i,
		}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Predicted > preds[j].Predicted
	})
	return preds, nil
}

func (s *PipelineService) output(run *models.PipelineRun, path string, rows int) {
	if s.tracker != nil && run != nil {
		s.tracker.Output(run, path, rows)
	}
}

func (s *PipelineService) modelType() string {
	if s.cfg.ModelType == "" {
		return "local"
	}
	return s.cfg.ModelType
}

func predictedValues(preds []models.Prediction) []float64 {
	out := make([]float64, len(preds))
	for i, p := range preds {
		out[i] = p.Predicted
	}
	return out
}

func actualValues(preds []models.Prediction) []*float64 {
	out := make([]*float64, len(preds))
	for i, p := range preds {
		out[i] = p.Actual
	}
	return out
}
