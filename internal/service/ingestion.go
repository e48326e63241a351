package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/datasource"
	"github.com/yourusername/fplpanel/internal/logger"
	"github.com/yourusername/fplpanel/internal/metrics"
	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/panel"
)

// IngestOptions describes one API ingestion
type IngestOptions struct {
	Season int
	// Output is the season panel CSV path; empty skips writing
	Output string
	// Limit caps the number of players fetched; zero fetches all
	Limit int
}

// IngestResult summarizes an ingestion
type IngestResult struct {
	Players int
	// Failed counts players whose history could not be fetched
	Failed  int
	Rows    int
	Records []models.PlayerRecord
	Output  string
}

// IngestionService turns the FPL API into a season panel
type IngestionService struct {
	source  datasource.PlayerSource
	tracker *RunTracker
	logger  *logrus.Entry
}

// NewIngestionService creates a new ingestion service. tracker may be nil.
func NewIngestionService(source datasource.PlayerSource, tracker *RunTracker, log *logrus.Logger) *IngestionService {
	if log == nil {
		log = logger.Discard()
	}
	return &IngestionService{
		source:  source,
		tracker: tracker,
		logger:  log.WithField("component", "ingestion"),
	}
}

// Ingest fetches the season and writes it with the canonical panel
// columns. Players whose history fetch fails are logged and contribute no
// rows; a bootstrap or fixtures failure fails the run.
func (s *IngestionService) Ingest(ctx context.Context, opts IngestOptions) (res *IngestResult, err error) {
	if opts.Season <= 0 {
		return nil, fmt.Errorf("season is required")
	}
	if s.tracker != nil {
		run := s.tracker.Start(ctx, models.RunKindIngest)
		run.Season = opts.Season
		defer func() {
			if res != nil {
				run.RowsIn = res.Players
				run.RowsOut = res.Rows
			}
			s.tracker.Finish(ctx, run, models.RunStatusSucceeded, err)
			if err == nil && res.Output != "" {
				s.tracker.Output(run, res.Output, res.Rows)
			}
		}()
	}

	start := time.Now()
	defer func() { metrics.ObserveStage("ingest", time.Since(start).Seconds()) }()

	res, err = s.BuildRecords(ctx, opts.Season, opts.Limit)
	if err != nil {
		return nil, err
	}

	if opts.Output != "" {
		rows := make([]panel.Valuer, len(res.Records))
		for i := range res.Records {
			rows[i] = &res.Records[i]
		}
		if err := panel.WriteFile(opts.Output, models.PanelColumns, rows); err != nil {
			return nil, fmt.Errorf("failed to write season panel: %w", err)
		}
		res.Output = opts.Output
	}

	s.logger.WithFields(logrus.Fields{
		"season":  opts.Season,
		"players": res.Players,
		"failed":  res.Failed,
		"rows":    res.Rows,
		"output":  res.Output,
	}).Info("Ingestion complete")
	return res, nil
}

// BuildRecords fetches bootstrap, fixtures and every player's history and
// returns the season's records ordered by (element, gw)
func (s *IngestionService) BuildRecords(ctx context.Context, season, limit int) (*IngestResult, error) {
	bootstrap, err := s.source.FetchBootstrap(ctx)
	metrics.RecordAPIRequest("bootstrap", errorCode(err))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bootstrap: %w", err)
	}
	fixtures, err := s.source.FetchFixtures(ctx)
	metrics.RecordAPIRequest("fixtures", errorCode(err))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures: %w", err)
	}

	teams := make(map[int]string, len(bootstrap.Teams))
	for _, t := range bootstrap.Teams {
		teams[t.ID] = t.Name
	}
	fixtureTeams := make(map[int]datasource.Fixture, len(fixtures))
	for _, f := range fixtures {
		fixtureTeams[f.ID] = f
	}

	elements := bootstrap.Elements
	if limit > 0 && limit < len(elements) {
		elements = elements[:limit]
	}

	res := &IngestResult{}
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		history, err := s.source.FetchPlayerHistory(ctx, el.ID)
		metrics.RecordAPIRequest("history", errorCode(err))
		if err != nil {
			res.Failed++
			s.logger.WithFields(logrus.Fields{
				"element": el.ID,
				"code":    datasource.ErrorCode(err),
				"error":   err.Error(),
			}).Warn("Player history fetch failed, skipping")
			continue
		}

		res.Players++
		for _, h := range history {
			res.Records = append(res.Records, historyRecord(season, el, h, teams, fixtureTeams))
		}
	}

	panel.SortByElementGameweek(res.Records)
	res.Rows = len(res.Records)
	metrics.RecordPlayersIngested(res.Players)
	return res, nil
}

// historyRecord maps one history entry onto the canonical record
func historyRecord(season int, el datasource.Element, h datasource.HistoryEntry, teams map[int]string, fixtures map[int]datasource.Fixture) models.PlayerRecord {
	rec := models.NewPlayerRecord()
	rec.Element = el.ID
	rec.Season = season
	rec.Gameweek = h.Round
	rec.FullName = strings.Join(strings.Fields(el.FirstName+" "+el.SecondName), " ")
	if pos, ok := models.PositionFromElementType(el.ElementType); ok {
		rec.Position = pos
	}

	rec.TeamIDCurrent = models.IntPtr(el.Team)
	rec.TeamNameCurrent = teams[el.Team]
	rec.Fixture = models.IntPtr(h.Fixture)
	rec.OpponentTeam = models.IntPtr(h.OpponentTeam)
	rec.OpponentTeamName = teams[h.OpponentTeam]
	rec.WasHome = models.BoolPtr(h.WasHome)

	if f, ok := fixtures[h.Fixture]; ok {
		team := f.TeamA
		if h.WasHome {
			team = f.TeamH
		}
		rec.TeamIDGW = models.IntPtr(team)
		rec.TeamNameGW = teams[team]
	}

	if el.NowCost > 0 {
		price := decimal.New(int64(el.NowCost), -1)
		rec.Price = &price
	}

	stats := map[models.Stat]datasource.FlexFloat{
		models.StatMinutes:                  h.Minutes,
		models.StatTotalPoints:              h.TotalPoints,
		models.StatExpectedGoalInvolvements: h.ExpectedGoalInvolvements,
		models.StatICTIndex:                 h.ICTIndex,
		models.StatExpectedGoals:            h.ExpectedGoals,
		models.StatExpectedAssists:          h.ExpectedAssists,
		models.StatBPS:                      h.BPS,
		models.StatStarts:                   h.Starts,
		models.StatCleanSheets:              h.CleanSheets,
		models.StatAssists:                  h.Assists,
		models.StatCreativity:               h.Creativity,
		models.StatBonus:                    h.Bonus,
		models.StatPenaltiesMissed:          h.PenaltiesMissed,
		models.StatPenaltiesSaved:           h.PenaltiesSaved,
		models.StatInfluence:                h.Influence,
		models.StatSaves:                    h.Saves,
		models.StatExpectedGoalsConceded:    h.ExpectedGoalsConceded,
		models.StatRedCards:                 h.RedCards,
		models.StatThreat:                   h.Threat,
		models.StatYellowCards:              h.YellowCards,
		models.StatGoalsConceded:            h.GoalsConceded,
		models.StatGoalsScored:              h.GoalsScored,
		models.StatOwnGoals:                 h.OwnGoals,
		models.StatPointsPerGame:            el.PointsPerGame,
	}
	// absent or null fields stay missing rather than becoming zero
	for s, f := range stats {
		if v, ok := f.Get(); ok {
			rec.SetStat(s, v)
		}
	}
	if h.TeamHScore != nil {
		rec.SetStat(models.StatTeamHScore, float64(*h.TeamHScore))
	}
	if h.TeamAScore != nil {
		rec.SetStat(models.StatTeamAScore, float64(*h.TeamAScore))
	}
	return rec
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	return datasource.ErrorCode(err)
}
