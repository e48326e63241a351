// Package features derives leakage-free predictive features from a
// multi-season panel.
package features

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/fplpanel/internal/models"
)

// DefaultBaseStats are the statistics that get rolling means
var DefaultBaseStats = []models.Stat{
	models.StatMinutes,
	models.StatExpectedGoalInvolvements,
	models.StatBPS,
	models.StatICTIndex,
	models.StatExpectedGoals,
	models.StatExpectedAssists,
	models.StatCreativity,
}

// Derived is a momentum or lag feature source: a short prefix naming a stat
type Derived struct {
	Prefix string
	Stat   models.Stat
}

// DefaultDerived drives the momentum and lag-1 features
var DefaultDerived = []Derived{
	{Prefix: "xgi", Stat: models.StatExpectedGoalInvolvements},
	{Prefix: "minutes", Stat: models.StatMinutes},
}

// Config controls feature construction and the train/eval split
type Config struct {
	Windows      []int
	BaseStats    []models.Stat
	Derived      []Derived
	TrainSeasons []int
	// CurrentSeason is the season being predicted
	CurrentSeason int
	// TrainGameweekUntil is the last current-season gameweek used for training
	TrainGameweekUntil int
	// TargetGameweek selects the evaluation rows
	TargetGameweek int
	// DropColumns are removed from the model's feature set
	DropColumns []string
}

// DefaultConfig mirrors the production settings
func DefaultConfig() Config {
	return Config{
		Windows:            []int{5, 8},
		BaseStats:          DefaultBaseStats,
		Derived:            DefaultDerived,
		TrainSeasons:       []int{2324, 2425},
		CurrentSeason:      2526,
		TrainGameweekUntil: 6,
		TargetGameweek:     7,
		DropColumns:        []string{"team_h_score", "points_per_game", "transfers_in", models.ColWasHome},
	}
}

// Validate checks the window and partition settings
func (c Config) Validate() error {
	if len(c.Windows) == 0 {
		return fmt.Errorf("at least one rolling window is required")
	}
	for i, w := range c.Windows {
		if w < 1 {
			return fmt.Errorf("rolling window must be positive, got %d", w)
		}
		// momentum reads the first window as short and the last as long
		if i > 0 && w <= c.Windows[i-1] {
			return fmt.Errorf("rolling windows must be strictly ascending, got %v", c.Windows)
		}
	}
	if c.TargetGameweek <= c.TrainGameweekUntil {
		return fmt.Errorf("target gameweek %d must come after training cutoff %d", c.TargetGameweek, c.TrainGameweekUntil)
	}
	for _, s := range c.TrainSeasons {
		if s == c.CurrentSeason {
			return fmt.Errorf("current season %d cannot also be a training season", s)
		}
	}
	return nil
}

func (c Config) shortWindow() int { return c.Windows[0] }
func (c Config) longWindow() int  { return c.Windows[len(c.Windows)-1] }

// Result is the engineered table
type Result struct {
	Rows []models.FeatureRow
	// Columns lists the input columns followed by every engineered column
	Columns []string
}

// Engine builds feature rows
type Engine struct {
	cfg Config
}

// NewEngine creates a feature engine
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// EngineeredColumns lists the feature columns the engine adds, in output order
func (e *Engine) EngineeredColumns() []string {
	cols := []string{models.ColTargetNext}
	for _, w := range e.cfg.Windows {
		for _, s := range e.cfg.BaseStats {
			cols = append(cols, models.MeanFeature(s, w))
		}
	}
	if len(e.cfg.Windows) > 1 {
		for _, d := range e.cfg.Derived {
			cols = append(cols, models.MomentumFeature(d.Prefix, e.cfg.shortWindow(), e.cfg.longWindow()))
		}
	}
	for _, d := range e.cfg.Derived {
		cols = append(cols, models.LagFeature(d.Prefix))
	}
	for _, p := range IndicatorPositions() {
		cols = append(cols, models.PositionIndicator(p))
	}
	return cols
}

// IndicatorPositions are the encoded positions; Defender is the reference
// category and gets no column
func IndicatorPositions() []models.Position {
	return []models.Position{models.Forward, models.Goalkeeper, models.Midfielder}
}

// Build sorts records by (player_key, season, gw) and computes every
// feature using only the current and earlier rows of the same player.
func (e *Engine) Build(records []models.PlayerRecord, inputColumns []string) *Result {
	rows := make([]models.FeatureRow, len(records))
	for i, rec := range records {
		rows[i] = models.NewFeatureRow(rec.Clone())
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Record, rows[j].Record
		if a.Element != b.Element {
			return a.Element < b.Element
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		return a.Gameweek < b.Gameweek
	})

	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].Record.Element == rows[start].Record.Element {
			end++
		}
		e.buildPlayer(rows[start:end])
		start = end
	}

	for i := range rows {
		setPositionIndicators(&rows[i])
	}

	columns := append([]string(nil), inputColumns...)
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, c := range e.EngineeredColumns() {
		if !present[c] {
			columns = append(columns, c)
		}
	}

	return &Result{Rows: rows, Columns: columns}
}

// buildPlayer fills features for one player's rows, already in time order
func (e *Engine) buildPlayer(rows []models.FeatureRow) {
	for i := range rows {
		cur := &rows[i]

		if i+1 < len(rows) && rows[i+1].Record.Season == cur.Record.Season {
			if v, ok := rows[i+1].Record.Stat(models.StatTotalPoints); ok {
				next := v
				cur.TargetNext = &next
			}
		}

		for _, w := range e.cfg.Windows {
			for _, s := range e.cfg.BaseStats {
				if mean, ok := TrailingMean(rows[:i+1], s, w); ok {
					cur.SetFeature(models.MeanFeature(s, w), mean)
				}
			}
		}

		if len(e.cfg.Windows) > 1 {
			short, long := e.cfg.shortWindow(), e.cfg.longWindow()
			for _, d := range e.cfg.Derived {
				sm, okShort := cur.Feature(models.MeanFeature(d.Stat, short))
				lm, okLong := cur.Feature(models.MeanFeature(d.Stat, long))
				if okShort && okLong {
					cur.SetFeature(models.MomentumFeature(d.Prefix, short, long), sm-lm)
				}
			}
		}

		if i > 0 {
			for _, d := range e.cfg.Derived {
				if v, ok := rows[i-1].Record.Stat(d.Stat); ok {
					cur.SetFeature(models.LagFeature(d.Prefix), v)
				}
			}
		}
	}
}

// TrailingMean averages the present values of s over the last window rows
// of history. Missing values are skipped; at least one must be present.
func TrailingMean(history []models.FeatureRow, s models.Stat, window int) (float64, bool) {
	from := len(history) - window
	if from < 0 {
		from = 0
	}
	vals := make([]float64, 0, window)
	for i := from; i < len(history); i++ {
		if v, ok := history[i].Record.Stat(s); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	return stat.Mean(vals, nil), true
}

func setPositionIndicators(row *models.FeatureRow) {
	for _, p := range IndicatorPositions() {
		v := 0.0
		if row.Record.Position == p {
			v = 1
		}
		row.SetFeature(models.PositionIndicator(p), v)
	}
}
