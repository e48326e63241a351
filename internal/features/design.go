package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/yourusername/fplpanel/internal/models"
)

// ErrNoTrainingRows is returned when the training partition is empty
var ErrNoTrainingRows = errors.New("no training rows with a known target")

// ExcludedColumns never enter the model's feature set
var ExcludedColumns = []string{
	models.ColTargetNext,
	"total_points",
	models.ColFullName,
	models.ColTeamNameCurrent,
	models.ColTeamNameGW,
	models.ColOpponentTeamName,
	models.ColSeason,
	models.ColFixture,
	models.ColElement,
	models.ColGameweek,
	models.ColTeamIDCurrent,
	models.ColTeamIDGW,
	models.ColOpponentTeam,
	models.ColPosition,
}

// Partition splits engineered rows into training and evaluation sets.
// Training rows come from a training season, or from the current season up
// to the cutoff, and must have a target. Evaluation rows are the current
// season's target gameweek.
func (e *Engine) Partition(rows []models.FeatureRow) (train, eval []models.FeatureRow) {
	trainSeasons := make(map[int]bool, len(e.cfg.TrainSeasons))
	for _, s := range e.cfg.TrainSeasons {
		trainSeasons[s] = true
	}

	for _, row := range rows {
		season, gw := row.Record.Season, row.Record.Gameweek
		inTrain := trainSeasons[season] || (season == e.cfg.CurrentSeason && gw <= e.cfg.TrainGameweekUntil)
		if inTrain && row.TargetNext != nil {
			train = append(train, row)
		}
		if season == e.cfg.CurrentSeason && gw == e.cfg.TargetGameweek {
			eval = append(eval, row)
		}
	}
	return train, eval
}

// Design is the numeric hand-off to a regressor
type Design struct {
	Features []string
	TrainX   *mat.Dense
	TrainY   []float64
	// EvalX is nil when there are no evaluation rows
	EvalX *mat.Dense
	// EvalY holds the known targets of evaluation rows, nil where unknown
	EvalY []*float64
}

// FeatureColumns selects the numeric columns of the training rows that are
// not excluded or dropped, preserving column order.
func (e *Engine) FeatureColumns(columns []string, train []models.FeatureRow) []string {
	skip := make(map[string]bool, len(ExcludedColumns)+len(e.cfg.DropColumns))
	for _, c := range ExcludedColumns {
		skip[c] = true
	}
	for _, c := range e.cfg.DropColumns {
		skip[c] = true
	}

	var out []string
	for _, col := range columns {
		if skip[col] {
			continue
		}
		if isNumericColumn(col, train) {
			out = append(out, col)
		}
	}
	return out
}

// isNumericColumn reports whether every present value parses as a number
// and at least one is present
func isNumericColumn(col string, rows []models.FeatureRow) bool {
	found := false
	for i := range rows {
		if _, present := rows[i].Value(col); !present {
			continue
		}
		if _, ok := rows[i].Numeric(col); !ok {
			return false
		}
		found = true
	}
	return found
}

// BuildDesign assembles the training and evaluation matrices. Missing
// numeric values become 0.
func (e *Engine) BuildDesign(columns []string, train, eval []models.FeatureRow) (*Design, error) {
	if len(train) == 0 {
		return nil, ErrNoTrainingRows
	}
	cols := e.FeatureColumns(columns, train)
	if len(cols) == 0 {
		return nil, fmt.Errorf("no numeric feature columns in %d training rows", len(train))
	}

	d := &Design{
		Features: cols,
		TrainX:   matrix(train, cols),
		TrainY:   make([]float64, len(train)),
	}
	for i, row := range train {
		d.TrainY[i] = *row.TargetNext
	}

	if len(eval) > 0 {
		d.EvalX = matrix(eval, cols)
		d.EvalY = make([]*float64, len(eval))
		for i, row := range eval {
			d.EvalY[i] = row.TargetNext
		}
	}
	return d, nil
}

func matrix(rows []models.FeatureRow, features []string) *mat.Dense {
	data := make([]float64, 0, len(rows)*len(features))
	for i := range rows {
		for _, col := range features {
			v, _ := rows[i].Numeric(col)
			data = append(data, v)
		}
	}
	return mat.NewDense(len(rows), len(features), data)
}
