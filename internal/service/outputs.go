package service

import (
	"strconv"

	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/panel"
	"github.com/yourusername/fplpanel/internal/squad"
)

const colPredicted = "predicted_points_next"

// PredictionColumns is the predictions CSV layout
var PredictionColumns = []string{
	"player_key", models.ColSeason, models.ColGameweek, models.ColFullName, models.ColPosition,
	models.ColTeamNameCurrent, models.ColPriceNow, colPredicted, models.ColTargetNext,
}

// SquadColumns is the squad CSV layout
var SquadColumns = []string{
	"player_key", models.ColFullName, models.ColPosition, models.ColTeamNameCurrent,
	models.ColPriceNow, colPredicted,
}

type predictionRow struct{ p *models.Prediction }

func (r predictionRow) Value(col string) (string, bool) {
	p := r.p
	switch col {
	case "player_key":
		return strconv.Itoa(p.PlayerKey), true
	case models.ColSeason:
		return strconv.Itoa(p.Season), true
	case models.ColGameweek:
		return strconv.Itoa(p.Gameweek), true
	case models.ColFullName:
		return p.FullName, p.FullName != ""
	case models.ColPosition:
		return string(p.Position), p.Position != ""
	case models.ColTeamNameCurrent:
		return p.Team, p.Team != ""
	case models.ColPriceNow:
		if p.Price == nil {
			return "", false
		}
		return p.Price.StringFixed(1), true
	case colPredicted:
		return models.FormatFloat(p.Predicted), true
	case models.ColTargetNext:
		if p.Actual == nil {
			return "", false
		}
		return models.FormatFloat(*p.Actual), true
	}
	return "", false
}

func predictionRows(preds []models.Prediction) []panel.Valuer {
	rows := make([]panel.Valuer, len(preds))
	for i := range preds {
		rows[i] = predictionRow{&preds[i]}
	}
	return rows
}

type squadRow struct{ c *squad.Candidate }

func (r squadRow) Value(col string) (string, bool) {
	c := r.c
	switch col {
	case "player_key":
		return strconv.Itoa(c.PlayerKey), true
	case models.ColFullName:
		return c.FullName, c.FullName != ""
	case models.ColPosition:
		return string(c.Position), true
	case models.ColTeamNameCurrent:
		return c.Team, true
	case models.ColPriceNow:
		return c.Price.StringFixed(1), true
	case colPredicted:
		return models.FormatFloat(*c.Score), true
	}
	return "", false
}

func squadRows(sel *squad.Selection) []panel.Valuer {
	rows := make([]panel.Valuer, len(sel.Picks))
	for i := range sel.Picks {
		rows[i] = squadRow{&sel.Picks[i]}
	}
	return rows
}

func featureRows(rows []models.FeatureRow) []panel.Valuer {
	out := make([]panel.Valuer, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
