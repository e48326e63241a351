package models

import (
	"github.com/shopspring/decimal"
)

// Prediction is a model forecast of a player's next-gameweek points
type Prediction struct {
	PlayerKey int              `json:"player_key"`
	Season    int              `json:"season"`
	Gameweek  int              `json:"gw"`
	FullName  string           `json:"full_name"`
	Position  Position         `json:"position"`
	Team      string           `json:"team_name_current"`
	Price     *decimal.Decimal `json:"price_now"`
	Predicted float64          `json:"predicted_points_next"`
	// Actual is the realised target_next when it is already known
	Actual *float64 `json:"target_next,omitempty"`
	// Index points back into the evaluation rows the prediction was made for
	Index int `json:"-"`
}

// Residual returns predicted minus actual, if the actual is known
func (p *Prediction) Residual() (float64, bool) {
	if p.Actual == nil {
		return 0, false
	}
	return p.Predicted - *p.Actual, true
}
