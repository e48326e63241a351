package models

import (
	"github.com/shopspring/decimal"
)

// Stat identifies one of the canonical numeric per-gameweek statistics
type Stat int

// Canonical statistics. The declaration order is the output column order.
const (
	StatMinutes Stat = iota
	StatTotalPoints
	StatExpectedGoalInvolvements
	StatICTIndex
	StatExpectedGoals
	StatExpectedAssists
	StatBPS
	StatStarts
	StatCleanSheets
	StatAssists
	StatCreativity
	StatTeamHScore
	StatTeamAScore
	StatBonus
	StatPenaltiesMissed
	StatPenaltiesSaved
	StatInfluence
	StatSaves
	StatExpectedGoalsConceded
	StatRedCards
	StatThreat
	StatYellowCards
	StatGoalsConceded
	StatGoalsScored
	StatOwnGoals
	StatPointsPerGame
	numStats
)

var statNames = [numStats]string{
	StatMinutes:                  "minutes",
	StatTotalPoints:              "total_points",
	StatExpectedGoalInvolvements: "expected_goal_involvements",
	StatICTIndex:                 "ict_index",
	StatExpectedGoals:            "expected_goals",
	StatExpectedAssists:          "expected_assists",
	StatBPS:                      "bps",
	StatStarts:                   "starts",
	StatCleanSheets:              "clean_sheets",
	StatAssists:                  "assists",
	StatCreativity:               "creativity",
	StatTeamHScore:               "team_h_score",
	StatTeamAScore:               "team_a_score",
	StatBonus:                    "bonus",
	StatPenaltiesMissed:          "penalties_missed",
	StatPenaltiesSaved:           "penalties_saved",
	StatInfluence:                "influence",
	StatSaves:                    "saves",
	StatExpectedGoalsConceded:    "expected_goals_conceded",
	StatRedCards:                 "red_cards",
	StatThreat:                   "threat",
	StatYellowCards:              "yellow_cards",
	StatGoalsConceded:            "goals_conceded",
	StatGoalsScored:              "goals_scored",
	StatOwnGoals:                 "own_goals",
	StatPointsPerGame:            "points_per_game",
}

// String returns the canonical column name of the statistic
func (s Stat) String() string {
	if s < 0 || s >= numStats {
		return "unknown"
	}
	return statNames[s]
}

// AllStats returns every canonical statistic in column order
func AllStats() []Stat {
	out := make([]Stat, numStats)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// StatByName resolves a canonical column name to its Stat
func StatByName(name string) (Stat, bool) {
	for i, n := range statNames {
		if n == name {
			return Stat(i), true
		}
	}
	return 0, false
}

// PlayerRecord is one player's data for one gameweek of one season.
// Nullable fields are pointers or map entries; an absent value is never zero.
type PlayerRecord struct {
	// Element is the source identifier until identity resolution replaces it
	// with the pipeline-wide player key.
	Element  int
	Season   int
	Gameweek int
	FullName string
	Position Position

	TeamIDCurrent *int
	TeamIDGW      *int
	OpponentTeam  *int
	Fixture       *int
	WasHome       *bool

	TeamNameCurrent  string
	TeamNameGW       string
	OpponentTeamName string

	Price *decimal.Decimal

	// Stats holds present statistics only
	Stats map[Stat]float64

	// Extra carries non-canonical source columns verbatim
	Extra map[string]string
}

// NewPlayerRecord returns a record with initialised maps
func NewPlayerRecord() PlayerRecord {
	return PlayerRecord{
		Stats: make(map[Stat]float64),
		Extra: make(map[string]string),
	}
}

// Stat returns a statistic and whether it is present
func (r *PlayerRecord) Stat(s Stat) (float64, bool) {
	v, ok := r.Stats[s]
	return v, ok
}

// SetStat stores a statistic
func (r *PlayerRecord) SetStat(s Stat, v float64) {
	if r.Stats == nil {
		r.Stats = make(map[Stat]float64)
	}
	r.Stats[s] = v
}

// ClearStat marks a statistic as missing
func (r *PlayerRecord) ClearStat(s Stat) {
	delete(r.Stats, s)
}

// PlayerKey returns the resolved identity. It is only meaningful after
// identity resolution has re-keyed the record.
func (r *PlayerRecord) PlayerKey() int {
	return r.Element
}

// Clone returns a deep copy
func (r PlayerRecord) Clone() PlayerRecord {
	out := r
	out.TeamIDCurrent = cloneInt(r.TeamIDCurrent)
	out.TeamIDGW = cloneInt(r.TeamIDGW)
	out.OpponentTeam = cloneInt(r.OpponentTeam)
	out.Fixture = cloneInt(r.Fixture)
	if r.WasHome != nil {
		b := *r.WasHome
		out.WasHome = &b
	}
	if r.Price != nil {
		p := *r.Price
		out.Price = &p
	}
	out.Stats = make(map[Stat]float64, len(r.Stats))
	for k, v := range r.Stats {
		out.Stats[k] = v
	}
	out.Extra = make(map[string]string, len(r.Extra))
	for k, v := range r.Extra {
		out.Extra[k] = v
	}
	return out
}

// PriceFloat returns the price as a float and whether it is present
func (r *PlayerRecord) PriceFloat() (float64, bool) {
	if r.Price == nil {
		return 0, false
	}
	return r.Price.InexactFloat64(), true
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

// BoolPtr returns a pointer to v
func BoolPtr(v bool) *bool {
	return &v
}

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 {
	return &v
}
