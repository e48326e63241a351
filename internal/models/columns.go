package models

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical non-statistic column names
const (
	ColElement          = "element"
	ColSeason           = "season"
	ColGameweek         = "gw"
	ColFullName         = "full_name"
	ColPosition         = "position"
	ColTeamIDCurrent    = "team_id_current"
	ColTeamIDGW         = "team_id_gw"
	ColOpponentTeam     = "opponent_team"
	ColFixture          = "fixture"
	ColWasHome          = "was_home"
	ColTeamNameCurrent  = "team_name_current"
	ColTeamNameGW       = "team_name_gw"
	ColOpponentTeamName = "opponent_team_name"
	ColPriceNow         = "price_now"
)

// PanelColumns is the fixed output column list of a season panel
var PanelColumns = []string{
	ColElement, ColGameweek,
	"minutes", "expected_goal_involvements", "ict_index", "expected_goals", "expected_assists",
	"bps", ColFixture, "starts", "clean_sheets", "assists", "creativity", "team_h_score",
	"total_points", "bonus", "penalties_missed", "penalties_saved", ColOpponentTeam, "influence",
	"saves", "expected_goals_conceded", "red_cards", "team_a_score", "threat", "yellow_cards",
	"goals_conceded", "goals_scored", "own_goals", "points_per_game",
	ColFullName, ColSeason, ColPosition,
	ColTeamIDCurrent, ColTeamNameCurrent, ColTeamIDGW, ColTeamNameGW, ColOpponentTeamName,
	ColPriceNow, ColWasHome,
}

var canonicalColumns = func() map[string]bool {
	m := make(map[string]bool, len(PanelColumns))
	for _, c := range PanelColumns {
		m[c] = true
	}
	return m
}()

// IsCanonical reports whether the column maps onto a typed PlayerRecord field
func IsCanonical(col string) bool {
	return canonicalColumns[col]
}

// Value returns the column value formatted for CSV output and whether it is present
func (r *PlayerRecord) Value(col string) (string, bool) {
	switch col {
	case ColElement:
		return strconv.Itoa(r.Element), true
	case ColSeason:
		return strconv.Itoa(r.Season), true
	case ColGameweek:
		return strconv.Itoa(r.Gameweek), true
	case ColFullName:
		return r.FullName, r.FullName != ""
	case ColPosition:
		return string(r.Position), r.Position != ""
	case ColTeamIDCurrent:
		return formatIntPtr(r.TeamIDCurrent)
	case ColTeamIDGW:
		return formatIntPtr(r.TeamIDGW)
	case ColOpponentTeam:
		return formatIntPtr(r.OpponentTeam)
	case ColFixture:
		return formatIntPtr(r.Fixture)
	case ColWasHome:
		if r.WasHome == nil {
			return "", false
		}
		if *r.WasHome {
			return "True", true
		}
		return "False", true
	case ColTeamNameCurrent:
		return r.TeamNameCurrent, r.TeamNameCurrent != ""
	case ColTeamNameGW:
		return r.TeamNameGW, r.TeamNameGW != ""
	case ColOpponentTeamName:
		return r.OpponentTeamName, r.OpponentTeamName != ""
	case ColPriceNow:
		if r.Price == nil {
			return "", false
		}
		return r.Price.String(), true
	}
	if s, ok := StatByName(col); ok {
		v, present := r.Stats[s]
		if !present {
			return "", false
		}
		return FormatFloat(v), true
	}
	v, ok := r.Extra[col]
	return v, ok && v != ""
}

// SetValue parses raw into the column's typed field. An empty raw value
// leaves the field missing.
func (r *PlayerRecord) SetValue(col, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var err error
	switch col {
	case ColElement:
		r.Element, err = ParseInt(raw)
	case ColSeason:
		r.Season, err = ParseSeason(raw)
	case ColGameweek:
		r.Gameweek, err = ParseInt(raw)
	case ColFullName:
		r.FullName = raw
	case ColPosition:
		p, ok := ParsePosition(raw)
		if !ok {
			err = fmt.Errorf("unknown position %q", raw)
			break
		}
		r.Position = p
	case ColTeamIDCurrent:
		r.TeamIDCurrent, err = parseIntPtr(raw)
	case ColTeamIDGW:
		r.TeamIDGW, err = parseIntPtr(raw)
	case ColOpponentTeam:
		r.OpponentTeam, err = parseIntPtr(raw)
	case ColFixture:
		r.Fixture, err = parseIntPtr(raw)
	case ColWasHome:
		var b bool
		b, err = ParseBool(raw)
		if err == nil {
			r.WasHome = &b
		}
	case ColTeamNameCurrent:
		r.TeamNameCurrent = raw
	case ColTeamNameGW:
		r.TeamNameGW = raw
	case ColOpponentTeamName:
		r.OpponentTeamName = raw
	case ColPriceNow:
		var d decimal.Decimal
		d, err = decimal.NewFromString(raw)
		if err == nil {
			r.Price = &d
		}
	default:
		if s, ok := StatByName(col); ok {
			var v float64
			v, err = ParseFloat(raw)
			if err == nil {
				r.SetStat(s, v)
			}
			break
		}
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[col] = raw
	}
	if err != nil {
		return fmt.Errorf("%w: column %s: %v", ErrInvalidValue, col, err)
	}
	return nil
}

// ParseFloat parses a numeric cell, rejecting NaN and infinities
func ParseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}

// ParseInt accepts integral values written as integers or floats ("3", "3.0")
func ParseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, nil
	}
	v, err := ParseFloat(raw)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("non-integral value %q", raw)
	}
	return int(v), nil
}

// ParseBool accepts true/false, 1/0 and yes/no in any case
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "1.0", "yes", "y", "t":
		return true, nil
	case "false", "0", "0.0", "no", "n", "f":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", raw)
}

var seasonPattern = regexp.MustCompile(`^(?:20)?(\d{2})\s*[/\-_]?\s*(?:20)?(\d{2})$`)

// ParseSeason converts a season label into its four-digit ordinal.
// Accepted forms: 2324, 23/24, 2023/24, 2023-24, 2023/2024.
func ParseSeason(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, ".0") {
		raw = strings.TrimSuffix(raw, ".0")
	}
	m := seasonPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, fmt.Errorf("unrecognised season %q", raw)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return 0, fmt.Errorf("season %q does not span consecutive years", raw)
	}
	return start*100 + end, nil
}

// FormatFloat renders a float with the shortest exact representation
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatIntPtr(p *int) (string, bool) {
	if p == nil {
		return "", false
	}
	return strconv.Itoa(*p), true
}

func parseIntPtr(raw string) (*int, error) {
	n, err := ParseInt(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
