package datasource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Bootstrap is the bootstrap-static payload
type Bootstrap struct {
	Elements     []Element     `json:"elements"`
	Teams        []Team        `json:"teams"`
	ElementTypes []ElementType `json:"element_types"`
	Events       []Event       `json:"events"`
}

// Element is a player entry in bootstrap-static
type Element struct {
	ID            int       `json:"id"`
	FirstName     string    `json:"first_name"`
	SecondName    string    `json:"second_name"`
	WebName       string    `json:"web_name"`
	Team          int       `json:"team"`
	ElementType   int       `json:"element_type"`
	NowCost       int       `json:"now_cost"` // tenths of a million
	PointsPerGame FlexFloat `json:"points_per_game"`
	Status        string    `json:"status"`
}

// Team is a club entry in bootstrap-static
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// ElementType is a playing position in bootstrap-static
type ElementType struct {
	ID                int    `json:"id"`
	SingularName      string `json:"singular_name"`
	SingularNameShort string `json:"singular_name_short"`
}

// Event is a gameweek entry in bootstrap-static
type Event struct {
	ID        int  `json:"id"`
	Finished  bool `json:"finished"`
	IsCurrent bool `json:"is_current"`
}

// ElementSummary is the element-summary/{id}/ payload
type ElementSummary struct {
	History []HistoryEntry `json:"history"`
}

// HistoryEntry is one played fixture in a player's season history
type HistoryEntry struct {
	Element                  int       `json:"element"`
	Fixture                  int       `json:"fixture"`
	OpponentTeam             int       `json:"opponent_team"`
	TotalPoints              FlexFloat `json:"total_points"`
	WasHome                  bool      `json:"was_home"`
	KickoffTime              string    `json:"kickoff_time"`
	TeamHScore               *int      `json:"team_h_score"`
	TeamAScore               *int      `json:"team_a_score"`
	Round                    int       `json:"round"`
	Minutes                  FlexFloat `json:"minutes"`
	GoalsScored              FlexFloat `json:"goals_scored"`
	Assists                  FlexFloat `json:"assists"`
	CleanSheets              FlexFloat `json:"clean_sheets"`
	GoalsConceded            FlexFloat `json:"goals_conceded"`
	OwnGoals                 FlexFloat `json:"own_goals"`
	PenaltiesSaved           FlexFloat `json:"penalties_saved"`
	PenaltiesMissed          FlexFloat `json:"penalties_missed"`
	YellowCards              FlexFloat `json:"yellow_cards"`
	RedCards                 FlexFloat `json:"red_cards"`
	Saves                    FlexFloat `json:"saves"`
	Bonus                    FlexFloat `json:"bonus"`
	BPS                      FlexFloat `json:"bps"`
	Influence                FlexFloat `json:"influence"`
	Creativity               FlexFloat `json:"creativity"`
	Threat                   FlexFloat `json:"threat"`
	ICTIndex                 FlexFloat `json:"ict_index"`
	Starts                   FlexFloat `json:"starts"`
	ExpectedGoals            FlexFloat `json:"expected_goals"`
	ExpectedAssists          FlexFloat `json:"expected_assists"`
	ExpectedGoalInvolvements FlexFloat `json:"expected_goal_involvements"`
	ExpectedGoalsConceded    FlexFloat `json:"expected_goals_conceded"`
	Value                    int       `json:"value"`
	TransfersBalance         int       `json:"transfers_balance"`
	Selected                 int       `json:"selected"`
	TransfersIn              int       `json:"transfers_in"`
	TransfersOut             int       `json:"transfers_out"`
}

// Fixture is an entry of the fixtures/ payload
type Fixture struct {
	ID         int  `json:"id"`
	Event      *int `json:"event"`
	TeamH      int  `json:"team_h"`
	TeamA      int  `json:"team_a"`
	TeamHScore *int `json:"team_h_score"`
	TeamAScore *int `json:"team_a_score"`
	Finished   bool `json:"finished"`
}

// FlexFloat decodes numbers the API sends either as JSON numbers or as
// decimal strings such as "0.45". Valid is false when the field was
// absent, null, or an empty string.
type FlexFloat struct {
	Value float64
	Valid bool
}

// Flex returns a present FlexFloat holding v
func Flex(v float64) FlexFloat { return FlexFloat{Value: v, Valid: true} }

// UnmarshalJSON accepts a number, a numeric string, or null
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = FlexFloat{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = FlexFloat{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", s, err)
		}
		*f = Flex(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Flex(v)
	return nil
}

// Float64 returns the value, or 0 when missing
func (f FlexFloat) Float64() float64 { return f.Value }

// Get returns the value and whether it was present
func (f FlexFloat) Get() (float64, bool) { return f.Value, f.Valid }
