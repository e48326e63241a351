// Package squad picks a formation-, budget- and team-constrained squad from
// scored candidates.
//
// Selection is greedy: positions are filled in the fixed order Goalkeeper,
// Defender, Midfielder, Forward, each from candidates ranked by predicted
// score. An early position can spend budget a later one needed, so a
// feasible squad is not necessarily the best one.
package squad

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yourusername/fplpanel/internal/models"
)

// ErrInfeasibleSelection is returned when a position's need cannot be met
var ErrInfeasibleSelection = errors.New("infeasible selection")

// UnknownTeam stands in for a missing team name when applying the team cap
const UnknownTeam = "Unknown"

// Candidate is a player eligible for selection
type Candidate struct {
	PlayerKey int
	FullName  string
	Position  models.Position
	Team      string
	Price     *decimal.Decimal
	Score     *float64
}

// Config holds the selection constraints
type Config struct {
	Formation  map[models.Position]int
	Budget     decimal.Decimal
	MaxPerTeam int
}

// DefaultConfig is a 1-3-4-3 eleven on a 100.0 budget with at most three
// players per team
func DefaultConfig() Config {
	return Config{
		Formation: map[models.Position]int{
			models.Goalkeeper: 1,
			models.Defender:   3,
			models.Midfielder: 4,
			models.Forward:    3,
		},
		Budget:     decimal.NewFromInt(100),
		MaxPerTeam: 3,
	}
}

// Size is the total number of players the formation needs
func (c Config) Size() int {
	n := 0
	for _, need := range c.Formation {
		n += need
	}
	return n
}

// Selection is a feasible squad
type Selection struct {
	Picks      []Candidate
	TotalPrice decimal.Decimal
	Remaining  decimal.Decimal
	TeamCounts map[string]int
}

// TotalScore sums the predicted scores of the picks
func (s *Selection) TotalScore() float64 {
	total := 0.0
	for _, p := range s.Picks {
		total += *p.Score
	}
	return total
}

// InfeasibleError reports which positions could not be filled
type InfeasibleError struct {
	Unmet  map[models.Position]int
	Picked int
}

func (e *InfeasibleError) Error() string {
	parts := make([]string, 0, len(e.Unmet))
	for _, p := range models.Positions {
		if n := e.Unmet[p]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s short by %d", p, n))
		}
	}
	return fmt.Sprintf("%s: %s", ErrInfeasibleSelection, strings.Join(parts, ", "))
}

// Is matches ErrInfeasibleSelection
func (e *InfeasibleError) Is(target error) bool {
	return target == ErrInfeasibleSelection
}

// Select runs the greedy pick. It returns an *InfeasibleError, never a
// partial squad, when any position's need is left unmet.
func Select(candidates []Candidate, cfg Config) (*Selection, error) {
	if cfg.MaxPerTeam <= 0 {
		return nil, fmt.Errorf("max players per team must be positive, got %d", cfg.MaxPerTeam)
	}

	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Score == nil || c.Price == nil || !c.Price.IsPositive() {
			continue
		}
		if strings.TrimSpace(c.Team) == "" {
			c.Team = UnknownTeam
		}
		pool = append(pool, c)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return *pool[i].Score > *pool[j].Score
	})

	remaining := cfg.Budget
	teamCounts := make(map[string]int)
	var picks []Candidate
	unmet := make(map[models.Position]int)

	for _, pos := range models.Positions {
		need := cfg.Formation[pos]
		for _, c := range pool {
			if need <= 0 {
				break
			}
			if c.Position != pos {
				continue
			}
			if c.Price.GreaterThan(remaining) {
				continue
			}
			if teamCounts[c.Team] >= cfg.MaxPerTeam {
				continue
			}
			picks = append(picks, c)
			remaining = remaining.Sub(*c.Price)
			teamCounts[c.Team]++
			need--
		}
		if need > 0 {
			unmet[pos] = need
		}
	}

	if len(unmet) > 0 {
		return nil, &InfeasibleError{Unmet: unmet, Picked: len(picks)}
	}

	return &Selection{
		Picks:      picks,
		TotalPrice: cfg.Budget.Sub(remaining),
		Remaining:  remaining,
		TeamCounts: teamCounts,
	}, nil
}
