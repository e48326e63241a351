package identity

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/fplpanel/internal/models"
)

// Options controls identity resolution
type Options struct {
	// CurrentSeason anchors the retention filter. Zero selects the most
	// recent season present in the data.
	CurrentSeason int
}

// Collision is a (player_key, season, gw) clash caused by two records
// folding onto the same normalized name
type Collision struct {
	Name     string
	Season   int
	Gameweek int
}

// Report summarizes one resolution pass
type Report struct {
	Input         int
	EmptyNames    int
	NotRetained   int
	Players       int
	CurrentSeason int
	Collisions    []Collision
}

// Resolver assigns pipeline-wide player keys.
//
// Two different people with the same normalized name share one key. When
// that produces duplicate (player_key, season, gw) rows the later row wins
// and a warning is logged.
type Resolver struct {
	opts   Options
	logger logrus.FieldLogger
}

// NewResolver creates a resolver. A nil logger discards output.
func NewResolver(opts Options, logger logrus.FieldLogger) *Resolver {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Resolver{opts: opts, logger: logger}
}

type slotKey struct {
	player, season, gw int
}

// Resolve folds names to ASCII, drops unnamed records and players absent
// from the current season, and re-keys Element to a player key numbered
// 1, 2, ... in first-encountered name order. The input is not modified.
func (r *Resolver) Resolve(records []models.PlayerRecord) ([]models.PlayerRecord, Report) {
	report := Report{Input: len(records)}

	named := make([]models.PlayerRecord, 0, len(records))
	for _, rec := range records {
		rec = rec.Clone()
		rec.FullName = NormalizeName(rec.FullName)
		if rec.FullName == "" {
			report.EmptyNames++
			continue
		}
		named = append(named, rec)
	}

	current := r.opts.CurrentSeason
	if current == 0 {
		for _, rec := range named {
			if rec.Season > current {
				current = rec.Season
			}
		}
	}
	report.CurrentSeason = current

	retained := make(map[string]bool)
	for _, rec := range named {
		if rec.Season == current {
			retained[rec.FullName] = true
		}
	}

	keys := make(map[string]int)
	slots := make(map[slotKey]int)
	out := make([]models.PlayerRecord, 0, len(named))
	for _, rec := range named {
		if !retained[rec.FullName] {
			report.NotRetained++
			continue
		}
		key, ok := keys[rec.FullName]
		if !ok {
			key = len(keys) + 1
			keys[rec.FullName] = key
		}
		rec.Element = key

		slot := slotKey{key, rec.Season, rec.Gameweek}
		if idx, dup := slots[slot]; dup {
			out[idx] = rec
			c := Collision{Name: rec.FullName, Season: rec.Season, Gameweek: rec.Gameweek}
			report.Collisions = append(report.Collisions, c)
			r.logger.WithFields(logrus.Fields{
				"full_name":  c.Name,
				"player_key": key,
				"season":     c.Season,
				"gw":         c.Gameweek,
			}).Warn("Name collision: later record replaces earlier one")
			continue
		}
		slots[slot] = len(out)
		out = append(out, rec)
	}
	report.Players = len(keys)

	return out, report
}
