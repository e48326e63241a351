package config

import (
	"fmt"

	"github.com/yourusername/fplpanel/internal/models"
)

// Seasons parses the current and training seasons into ordinals
func (f FeaturesConfig) Seasons() (current int, train []int, err error) {
	current, err = models.ParseSeason(f.CurrentSeason)
	if err != nil {
		return 0, nil, fmt.Errorf("features.current_season: %w", err)
	}
	for _, raw := range f.TrainSeasons {
		s, err := models.ParseSeason(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("features.train_seasons: %w", err)
		}
		train = append(train, s)
	}
	return current, train, nil
}

// Stats resolves the configured base statistic names
func (f FeaturesConfig) Stats() ([]models.Stat, error) {
	stats := make([]models.Stat, 0, len(f.BaseStats))
	for _, name := range f.BaseStats {
		s, ok := models.StatByName(name)
		if !ok {
			return nil, fmt.Errorf("features.base_stats: unknown statistic %q", name)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// Positions resolves formation keys, which viper lower-cases, to positions
func (s SelectionConfig) Positions() (map[models.Position]int, error) {
	out := make(map[models.Position]int, len(s.Formation))
	for key, n := range s.Formation {
		p, ok := models.ParsePosition(key)
		if !ok {
			return nil, fmt.Errorf("selection.formation: unknown position %q", key)
		}
		out[p] += n
	}
	return out, nil
}

// SeasonOrdinal parses the season tag applied to ingested rows
func (a APIConfig) SeasonOrdinal() (int, error) {
	s, err := models.ParseSeason(a.Season)
	if err != nil {
		return 0, fmt.Errorf("api.season: %w", err)
	}
	return s, nil
}
