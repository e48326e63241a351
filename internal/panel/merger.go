// Package panel unions normalized sources into one schema-stable,
// ordered per-player, per-gameweek table.
package panel

import (
	"errors"
	"sort"

	"github.com/yourusername/fplpanel/internal/models"
	"github.com/yourusername/fplpanel/internal/normalize"
)

// ErrNoUsableInput is returned when no source contributes a valid record
var ErrNoUsableInput = errors.New("no usable input")

// Panel is a merged table: its column list and its records
type Panel struct {
	Columns []string
	Records []models.PlayerRecord
}

// Options controls merging
type Options struct {
	// TargetSchema, when set, is the exact output column list
	TargetSchema []string
}

// Report summarizes a merge
type Report struct {
	Sources      int
	RowsIn       int
	Duplicates   int
	RowsOut      int
	ColumnsAdded []string
	// FixtureConflicts lists dropped duplicates that carried a different
	// fixture than the surviving record, typically a double gameweek
	FixtureConflicts []FixtureConflict
}

// FixtureConflict is a (season, element, gw) key seen with two fixtures
type FixtureConflict struct {
	Season         int
	Element        int
	Gameweek       int
	KeptFixture    int
	DroppedFixture int
}

// Merger unions sources
type Merger struct {
	opts Options
}

// NewMerger creates a merger
func NewMerger(opts Options) *Merger {
	return &Merger{opts: opts}
}

type dedupKey struct {
	season, element, gw int
}

// Merge unions the sources in order. Among records sharing
// (season, element, gw) only the last encountered survives. The result is
// stably sorted by (element, gw).
func (m *Merger) Merge(sources []*normalize.Source) (*Panel, Report, error) {
	report := Report{Sources: len(sources)}
	if len(sources) == 0 {
		return nil, report, ErrNoUsableInput
	}

	var (
		columns []string
		seen    = make(map[string]bool)
		all     []models.PlayerRecord
	)
	for _, src := range sources {
		for _, c := range src.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
		for _, rec := range src.Records {
			all = append(all, rec.Clone())
		}
	}
	report.RowsIn = len(all)
	if len(all) == 0 {
		return nil, report, ErrNoUsableInput
	}

	last := make(map[dedupKey]int, len(all))
	for i, rec := range all {
		last[dedupKey{rec.Season, rec.Element, rec.Gameweek}] = i
	}
	records := make([]models.PlayerRecord, 0, len(last))
	for i, rec := range all {
		kept := last[dedupKey{rec.Season, rec.Element, rec.Gameweek}]
		if kept == i {
			records = append(records, rec)
			continue
		}
		if c, ok := fixtureConflict(all[kept], rec); ok {
			report.FixtureConflicts = append(report.FixtureConflicts, c)
		}
	}
	report.Duplicates = len(all) - len(records)

	if len(m.opts.TargetSchema) > 0 {
		report.ColumnsAdded = missingColumns(m.opts.TargetSchema, seen)
		columns = append([]string(nil), m.opts.TargetSchema...)
		keep := make(map[string]bool, len(columns))
		for _, c := range columns {
			keep[c] = true
		}
		for i := range records {
			for k := range records[i].Extra {
				if !keep[k] {
					delete(records[i].Extra, k)
				}
			}
		}
	}

	SortByElementGameweek(records)
	report.RowsOut = len(records)

	return &Panel{Columns: columns, Records: records}, report, nil
}

// SortByElementGameweek stably orders records by (element, gw)
func SortByElementGameweek(records []models.PlayerRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Element != records[j].Element {
			return records[i].Element < records[j].Element
		}
		return records[i].Gameweek < records[j].Gameweek
	})
}

func fixtureConflict(kept, dropped models.PlayerRecord) (FixtureConflict, bool) {
	if kept.Fixture == nil || dropped.Fixture == nil || *kept.Fixture == *dropped.Fixture {
		return FixtureConflict{}, false
	}
	return FixtureConflict{
		Season:         kept.Season,
		Element:        kept.Element,
		Gameweek:       kept.Gameweek,
		KeptFixture:    *kept.Fixture,
		DroppedFixture: *dropped.Fixture,
	}, true
}

func missingColumns(target []string, present map[string]bool) []string {
	var out []string
	for _, c := range target {
		if !present[c] {
			out = append(out, c)
		}
	}
	return out
}
