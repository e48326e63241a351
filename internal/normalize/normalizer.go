// Package normalize maps heterogeneous per-player CSV sources onto the
// canonical panel schema, inferring missing keys from file paths.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/fplpanel/internal/models"
)

// File-level rejection reasons
var (
	ErrMissingIdentifier = errors.New("missing player identifier")
	ErrMissingGameweek   = errors.New("missing gameweek")
	ErrMissingSeason     = errors.New("missing season")
	ErrEmptyTable        = errors.New("table has no header")
)

// Options controls source normalization
type Options struct {
	// DefaultSeason is used when a source has no season column. Zero means
	// infer the season from the path.
	DefaultSeason int
}

// Source is a normalized input: canonical columns in first-seen order and
// the records that could be decoded.
type Source struct {
	Path    string
	Columns []string
	Records []models.PlayerRecord

	// RejectedRows counts rows whose element, gameweek or season could not
	// be read as integers
	RejectedRows int
	// InvalidCells counts non-key cells that failed to parse and were left missing
	InvalidCells int
	// Inferred lists the key columns that were taken from the path
	Inferred []string
}

// Normalizer converts raw tables into Sources
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a normalizer
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize standardizes one table. A file that still lacks an identifier,
// gameweek or season after inference is rejected as a whole.
func (n *Normalizer) Normalize(table *models.RawTable) (*Source, error) {
	if len(table.Header) == 0 {
		return nil, fmt.Errorf("%s: %w", table.Path, ErrEmptyTable)
	}

	cols := StandardizeColumns(table.Header)
	src := &Source{Path: table.Path}

	var (
		constElement  *int
		constGameweek *int
		constSeason   *int
		constName     string
	)

	if indexOf(cols, models.ColElement) < 0 {
		if id, ok := InferIdentifier(table.Path); ok {
			constElement = &id
		} else if i, ok := singleIDColumn(cols); ok {
			cols[i] = models.ColElement
		}
		if constElement != nil {
			src.Inferred = append(src.Inferred, models.ColElement)
		}
	}
	if constElement == nil && indexOf(cols, models.ColElement) < 0 {
		return nil, fmt.Errorf("%s: %w", table.Path, ErrMissingIdentifier)
	}

	if indexOf(cols, models.ColGameweek) < 0 {
		gw, ok := InferGameweek(table.Path)
		if !ok {
			return nil, fmt.Errorf("%s: %w", table.Path, ErrMissingGameweek)
		}
		constGameweek = &gw
		src.Inferred = append(src.Inferred, models.ColGameweek)
	}

	firstIdx := indexOf(cols, "first_name")
	secondIdx := indexOf(cols, "second_name")
	composeName := false
	if indexOf(cols, models.ColFullName) < 0 {
		switch {
		case firstIdx >= 0 || secondIdx >= 0:
			composeName = true
		default:
			if name, ok := InferName(table.Path); ok {
				constName = name
				src.Inferred = append(src.Inferred, models.ColFullName)
			}
		}
	}

	if indexOf(cols, models.ColSeason) < 0 {
		season := n.opts.DefaultSeason
		if season == 0 {
			inferred, ok := InferSeason(table.Path)
			if !ok {
				return nil, fmt.Errorf("%s: %w", table.Path, ErrMissingSeason)
			}
			season = inferred
			src.Inferred = append(src.Inferred, models.ColSeason)
		}
		constSeason = &season
	}

	for _, c := range cols {
		if c != "" {
			src.Columns = append(src.Columns, c)
		}
	}
	for _, c := range []string{models.ColElement, models.ColGameweek, models.ColFullName, models.ColSeason} {
		if indexOf(src.Columns, c) < 0 && (c != models.ColFullName || composeName || constName != "") {
			src.Columns = append(src.Columns, c)
		}
	}

	src.Records = make([]models.PlayerRecord, 0, len(table.Rows))
	for i := range table.Rows {
		rec := models.NewPlayerRecord()
		if constElement != nil {
			rec.Element = *constElement
		}
		if constGameweek != nil {
			rec.Gameweek = *constGameweek
		}
		if constSeason != nil {
			rec.Season = *constSeason
		}
		rec.FullName = constName

		valid := true
		for j, c := range cols {
			if c == "" {
				continue
			}
			raw := table.Cell(i, j)
			err := rec.SetValue(c, raw)
			if isKeyColumn(c) && (err != nil || strings.TrimSpace(raw) == "") {
				valid = false
				break
			}
			if err != nil {
				src.InvalidCells++
			}
		}
		if !valid || rec.Gameweek <= 0 {
			src.RejectedRows++
			continue
		}

		if composeName {
			first := strings.TrimSpace(table.Cell(i, firstIdx))
			second := strings.TrimSpace(table.Cell(i, secondIdx))
			rec.FullName = collapseSpaces(first + " " + second)
		}

		src.Records = append(src.Records, rec)
	}

	return src, nil
}

func isKeyColumn(c string) bool {
	return c == models.ColElement || c == models.ColGameweek || c == models.ColSeason
}

// singleIDColumn returns the only column ending in _id, if exactly one exists
func singleIDColumn(cols []string) (int, bool) {
	found := -1
	for i, c := range cols {
		if strings.HasSuffix(c, "_id") || c == "id" {
			if found >= 0 {
				return -1, false
			}
			found = i
		}
	}
	return found, found >= 0
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
