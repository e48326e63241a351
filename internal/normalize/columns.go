package normalize

import (
	"regexp"
	"strings"

	"github.com/yourusername/fplpanel/internal/models"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonWordRun    = regexp.MustCompile(`[^\w]+`)
)

// synonym maps a source column name onto a canonical one. Order matters:
// the first synonym present wins when several map to the same target.
type synonym struct {
	from, to string
}

var columnSynonyms = []synonym{
	{"round", models.ColGameweek},
	{"event", models.ColGameweek},
	{"gameweek", models.ColGameweek},
	{"player_id", models.ColElement},
	{"id", models.ColElement},
	{"name", models.ColFullName},
	{"web_name", models.ColFullName},
	{"secondname", "second_name"},
	{"firstname", "first_name"},
	{"surname", "second_name"},
	{"last_name", "second_name"},
	{"price", models.ColPriceNow},
	{"element_type", models.ColPosition},
}

// CanonicalColumnName trims, snake-cases and lowercases a raw header
func CanonicalColumnName(raw string) string {
	s := strings.TrimSpace(raw)
	s = whitespaceRun.ReplaceAllString(s, "_")
	s = nonWordRun.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

// StandardizeColumns canonicalizes every header and applies the synonym
// table to names whose canonical target is not already present. Repeated
// names after standardization are blanked so only the first is read.
func StandardizeColumns(header []string) []string {
	cols := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		c := CanonicalColumnName(h)
		if c == "" || present[c] {
			continue
		}
		cols[i] = c
		present[c] = true
	}

	for _, syn := range columnSynonyms {
		if present[syn.to] || !present[syn.from] {
			continue
		}
		for i, c := range cols {
			if c == syn.from {
				cols[i] = syn.to
				delete(present, syn.from)
				present[syn.to] = true
				break
			}
		}
	}
	return cols
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
