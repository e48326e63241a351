package normalize

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yourusername/fplpanel/internal/models"
)

var (
	identifierPattern = regexp.MustCompile(`(?:^|\D)(\d{1,9})(?:\D|$)`)
	gameweekPattern   = regexp.MustCompile(`(?i)(?:^|[_\-])(?:gw|gameweek|round|event)[_\-]?(\d{1,2})(?:[_\-]|$)`)
	seasonPattern     = regexp.MustCompile(`(?:^|\D)((?:20)?\d{2}[\-_/]?(?:20)?\d{2})(?:\D|$)`)
	nameSplitPattern  = regexp.MustCompile(`[_\-\s]+`)
)

var nameStopWords = map[string]bool{
	"gw":       true,
	"gameweek": true,
	"round":    true,
	"event":    true,
	"csv":      true,
}

// pathCandidates returns the containing folder name followed by the file stem
func pathCandidates(path string) []string {
	clean := filepath.Clean(filepath.FromSlash(path))
	base := filepath.Base(clean)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var out []string
	if dir := filepath.Dir(clean); dir != "." && dir != string(filepath.Separator) {
		out = append(out, filepath.Base(dir))
	}
	return append(out, stem)
}

// InferIdentifier finds the first run of 1-9 digits, not adjacent to other
// digits, in the folder name and then the file stem.
func InferIdentifier(path string) (int, bool) {
	for _, s := range pathCandidates(path) {
		m := identifierPattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

// InferGameweek matches gw12, GW_05, gameweek-3, round7 and event_2 style
// tokens in the file stem.
func InferGameweek(path string) (int, bool) {
	cands := pathCandidates(path)
	stem := cands[len(cands)-1]
	m := gameweekPattern.FindStringSubmatch(stem)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// InferName joins the alphabetic tokens of the folder name, or failing that
// the file stem, skipping one-letter tokens and generic words.
func InferName(path string) (string, bool) {
	for _, s := range pathCandidates(path) {
		var parts []string
		for _, tok := range nameSplitPattern.Split(s, -1) {
			if isAlpha(tok) && utf8.RuneCountInString(tok) > 1 && !nameStopWords[strings.ToLower(tok)] {
				parts = append(parts, tok)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " "), true
		}
	}
	return "", false
}

// InferSeason looks for a season label (2324, 2023-24, 23_24) in the path,
// from the file stem up through its ancestors. The containing folder names
// the player, so a digit run there is read as a season only when it is not
// the folder's identifier and no other digits sit beside it.
func InferSeason(path string) (int, bool) {
	clean := filepath.Clean(filepath.FromSlash(path))
	stem := strings.TrimSuffix(filepath.Base(clean), filepath.Ext(clean))
	parts := []string{stem}
	for dir := filepath.Dir(clean); dir != "." && dir != string(filepath.Separator) && dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		parts = append(parts, filepath.Base(dir))
	}

	for i, s := range parts {
		for _, m := range seasonPattern.FindAllStringSubmatch(s, -1) {
			if i == 1 && isPlayerFolderDigits(s, m[1]) {
				continue
			}
			if season, err := models.ParseSeason(m[1]); err == nil {
				return season, true
			}
		}
	}
	return 0, false
}

// isPlayerFolderDigits reports whether token in a player folder name is
// the folder's identifier or shares the name with another digit run
func isPlayerFolderDigits(folder, token string) bool {
	if m := identifierPattern.FindStringSubmatch(folder); m != nil && m[1] == token {
		return true
	}
	rest := strings.Replace(folder, token, "", 1)
	return strings.IndexFunc(rest, unicode.IsDigit) >= 0
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
