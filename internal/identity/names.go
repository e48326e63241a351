// Package identity reconciles players across seasons by normalized name.
package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters with no canonical decomposition to ASCII
var legacyFallback = map[rune]string{
	'Ø': "O", 'ø': "o",
	'Ł': "L", 'ł': "l",
	'Đ': "D", 'đ': "d",
	'Ð': "D", 'ð': "d",
	'Æ': "AE", 'æ': "ae",
	'Œ': "OE", 'œ': "oe",
	'ß': "ss",
	'Þ': "Th", 'þ': "th",
	'Ŋ': "N", 'ŋ': "n",
	'ƒ': "f",
	'ı': "i",
}

// NormalizeName folds a player name to ASCII: NFKD decomposition, combining
// marks dropped, legacy letters mapped through a fallback table, anything
// else outside ASCII removed, and whitespace collapsed. It is idempotent.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, name)
	if err != nil {
		decomposed = name
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		default:
			if repl, ok := legacyFallback[r]; ok {
				b.WriteString(repl)
			} else if unicode.IsSpace(r) {
				b.WriteByte(' ')
			}
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
