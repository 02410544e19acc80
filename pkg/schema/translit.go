package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// umlautReplacer expands the German umlauts and ß into their digraphs
// before the generic diacritic fold, which would otherwise reduce them
// to the bare base letter (ü -> u instead of ue).
var umlautReplacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"Ä", "Ae",
	"Ö", "Oe",
	"Ü", "Ue",
	"ß", "ss",
)

// Transliterate converts text to an ASCII-safe token. German umlauts and
// ß become their two-letter digraphs, every other accented letter is NFD
// decomposed and stripped of its combining marks, and any rune still
// outside ASCII afterwards is dropped. Total: never fails.
func Transliterate(s string) string {
	s = umlautReplacer.Replace(s)

	decomposed := norm.NFD.String(s)
	var result strings.Builder
	result.Grow(len(decomposed))

	for _, r := range decomposed {
		// Skip combining marks (Nonspacing_Mark category).
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
