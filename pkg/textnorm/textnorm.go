// Package textnorm folds human-entered document-type names into a canonical
// comparable form: decomposed, accent-stripped, lowercased and trimmed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes s so that "Benefícios", "beneficios" and " BENEFICIOS "
// compare equal.
func Fold(s string) string {
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Contains reports whether the folded form of s contains the folded needle.
func Contains(s, needle string) bool {
	return strings.Contains(Fold(s), Fold(needle))
}
