// Package colors handles product color labels: canonical comparison form and
// decoding of the color list's historical storage encodings.
package colors

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and removes combining marks,
// so "Ñ" -> "N", "Á" -> "A".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces a color label to its comparable form: trimmed,
// upper-cased, diacritics stripped. "Azul", "azul" and "ÁZUL" normalize
// to the same value.
func Normalize(label string) string {
	trimmed := strings.TrimSpace(label)
	out, _, err := transform.String(stripMarks, trimmed)
	if err != nil {
		// transform only fails on malformed UTF-8; compare as-is then
		out = trimmed
	}
	return strings.ToUpper(out)
}
