package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a lowercase, hyphen-separated slug from name. Accents are
// stripped ("Café Crème" becomes "cafe-creme"); other characters outside
// [a-z0-9] act as separators.
func Generate(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(strings.TrimSpace(name)),
	)
	if err != nil {
		folded = strings.ToLower(name)
	}
	// Dotless i has no decomposition.
	folded = strings.ReplaceAll(folded, "ı", "i")

	return strings.Trim(nonAlnum.ReplaceAllString(folded, "-"), "-")
}

// Truncate shortens a slug to at most max bytes without leaving a trailing
// hyphen.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}
