package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Letters that do not decompose into a base letter plus a combining mark.
var special = strings.NewReplacer(
	"ı", "i", "ø", "o", "ß", "ss", "æ", "ae", "œ", "oe", "ł", "l", "đ", "d",
)

// Generate turns a display name into a URL-friendly slug:
//
//   - "Kadın Giyim" → "kadin-giyim"
//   - "Crème Brûlée & Co." → "creme-brulee-co"
//   - "  Hello   World! " → "hello-world"
func Generate(name string) string {
	s := special.Replace(strings.ToLower(strings.TrimSpace(name)))

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithID appends a numeric id so slugs stay unique when names collide:
// WithID("Coffee Mug", 12) → "coffee-mug-12".
func WithID(name string, id int) string {
	base := Generate(name)
	if base == "" {
		return strconv.Itoa(id)
	}
	return base + "-" + strconv.Itoa(id)
}
