// utils/slug.go
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid   = regexp.MustCompile(`[^a-z0-9]+`)
	slugTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify derives a URL-safe slug from a display name: accents stripped,
// lowercased, runs of non-alphanumerics collapsed into single hyphens.
// "Eventos Especiais!!" becomes "eventos-especiais".
func Slugify(name string) string {
	s, _, err := transform.String(slugTransform, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(s)
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
