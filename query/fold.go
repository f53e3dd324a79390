package query

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold reduces s to a case and accent insensitive key, so that "Sánchez",
// "SANCHEZ" and "sanchez" compare equal.
//
// Transformers carry state, so a fresh chain is built per call and Fold is
// safe for concurrent use.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		stripped = strings.TrimSpace(s)
	}
	return cases.Fold().String(stripped)
}

// ContainsFold reports whether needle occurs in haystack ignoring case and accents
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// NewCollator returns a collator for locale aware ordering of display names.
// Collators are not safe for concurrent use; callers create one per sort.
func NewCollator(locale language.Tag) *collate.Collator {
	return collate.New(locale)
}

// ParseLocale parses a BCP 47 tag, falling back to English
func ParseLocale(tag string) language.Tag {
	if tag == "" {
		return language.English
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return language.English
	}
	return parsed
}
