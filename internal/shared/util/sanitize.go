package util

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

var ligatures = strings.NewReplacer("ß", "ss", "ẞ", "SS", "Æ", "AE", "æ", "ae", "Œ", "OE", "œ", "oe")

// SafeName transliterates a person's name into a filename stem: diacritics
// are stripped, only letters and spaces survive and spaces become
// underscores. "Zoë Müller-Straße" becomes "Zoe_MullerStrasse".
func SafeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, ligatures.Replace(name))
	if err != nil {
		folded = name
	}
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), "_")
}

// Slug lowercases s and replaces whitespace runs with underscores.
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "_")
}
