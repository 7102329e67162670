package domain

import (
	"math/rand"
	"regexp"
	"strings"
)

// IDChars is the 32-character alphabet for entity IDs. It excludes
// characters that are ambiguous when read aloud or in certain fonts:
// 0 (zero), 1 (one), I (capital i), O (capital o).
const IDChars = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// IDLength is the fixed length of entity IDs.
const IDLength = 4

var idPattern = regexp.MustCompile(`(?i)^[` + IDChars + `]{4}$`)

// GenerateID returns a random 4-character ID. Uniqueness is the caller's
// concern (see the ID index).
func GenerateID() string {
	var b strings.Builder
	for range IDLength {
		b.WriteByte(IDChars[rand.Intn(len(IDChars))])
	}
	return b.String()
}

// IsValidID reports whether s matches the ID pattern, case-insensitively.
func IsValidID(s string) bool {
	return idPattern.MatchString(s)
}

// NormalizeID uppercases an ID. IDs compare case-insensitively everywhere.
func NormalizeID(s string) string {
	return strings.ToUpper(s)
}

// Slugify converts a title to a filename-safe slug: lowercase, spaces to
// hyphens, non-alphanumerics dropped, runs of hyphens collapsed.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = strings.ReplaceAll(slug, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	slug = b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return slug
}

// SlugifyName keeps the original casing, for person/project filenames.
func SlugifyName(name string) string {
	slug := strings.ReplaceAll(name, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	slug = b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return slug
}
