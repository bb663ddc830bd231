package utils

import (
	"regexp"
	"strings"
)

var (
	alnumRegex      = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// TitleCase title-cases a case type for matching against portal dropdown
// labels ("civil" -> "Civil", "writ petition" -> "Writ Petition")
func TitleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// IsAlphanumeric reports whether s contains only letters and digits
func IsAlphanumeric(s string) bool {
	return alnumRegex.MatchString(s)
}

// CleanText collapses runs of whitespace and trims the result
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
