package model

import (
	"regexp"
	"strings"
)

// DefaultTakeName is the take every task starts with.
const DefaultTakeName = "Main"

var (
	takeSeparatorRegexp  = regexp.MustCompile(`[\s\-]+`)
	takeInvalidRegexp    = regexp.MustCompile(`[^a-zA-Z0-9_]+`)
	takeUnderscoreRegexp = regexp.MustCompile(`_+`)
	wordRegexp           = regexp.MustCompile(`[A-Za-z]+`)
)

// NormalizeTakeName converts free-form user input into a canonical
// identifier-safe take name: Title_Cased words joined with single underscores,
// anything outside [a-zA-Z0-9_] dropped, no leading or trailing underscores.
// An empty result means the input is rejected. Title casing runs last, over
// the already cleaned name, so normalizing is idempotent.
func NormalizeTakeName(raw string) string {
	name := takeSeparatorRegexp.ReplaceAllString(raw, "_")
	name = takeInvalidRegexp.ReplaceAllString(name, "")
	name = takeUnderscoreRegexp.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	return titleCase(name)
}

// titleCase capitalizes the first letter of every alphabetic run and lowers
// the rest, so "ALT lighting" and "alt LIGHTING" normalize the same way.
func titleCase(s string) string {
	return wordRegexp.ReplaceAllStringFunc(s, func(word string) string {
		return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	})
}
