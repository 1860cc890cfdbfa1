package bot

import (
	"regexp"

	"crazyones/internal/applecore"
)

// filterByTag returns every record whose name contains tag as a
// word-bounded, case-insensitive token (spec §4.6).
func filterByTag(records []applecore.SecurityUpdate, tag string) []applecore.SecurityUpdate {
	var matched []applecore.SecurityUpdate
	for _, u := range records {
		if hasWordMatch([]string{u.Name}, tag) {
			matched = append(matched, u)
		}
	}
	return matched
}

// hasWordMatch reports whether tag occurs as a whole word in any of names,
// case-insensitively.
func hasWordMatch(names []string, tag string) bool {
	if tag == "" {
		return false
	}
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(tag) + `\b`)
	if err != nil {
		return false
	}
	for _, name := range names {
		if pattern.MatchString(name) {
			return true
		}
	}
	return false
}

func allNames(records []applecore.SecurityUpdate) []string {
	names := make([]string, len(records))
	for i, u := range records {
		names[i] = u.Name
	}
	return names
}

// candidateTokens derives the set of canonical OS tokens actually present
// in records' names, by word-boundary scan (spec §4.7). Apple's release
// names almost always carry exactly one of these per row (e.g. "iOS 17.4").
// An empty result means this locale's records mention none of them, so the
// caller's fuzzy match correctly has nothing to suggest.
func candidateTokens(records []applecore.SecurityUpdate) []string {
	names := allNames(records)
	var found []string
	for _, token := range osTokens {
		if hasWordMatch(names, token) {
			found = append(found, token)
		}
	}
	return found
}
