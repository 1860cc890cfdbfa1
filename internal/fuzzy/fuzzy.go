// Package fuzzy provides the edit-distance similarity matching the bot uses
// to recover from typos in command verbs and /updates tags (spec §4.7).
package fuzzy

import "strings"

// Ratio returns the Levenshtein-based similarity of a and b in [0, 1]: 1
// means identical, 0 means nothing in common. Comparison is
// case-insensitive.
func Ratio(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein(a, b)
	return 1 - float64(dist)/float64(longest)
}

// levenshtein computes the edit distance between a and b using the
// classic single-row dynamic-programming table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Best returns the candidate in candidates most similar to query, provided
// its ratio is >= cutoff. ok is false when candidates is empty or no
// candidate clears the cutoff.
func Best(query string, candidates []string, cutoff float64) (best string, ok bool) {
	bestRatio := -1.0
	for _, candidate := range candidates {
		r := Ratio(query, candidate)
		if r > bestRatio {
			bestRatio = r
			best = candidate
		}
	}
	if bestRatio < cutoff {
		return "", false
	}
	return best, true
}
