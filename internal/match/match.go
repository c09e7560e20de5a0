// Package match maps free-text category suggestions from the vision
// collaborator onto the user's category list. Match is total: it always
// returns a non-empty category name, whatever the input.
package match

import (
	"strings"

	"saldo/internal/core"
)

const (
	// containmentScore is the similarity granted when one string
	// contains the other, before falling through to edit distance.
	containmentScore = 0.8
	// minScore is the floor below which fuzzy candidates are rejected.
	minScore = 0.4

	fallbackName = "Other"
)

// Match resolves a suggested category text to a category name from the
// user's list, trying exact match, the alias table, then fuzzy
// similarity, and finally a fallback. Categories of the requested
// transaction kind are preferred; if none exist the whole list is
// considered.
func Match(suggested string, categories []core.Category, kind core.TransactionKind) string {
	candidates := ofKind(categories, kind)
	if len(candidates) == 0 {
		candidates = categories
	}

	sug := strings.ToLower(strings.TrimSpace(suggested))
	if sug != "" {
		// 1. Exact, case-insensitive.
		for _, c := range candidates {
			if strings.EqualFold(c.Name, suggested) || strings.ToLower(c.Name) == sug {
				return c.Name
			}
		}

		// 2. Alias table, both directions: suggestion against the
		// aliases of every candidate category.
		for _, c := range candidates {
			for _, alias := range categoryAliases[strings.ToLower(c.Name)] {
				if strings.Contains(sug, alias) || strings.Contains(alias, sug) {
					return c.Name
				}
			}
		}

		// 3. Fuzzy similarity with a containment shortcut.
		bestScore := 0.0
		bestName := ""
		for _, c := range candidates {
			s := similarity(sug, strings.ToLower(c.Name))
			if s > bestScore {
				bestScore = s
				bestName = c.Name
			}
		}
		if bestScore >= minScore {
			return bestName
		}
	}

	// 4. Fallback: first candidate that is not "Other", else "Other",
	// else the literal when the list is empty.
	for _, c := range candidates {
		if !strings.EqualFold(c.Name, fallbackName) {
			return c.Name
		}
	}
	for _, c := range candidates {
		if strings.EqualFold(c.Name, fallbackName) {
			return c.Name
		}
	}
	return fallbackName
}

func ofKind(categories []core.Category, kind core.TransactionKind) []core.Category {
	out := make([]core.Category, 0, len(categories))
	for _, c := range categories {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// similarity is 1 - normalized edit distance, with containment treated
// as a strong signal before the distance computation.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentScore
	}
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// levenshtein computes edit distance over runes with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

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
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
