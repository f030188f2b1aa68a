package ui

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the default maximum edit distance to consider for fuzzy matching
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions is the default maximum number of suggestions to return
	DefaultMaxSuggestions = 3
)

// FuzzyMatchOptions configures fuzzy matching behavior
type FuzzyMatchOptions struct {
	MaxDistance    int  // Maximum Levenshtein distance to consider (default: 3)
	MaxSuggestions int  // Maximum number of suggestions to return (default: 3)
	CaseSensitive  bool // Whether matching is case-sensitive (default: false)
}

type suggestion struct {
	value    string
	distance int
}

// FindSimilar returns candidates within the edit distance of target, closest
// first. Ties keep candidate order.
//
// Example:
//
//	FindSimilar("admn", []string{"ADMIN", "LEARNER"}, nil)
//	// Returns: ["ADMIN"]
func FindSimilar(target string, candidates []string, opts *FuzzyMatchOptions) []string {
	o := FuzzyMatchOptions{
		MaxDistance:    DefaultMaxDistance,
		MaxSuggestions: DefaultMaxSuggestions,
	}
	if opts != nil {
		o.CaseSensitive = opts.CaseSensitive
		if opts.MaxDistance > 0 {
			o.MaxDistance = opts.MaxDistance
		}
		if opts.MaxSuggestions > 0 {
			o.MaxSuggestions = opts.MaxSuggestions
		}
	}

	var suggestions []suggestion
	for _, candidate := range candidates {
		a, b := target, candidate
		if !o.CaseSensitive {
			a, b = strings.ToLower(a), strings.ToLower(b)
		}

		if dist := LevenshteinDistance(a, b); dist <= o.MaxDistance {
			suggestions = append(suggestions, suggestion{value: candidate, distance: dist})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].distance < suggestions[j].distance
	})

	result := make([]string, 0, o.MaxSuggestions)
	for i := 0; i < len(suggestions) && i < o.MaxSuggestions; i++ {
		result = append(result, suggestions[i].value)
	}
	return result
}

// LevenshteinDistance calculates the minimum number of single-character
// edits needed to turn s1 into s2.
func LevenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
