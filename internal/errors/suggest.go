package errors

import (
	"sort"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestionDistance is the largest edit distance still offered as a
// suggestion. Substitutions cost 2 under levenshtein.DefaultOptions.
const maxSuggestionDistance = 2

const maxSuggestions = 3

// SimilarNames returns the candidates closest to name, nearest first and
// alphabetically among equals. Candidates equal to name are ignored.
func SimilarNames(name string, candidates []string) []string {
	type scored struct {
		name     string
		distance int
	}

	nameRunes := []rune(name)
	seen := make(map[string]bool, len(candidates))
	var matches []scored
	for _, c := range candidates {
		if c == name || seen[c] {
			continue
		}
		seen[c] = true

		distance := levenshtein.DistanceForStrings(nameRunes, []rune(c), levenshtein.DefaultOptions)
		// Skip edits that amount to replacing the whole name.
		if distance > maxSuggestionDistance || distance >= len([]rune(c)) {
			continue
		}
		matches = append(matches, scored{name: c, distance: distance})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
