package domain

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const maxSuggestions = 3

// suggest returns the candidates closest to key by edit distance, nearest
// first. Keys shorter than three characters get no suggestions.
func suggest(key string, candidates []string) []string {
	needle := strings.ToLower(strings.TrimSpace(key))
	if len(needle) < 3 {
		return nil
	}
	type scored struct {
		value string
		dist  int
	}
	var hits []scored
	for _, candidate := range candidates {
		dist := levenshtein.ComputeDistance(needle, strings.ToLower(candidate))
		if dist > distanceLimit(len(candidate)) {
			continue
		}
		hits = append(hits, scored{value: candidate, dist: dist})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })
	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}
	out := make([]string, 0, len(hits))
	for _, hit := range hits {
		out = append(out, hit.value)
	}
	return out
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
