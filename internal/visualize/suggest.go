package visualize

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far a candidate may drift from the query
// before it stops being a plausible typo.
const maxSuggestDistance = 3

// Suggest returns up to max candidate names close to the query by edit
// distance, nearest first, ties broken alphabetically. Used when a
// visualization target is not a known item.
func Suggest(query string, candidates []string, max int) []string {
	query = strings.ToLower(query)

	type scored struct {
		name string
		dist int
	}
	var matches []scored
	for _, candidate := range candidates {
		d := levenshtein.ComputeDistance(query, strings.ToLower(candidate))
		if d <= maxSuggestDistance {
			matches = append(matches, scored{name: candidate, dist: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > max {
		matches = matches[:max]
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}
