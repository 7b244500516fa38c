package dispatchers

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	maxSuggestions = 3
	maxDistance    = 3
)

type suggestion struct {
	name     string
	distance int
}

// FindSimilarCommands returns up to maxResults of commands within edit
// distance 3 of input, closest first. Exact matches are not suggestions.
func FindSimilarCommands(input string, commands []string, maxResults int) []string {
	if commands == nil {
		return nil
	}

	var suggestions []suggestion
	seen := make(map[string]bool, len(commands))
	for _, name := range commands {
		if seen[name] {
			continue
		}
		seen[name] = true

		dist := levenshtein.ComputeDistance(strings.ToLower(input), strings.ToLower(name))
		if dist <= maxDistance && dist > 0 {
			suggestions = append(suggestions, suggestion{name: name, distance: dist})
		}
	}

	// Sort by distance, then alphabetically for stability
	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].distance != suggestions[j].distance {
			return suggestions[i].distance < suggestions[j].distance
		}
		return suggestions[i].name < suggestions[j].name
	})

	result := make([]string, 0, min(len(suggestions), maxResults))
	for i := 0; i < len(suggestions) && i < maxResults; i++ {
		result = append(result, suggestions[i].name)
	}
	return result
}
