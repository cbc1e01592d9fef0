package entry

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// minSearchScore is the fuzzy-match floor below which results are dropped.
const minSearchScore = 25

// Search fuzzy-matches entries by name. Exact prefix matches rank above pure
// fuzzy matches, remaining ties are broken by score. An empty query returns
// the first maxResults entries unchanged.
func Search(entries []Entry, query string, maxResults int) []Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		if len(entries) > maxResults {
			return entries[:maxResults]
		}
		return entries
	}

	names := make([]string, len(entries))
	nameToEntry := make(map[string]Entry, len(entries))
	for i, e := range entries {
		names[i] = e.Name
		nameToEntry[e.Name] = e
	}

	matches := fuzzy.Find(query, names)

	filtered := make([]fuzzy.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score >= minSearchScore {
			filtered = append(filtered, m)
		}
	}

	lowerQuery := strings.ToLower(query)
	sort.Slice(filtered, func(i, j int) bool {
		iPrefix := strings.HasPrefix(strings.ToLower(filtered[i].Str), lowerQuery)
		jPrefix := strings.HasPrefix(strings.ToLower(filtered[j].Str), lowerQuery)
		if iPrefix != jPrefix {
			return iPrefix
		}
		return filtered[i].Score > filtered[j].Score
	})

	results := make([]Entry, 0, len(filtered))
	for _, m := range filtered {
		if len(results) >= maxResults {
			break
		}
		if e, ok := nameToEntry[m.Str]; ok {
			results = append(results, e)
		}
	}
	return results
}
