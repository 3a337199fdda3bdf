package catalog

import (
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"
)

// Filter returns the subset of the index matching any of patterns.
// Patterns are doublestar globs matched against RelativePath, with or
// without the rule extension. A bare category name matches the whole
// category. No patterns returns the index unchanged.
func (idx Index) Filter(patterns []string) (Index, error) {
	if len(patterns) == 0 {
		return idx, nil
	}

	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	filtered := make(Index, len(idx))
	for _, category := range Categories {
		var kept []Entry
		for _, e := range idx[category] {
			if matchesAny(patterns, category, e) {
				kept = append(kept, e)
			}
		}
		filtered[category] = kept
	}

	return filtered, nil
}

func matchesAny(patterns []string, category Category, e Entry) bool {
	bare := path.Join(string(category), e.Name)

	for _, p := range patterns {
		if p == string(category) {
			return true
		}
		if ok, _ := doublestar.Match(p, e.RelativePath); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, bare); ok {
			return true
		}
	}

	return false
}

// Search ranks every rule by how well its label matches query, best first.
// Rules that do not match are omitted.
func (idx Index) Search(query string) []Item {
	items := idx.Items()
	if query == "" {
		return items
	}

	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = path.Join(string(item.Category), item.Name)
	}

	matches := fuzzy.Find(query, labels)
	results := make([]Item, 0, len(matches))
	for _, m := range matches {
		results = append(results, items[m.Index])
	}

	return results
}
