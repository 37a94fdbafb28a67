package filter

import (
	"strings"

	"github.com/andresuchdata/justfishin/internal/storage"
)

// Match reports whether every term occurs as a substring of name.
// An empty term list matches everything.
func Match(name string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(name, term) {
			return false
		}
	}
	return true
}

// Apply returns the objects whose keys contain every term, preserving input
// order. The input slice is never modified.
func Apply(items []storage.ObjectInfo, terms []string) []storage.ObjectInfo {
	matched := make([]storage.ObjectInfo, 0, len(items))
	for _, item := range items {
		if Match(item.Key, terms) {
			matched = append(matched, item)
		}
	}
	return matched
}
