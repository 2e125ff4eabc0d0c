package content

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// fold normalizes s to NFC and applies Unicode case folding.
// A fresh Caser is used per call; Casers are stateful.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// Matches reports whether term occurs, ignoring case, in any of the
// item's search fields. An empty term matches everything.
func Matches(it Item, term string) bool {
	if term == "" {
		return true
	}
	needle := fold(term)
	for _, field := range it.SearchFields() {
		if field != "" && strings.Contains(fold(field), needle) {
			return true
		}
	}
	return false
}

// Filter returns the items matching term, preserving order. An empty term
// returns items itself, not a copy.
func Filter(items []Item, term string) []Item {
	if term == "" {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if Matches(it, term) {
			out = append(out, it)
		}
	}
	return out
}
