package listutil

import "strings"

// MatchesSearch reports whether query is a case-insensitive substring of any field.
// An empty query matches everything.
func MatchesSearch(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// MatchesEnum reports whether got equals want, ignoring case.
// An empty want matches everything.
func MatchesEnum(want, got string) bool {
	if want == "" {
		return true
	}
	return strings.EqualFold(want, got)
}

// Filter returns the items for which keep is true, preserving order.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
