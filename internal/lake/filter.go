package lake

import "strings"

// Filter returns the lakes whose name or any species contains query,
// compared case-insensitively. Source order is kept.
//
// An empty query returns lakes itself, not a copy.
func Filter(lakes []Lake, query string) []Lake {
	if query == "" {
		return lakes
	}

	q := strings.ToLower(query)
	out := make([]Lake, 0, len(lakes))
	for _, l := range lakes {
		if Match(l, q) {
			out = append(out, l)
		}
	}

	return out
}

// Match reports whether the lake matches an already lower-cased query.
func Match(l Lake, lowerQuery string) bool {
	if strings.Contains(strings.ToLower(l.Name), lowerQuery) {
		return true
	}

	for _, fish := range l.Species {
		if strings.Contains(strings.ToLower(fish), lowerQuery) {
			return true
		}
	}

	return false
}
