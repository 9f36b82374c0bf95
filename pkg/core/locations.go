package core

import "strings"

// FilterLocations returns the unique, non-empty locations from the input,
// preserving first-occurrence order. Blank locations are not actionable and
// are dropped silently before any network activity.
func FilterLocations(locations []string) []string {
	seen := make(map[string]struct{}, len(locations))
	filtered := make([]string, 0, len(locations))
	for _, loc := range locations {
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		filtered = append(filtered, loc)
	}
	return filtered
}

// SplitByScheme partitions locations into those carrying the object-store
// scheme prefix (fetch candidates) and the rest, preserving order within
// each group.
func SplitByScheme(locations []string, scheme string) (eligible, other []string) {
	for _, loc := range locations {
		if strings.HasPrefix(loc, scheme) {
			eligible = append(eligible, loc)
		} else {
			other = append(other, loc)
		}
	}
	return eligible, other
}
