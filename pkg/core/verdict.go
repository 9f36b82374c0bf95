package core

// Verdict is the per-location outcome of one search call.
//
// Included reports whether the artifact's content could be loaded at all
// (fetched, decoded and available for comparison). Matches reports whether
// the stringified content equals the search term exactly; it is only
// meaningful when Included is true and is always false otherwise.
type Verdict struct {
	Included bool `json:"included"`
	Matches  bool `json:"matches"`
}

// VerdictMap maps every requested location to its verdict. It is both the
// public result of a search and the unit stored in the result cache.
type VerdictMap map[string]Verdict
