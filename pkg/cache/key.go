package cache

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// keyPrefix namespaces search-result entries; kept short so keys stay
// readable in backend tooling.
const keyPrefix = "artifactsearch:"

// SearchKey derives the deterministic cache key for one search call: the
// sorted, deduplicated, non-empty-filtered location set joined with "-",
// the raw term appended, then a 160-bit BLAKE2b digest hex-encoded under
// the artifactsearch: prefix. Two calls over the same location set produce
// the same key regardless of input order or duplicates.
func SearchKey(locations []string, searchterm string) string {
	uniq := make([]string, 0, len(locations))
	seen := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		uniq = append(uniq, loc)
	}
	sort.Strings(uniq)

	h, _ := blake2b.New(20, nil) // 20 bytes = 160 bits
	h.Write([]byte(strings.Join(uniq, "-")))
	h.Write([]byte(searchterm))
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}
