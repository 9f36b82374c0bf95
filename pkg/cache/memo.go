package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/scour-dev/scour/pkg/core"
	"github.com/scour-dev/scour/pkg/log"
)

var memoLogger = log.ForService("cache")

// GetOrCompute wraps one whole search call in the result cache. A fresh
// entry under key skips compute entirely and returns cached=true; a miss
// or unreadable entry runs compute and, on success, stores the marshaled
// verdict map for ttl. Compute errors are returned without a cache write.
//
// Concurrent calls with an identical key are not de-duplicated: both may
// compute before either writes, and the last write wins.
func GetOrCompute(ctx context.Context, backend Backend, key string, ttl time.Duration,
	compute func(ctx context.Context) (core.VerdictMap, error)) (core.VerdictMap, bool, error) {

	if data, ok, err := backend.Get(key); err != nil {
		memoLogger.Warnf("cache read for %s failed, recomputing: %v", key, err)
	} else if ok {
		var verdicts core.VerdictMap
		if err := json.Unmarshal(data, &verdicts); err != nil {
			memoLogger.Warnf("cache entry %s is unreadable, recomputing: %v", key, err)
		} else {
			memoLogger.Debugf("cache hit for %s", key)
			return verdicts, true, nil
		}
	}

	verdicts, err := compute(ctx)
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(verdicts)
	if err != nil {
		// The verdict map always marshals; treat failure as a cache skip,
		// not a search failure.
		memoLogger.Errorf("marshaling verdicts for %s: %v", key, err)
		return verdicts, false, nil
	}
	if err := backend.Set(key, data, ttl); err != nil {
		memoLogger.Warnf("cache write for %s failed: %v", key, err)
	}
	return verdicts, false, nil
}
