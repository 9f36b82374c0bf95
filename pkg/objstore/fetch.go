package objstore

import (
	"context"
	"errors"
	"strings"

	"github.com/scour-dev/scour/pkg/core"
)

// Fetch retrieves one location through the session and classifies the
// outcome. Locations without the object-store scheme prefix are classified
// inaccessible without a network call. Retry policy belongs entirely to the
// provider behind the session; Fetch never retries.
func Fetch(ctx context.Context, session Session, location, scheme string) core.FetchOutcome {
	if !strings.HasPrefix(location, scheme) {
		return core.FetchOutcome{Kind: core.FetchInaccessible}
	}

	raw, err := session.Get(ctx, location)
	switch {
	case err == nil:
		return core.Fetched(raw)
	case errors.Is(err, ErrTooLarge):
		return core.FetchOutcome{Kind: core.FetchTooLarge}
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAccessDenied):
		return core.FetchOutcome{Kind: core.FetchInaccessible}
	default:
		return core.TransientError(err.Error())
	}
}
