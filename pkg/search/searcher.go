package search

import (
	"context"
	"fmt"
	"time"

	"github.com/scour-dev/scour/pkg/cache"
	"github.com/scour-dev/scour/pkg/core"
	"github.com/scour-dev/scour/pkg/decode"
	"github.com/scour-dev/scour/pkg/events"
	"github.com/scour-dev/scour/pkg/log"
	"github.com/scour-dev/scour/pkg/objstore"
)

const (
	// DefaultBatchSize is how many eligible locations one fetch batch covers.
	DefaultBatchSize = 512

	// DefaultTTL is how long a cached verdict map stays fresh.
	DefaultTTL = 24 * time.Hour
)

// Options tune a Searcher. Zero values fall back to the defaults above and
// to the object store's default scheme.
type Options struct {
	BatchSize int
	TTL       time.Duration
	Scheme    string
}

// Searcher runs cached artifact searches: fetch the locations' objects in
// batches, decode each payload, and report which contain the search term.
// Progress and per-location failures stream to the caller's sink; the only
// hard failure is being unable to open a store session at all.
type Searcher struct {
	factory objstore.Factory
	decoder *decode.Decoder
	backend cache.Backend
	opts    Options
	logger  *log.Logger
}

// New builds a Searcher. decoder may be nil for the default size ceiling;
// backend may be nil to disable result caching.
func New(factory objstore.Factory, decoder *decode.Decoder, backend cache.Backend, opts Options) *Searcher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Scheme == "" {
		opts.Scheme = objstore.DefaultScheme
	}
	if decoder == nil {
		decoder = decode.NewDecoder(decode.DefaultMaxSize)
	}
	return &Searcher{
		factory: factory,
		decoder: decoder,
		backend: backend,
		opts:    opts,
		logger:  log.ForService("search"),
	}
}

// Options returns the effective settings the Searcher runs with.
func (s *Searcher) Options() Options { return s.opts }

// Search runs the search and returns one verdict per distinct non-empty
// location. sink may be nil.
func (s *Searcher) Search(ctx context.Context, locations []string, term string, sink events.Sink) (core.VerdictMap, error) {
	verdicts, _, err := s.SearchDetail(ctx, locations, term, sink)
	return verdicts, err
}

// SearchDetail is Search plus a flag reporting whether the verdicts came
// from the result cache. A cache hit performs no fetches and emits no
// events.
func (s *Searcher) SearchDetail(ctx context.Context, locations []string, term string, sink events.Sink) (core.VerdictMap, bool, error) {
	sink = events.OrNop(sink)
	filtered := core.FilterLocations(locations)

	run := func(ctx context.Context) (core.VerdictMap, error) {
		return s.run(ctx, filtered, term, sink)
	}
	if s.backend == nil {
		verdicts, err := run(ctx)
		return verdicts, false, err
	}
	return cache.GetOrCompute(ctx, s.backend, cache.SearchKey(filtered, term), s.opts.TTL, run)
}

func (s *Searcher) run(ctx context.Context, filtered []string, term string, sink events.Sink) (core.VerdictMap, error) {
	session, err := s.factory.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening store session: %w", err)
	}
	defer func() { _ = session.Close() }()

	eligible, other := core.SplitByScheme(filtered, s.opts.Scheme)
	numBatches := core.NumBatches(len(eligible), s.opts.BatchSize)
	s.logger.Debugf("searching %d locations (%d eligible, %d batches)", len(filtered), len(eligible), numBatches)

	artifacts := make(map[string]core.DecodedArtifact, len(filtered))
	for _, location := range other {
		artifacts[location] = core.DecodedArtifact{Kind: core.ArtifactInaccessible}
		sink.Emit(events.Error(fmt.Sprintf("artifact %s is not accessible", location), events.IDArtifactNotAccessible))
	}

	completed := 0
	for batch := range core.Batches(eligible, s.opts.BatchSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.runBatch(ctx, session, batch, artifacts, sink)
		completed++
		sink.Emit(events.Progress(float64(completed) / float64(numBatches)))
	}

	return evaluate(filtered, artifacts, term), nil
}

// runBatch fetches and decodes one batch. A panic aborts only the current
// batch: it surfaces as a single error event and the loop moves on.
func (s *Searcher) runBatch(ctx context.Context, session objstore.Session, batch []string, artifacts map[string]core.DecodedArtifact, sink events.Sink) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("batch aborted by panic: %v", r)
			id := events.IDGenericError
			if err, ok := r.(error); ok {
				id = events.IDForError(err)
			}
			sink.Emit(events.Error(fmt.Sprintf("batch aborted: %v", r), id))
		}
	}()

	for _, location := range batch {
		s.handle(ctx, session, location, artifacts, sink)
	}
}

// handle resolves one location into the artifacts map. Transient fetch and
// decode failures leave the location out of the map entirely; everything
// else lands as a tagged artifact.
func (s *Searcher) handle(ctx context.Context, session objstore.Session, location string, artifacts map[string]core.DecodedArtifact, sink events.Sink) {
	outcome := objstore.Fetch(ctx, session, location, s.opts.Scheme)
	switch outcome.Kind {
	case core.FetchOK:
		decoded, err := s.decoder.Decode(outcome.Raw)
		if err != nil {
			s.logger.Warnf("decoding %s: %v", location, err)
			sink.Emit(events.Error(fmt.Sprintf("handling artifact %s failed: %v", location, err), events.IDArtifactHandleFailed))
			return
		}
		artifacts[location] = decoded
	case core.FetchTooLarge:
		artifacts[location] = core.DecodedArtifact{Kind: core.ArtifactTooLarge}
	case core.FetchInaccessible:
		artifacts[location] = core.DecodedArtifact{Kind: core.ArtifactInaccessible}
		sink.Emit(events.Error(fmt.Sprintf("artifact %s is not accessible", location), events.IDArtifactNotAccessible))
	case core.FetchTransient:
		s.logger.Warnf("fetching %s: %s", location, outcome.Message)
		sink.Emit(events.Error(fmt.Sprintf("handling artifact %s failed: %s", location, outcome.Message), events.IDArtifactHandleFailed))
	}
}

// evaluate folds the artifacts into one verdict per filtered location.
// Matching is exact string equality on the stringified content; excluded
// and non-value locations always come out {false, false}.
func evaluate(filtered []string, artifacts map[string]core.DecodedArtifact, term string) core.VerdictMap {
	verdicts := make(core.VerdictMap, len(filtered))
	for _, location := range filtered {
		artifact, ok := artifacts[location]
		if !ok || artifact.Kind != core.ArtifactValue {
			verdicts[location] = core.Verdict{}
			continue
		}
		verdicts[location] = core.Verdict{
			Included: true,
			Matches:  artifact.Content == term,
		}
	}
	return verdicts
}
