// Package aggregate gathers artwork candidates for one queue entry from every
// capable provider and merges them into a single ranked list.
//
// Provider calls for an entry run concurrently through a bounded pool, each
// with its own timeout. Calls run on a context detached from the caller so
// an in-flight fetch completes even after the user cancels; the caller then
// discards the result. A failing provider contributes nothing and never fails
// the aggregation.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/logging"
	"artreview/internal/providers"
	"artreview/internal/services"
)

const (
	defaultMaxConcurrent = 3
	defaultTimeout       = 10 * time.Second
)

// Cache stores provider payloads between aggregations.
type Cache interface {
	Get(provider string, ref providers.Ref) (providers.Images, bool)
	Put(provider string, ref providers.Ref, images providers.Images) error
}

// Options tune a single aggregation.
type Options struct {
	// BypassCache forces live provider calls. Fresh results still refresh
	// the cache.
	BypassCache bool
}

// Result is the merged candidate list for one entry.
type Result struct {
	// All holds every deduplicated candidate in rank order.
	All []artwork.Candidate
	// Filtered holds the candidates that pass Filter, in rank order.
	Filtered []artwork.Candidate
	Filter   artwork.LanguageFilter
	// Failed names providers whose call errored or timed out.
	Failed []string
}

// FilteredCount returns the number of compliant candidates.
func (r Result) FilteredCount() int { return len(r.Filtered) }

// Total returns the number of candidates before filtering.
func (r Result) Total() int { return len(r.All) }

// Top returns the best compliant candidate.
func (r Result) Top() (artwork.Candidate, bool) {
	if len(r.Filtered) == 0 {
		return artwork.Candidate{}, false
	}
	return r.Filtered[0], true
}

// Aggregator fans out to providers and merges their answers.
type Aggregator struct {
	providers     []providers.Provider
	cache         Cache
	maxConcurrent int
	timeout       time.Duration
	logger        *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithCache enables the provider payload cache.
func WithCache(cache Cache) Option {
	return func(a *Aggregator) {
		a.cache = cache
	}
}

// WithMaxConcurrent bounds concurrent provider calls per entry.
func WithMaxConcurrent(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxConcurrent = n
		}
	}
}

// WithTimeout sets the per-call provider timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Aggregator) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an aggregator. Provider order is the merge order.
func New(provs []providers.Provider, opts ...Option) *Aggregator {
	a := &Aggregator{
		providers:     provs,
		maxConcurrent: defaultMaxConcurrent,
		timeout:       defaultTimeout,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "aggregate")
	return a
}

// Providers returns the registered provider names in merge order.
func (a *Aggregator) Providers() []string {
	names := make([]string, 0, len(a.providers))
	for _, p := range a.providers {
		names = append(names, p.Name())
	}
	return names
}

// FetchCandidates collects, merges, and partitions candidates for one art
// type of an item. The only error returned is the caller's cancellation.
func (a *Aggregator) FetchCandidates(ctx context.Context, item *library.Item, artType artwork.ArtType, filter artwork.LanguageFilter, opts Options) (Result, error) {
	result := Result{Filter: filter}
	if item == nil {
		return result, errors.New("aggregate: nil item")
	}

	capable := make([]providers.Provider, 0, len(a.providers))
	for _, p := range a.providers {
		if p.Supports(item.MediaType, artType) {
			capable = append(capable, p)
		}
	}
	if len(capable) == 0 {
		return result, ctx.Err()
	}

	ref := item.Ref()
	ctx = services.WithRequestID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, a.logger)
	fetchCtx := context.WithoutCancel(ctx)
	payloads := make([]providers.Images, len(capable))
	failed := make([]bool, len(capable))

	p := pool.New().WithMaxGoroutines(a.maxConcurrent)
	for i, prov := range capable {
		p.Go(func() {
			images, err := a.fetchOne(fetchCtx, prov, ref, opts)
			if err != nil {
				failed[i] = !errors.Is(err, providers.ErrNoID)
				a.logFailure(logger, prov.Name(), artType, err)
				return
			}
			payloads[i] = images
		})
	}
	p.Wait()

	if err := ctx.Err(); err != nil {
		return Result{Filter: filter}, err
	}

	var merged []artwork.Candidate
	for i, prov := range capable {
		if failed[i] {
			result.Failed = append(result.Failed, prov.Name())
		}
		for _, c := range payloads[i].Pool(artType) {
			if c.Provider == "" {
				c.Provider = prov.Name()
			}
			merged = append(merged, c)
		}
	}
	result.All = artwork.Dedup(merged)
	artwork.Rank(result.All)
	result.Filtered = make([]artwork.Candidate, 0, len(result.All))
	for _, c := range result.All {
		if filter.Matches(c) {
			result.Filtered = append(result.Filtered, c)
		}
	}

	logger.Debug("candidates aggregated",
		logging.String(logging.FieldArtType, string(artType)),
		logging.Int("total", result.Total()),
		logging.Int("compliant", result.FilteredCount()),
		logging.String("filter", filter.String()),
		logging.Int("providers", len(capable)),
	)
	return result, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, prov providers.Provider, ref providers.Ref, opts Options) (providers.Images, error) {
	if a.cache != nil && !opts.BypassCache {
		if images, ok := a.cache.Get(prov.Name(), ref); ok {
			return images, nil
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	images, err := prov.Fetch(callCtx, ref)
	if err != nil {
		return nil, err
	}
	if a.cache != nil {
		if err := a.cache.Put(prov.Name(), ref, images); err != nil {
			a.logger.Debug("provider cache write failed",
				logging.String(logging.FieldProvider, prov.Name()),
				logging.Error(err),
			)
		}
	}
	return images, nil
}

func (a *Aggregator) logFailure(logger *slog.Logger, provider string, artType artwork.ArtType, err error) {
	if errors.Is(err, providers.ErrNoID) {
		logger.Debug("provider skipped",
			logging.String(logging.FieldProvider, provider),
			logging.String("reason", "no usable external id"),
		)
		return
	}
	eventType := "provider_error"
	hint := "check provider credentials and network connectivity"
	if errors.Is(err, context.DeadlineExceeded) {
		eventType = "provider_timeout"
		hint = "raise aggregator.provider_timeout_seconds if the provider is slow"
	}
	logging.WarnWithContext(logger, "provider fetch failed",
		eventType,
		logging.String(logging.FieldProvider, provider),
		logging.String(logging.FieldArtType, string(artType)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "provider contributed no candidates"),
	)
}
