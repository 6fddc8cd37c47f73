package aggregate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"artreview/internal/aggregate"
	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/providers"
	"artreview/internal/testsupport"
)

func movie() *library.Item {
	item := testsupport.NewMovie(1, "Heat", nil)
	return &item
}

func posters(cands ...artwork.Candidate) providers.Images {
	images := providers.Images{}
	for _, c := range cands {
		images.Add(artwork.ArtPoster, c)
	}
	return images
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]providers.Images
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]providers.Images)}
}

func (c *memoryCache) Get(provider string, ref providers.Ref) (providers.Images, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	images, ok := c.entries[provider+ref.Key()]
	return images, ok
}

func (c *memoryCache) Put(provider string, ref providers.Ref, images providers.Images) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[provider+ref.Key()] = images
	c.puts++
	return nil
}

func TestMergeDedupsAndRanks(t *testing.T) {
	first := testsupport.NewStubProvider("tmdb", posters(
		testsupport.Candidate("", "https://image.tmdb.org/t/p/original/a.jpg", "en", 5, 1000, 1500),
		testsupport.Candidate("", "https://image.tmdb.org/t/p/original/b.jpg", "de", 7, 1000, 1500),
	))
	second := testsupport.NewStubProvider("fanart.tv", posters(
		testsupport.Candidate("", "HTTP://IMAGE.TMDB.ORG/t/p/original/a.jpg/", "en", 9, 2000, 3000),
		testsupport.Candidate("", "https://assets.fanart.tv/fanart/movies/1/movieposter/c.jpg?x=1", "en", 5, 2000, 3000),
	))

	agg := aggregate.New([]providers.Provider{first, second})
	result, err := agg.FetchCandidates(context.Background(), movie(), artwork.ArtPoster, artwork.NewLanguageFilter("en"), aggregate.Options{})
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if result.Total() != 3 {
		t.Fatalf("expected 3 unique candidates, got %#v", result.All)
	}
	// The duplicate from the second provider is dropped; the first occurrence wins.
	if result.All[0].URL != "https://image.tmdb.org/t/p/original/b.jpg" {
		t.Fatalf("expected highest quality first, got %#v", result.All)
	}
	if result.All[1].URL != "https://assets.fanart.tv/fanart/movies/1/movieposter/c.jpg?x=1" {
		t.Fatalf("expected larger equal-quality image second, got %#v", result.All)
	}
	if result.All[2].Provider != "tmdb" {
		t.Fatalf("expected provider name to be filled in, got %#v", result.All[2])
	}
	if result.FilteredCount() != 2 {
		t.Fatalf("expected 2 english candidates, got %#v", result.Filtered)
	}
	top, ok := result.Top()
	if !ok || top.Language != "en" || top.Provider != "fanart.tv" {
		t.Fatalf("unexpected top candidate %#v", top)
	}
}

func TestProviderFailureContributesNothing(t *testing.T) {
	healthy := testsupport.NewStubProvider("tmdb", posters(
		testsupport.Candidate("", "https://x/a.jpg", "en", 5, 1000, 1500),
	))
	broken := testsupport.NewStubProvider("fanart.tv", nil)
	broken.Err = errors.New("boom")
	slow := testsupport.NewStubProvider("slow", posters(testsupport.Candidate("", "https://x/slow.jpg", "en", 9, 1, 1)))
	slow.Delay = time.Second

	agg := aggregate.New([]providers.Provider{broken, healthy, slow}, aggregate.WithTimeout(50*time.Millisecond))
	result, err := agg.FetchCandidates(context.Background(), movie(), artwork.ArtPoster, artwork.NewLanguageFilter("en"), aggregate.Options{})
	if err != nil {
		t.Fatalf("expected provider failures to be absorbed, got %v", err)
	}
	if result.Total() != 1 || result.All[0].URL != "https://x/a.jpg" {
		t.Fatalf("expected only the healthy provider's candidate, got %#v", result.All)
	}
	if len(result.Failed) != 2 || result.Failed[0] != "fanart.tv" || result.Failed[1] != "slow" {
		t.Fatalf("expected failed providers listed, got %v", result.Failed)
	}
}

func TestNoIDIsNotAFailure(t *testing.T) {
	noID := testsupport.NewStubProvider("fanart.tv", nil)
	noID.Err = providers.ErrNoID

	agg := aggregate.New([]providers.Provider{noID})
	result, err := agg.FetchCandidates(context.Background(), movie(), artwork.ArtPoster, artwork.LanguageFilter{}, aggregate.Options{})
	if err != nil || len(result.Failed) != 0 || result.Total() != 0 {
		t.Fatalf("unexpected result %#v %v", result, err)
	}
}

func TestOnlyCapableProvidersAreCalled(t *testing.T) {
	capable := testsupport.NewStubProvider("tmdb", posters())
	incapable := testsupport.NewStubProvider("music", nil)
	incapable.Caps = providers.Capabilities{artwork.MediaArtist: {artwork.ArtThumb}}

	agg := aggregate.New([]providers.Provider{capable, incapable})
	if _, err := agg.FetchCandidates(context.Background(), movie(), artwork.ArtPoster, artwork.LanguageFilter{}, aggregate.Options{}); err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if capable.Calls() != 1 || incapable.Calls() != 0 {
		t.Fatalf("unexpected calls: capable=%d incapable=%d", capable.Calls(), incapable.Calls())
	}
}

func TestMultiArtDrawsFromBasePool(t *testing.T) {
	images := providers.Images{}
	images.Add(artwork.ArtFanart, testsupport.Candidate("", "https://x/f1.jpg", "", 5, 1920, 1080))
	images.Add(artwork.ArtPoster, testsupport.Candidate("", "https://x/p1.jpg", "", 5, 1000, 1500))
	prov := testsupport.NewStubProvider("tmdb", images)

	agg := aggregate.New([]providers.Provider{prov})
	result, err := agg.FetchCandidates(context.Background(), movie(), artwork.ArtExtraFanart, artwork.LanguageFilter{Active: true}, aggregate.Options{})
	if err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if result.Total() != 1 || result.All[0].URL != "https://x/f1.jpg" || result.FilteredCount() != 1 {
		t.Fatalf("expected fanart pool, got %#v", result)
	}
}

func TestCacheIsUsedUnlessBypassed(t *testing.T) {
	prov := testsupport.NewStubProvider("tmdb", posters(testsupport.Candidate("", "https://x/a.jpg", "en", 5, 1, 1)))
	cache := newMemoryCache()
	agg := aggregate.New([]providers.Provider{prov}, aggregate.WithCache(cache))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := agg.FetchCandidates(ctx, movie(), artwork.ArtPoster, artwork.LanguageFilter{}, aggregate.Options{}); err != nil {
			t.Fatalf("FetchCandidates: %v", err)
		}
	}
	if prov.Calls() != 1 {
		t.Fatalf("expected second call served from cache, got %d provider calls", prov.Calls())
	}
	if _, err := agg.FetchCandidates(ctx, movie(), artwork.ArtPoster, artwork.LanguageFilter{}, aggregate.Options{BypassCache: true}); err != nil {
		t.Fatalf("FetchCandidates: %v", err)
	}
	if prov.Calls() != 2 || cache.puts != 2 {
		t.Fatalf("expected bypass to call provider and refresh cache, calls=%d puts=%d", prov.Calls(), cache.puts)
	}
}

func TestCancelledCallerGetsError(t *testing.T) {
	prov := testsupport.NewStubProvider("tmdb", posters(testsupport.Candidate("", "https://x/a.jpg", "en", 5, 1, 1)))
	prov.Delay = 50 * time.Millisecond
	cache := newMemoryCache()
	agg := aggregate.New([]providers.Provider{prov}, aggregate.WithCache(cache))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := agg.FetchCandidates(ctx, movie(), artwork.ArtPoster, artwork.LanguageFilter{}, aggregate.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	// The in-flight call still completed and refreshed the cache.
	if cache.puts != 1 {
		t.Fatalf("expected detached fetch to complete, got %d puts", cache.puts)
	}
}
