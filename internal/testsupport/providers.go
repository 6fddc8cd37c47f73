package testsupport

import (
	"context"
	"sync/atomic"
	"time"

	"artreview/internal/artwork"
	"artreview/internal/providers"
)

// StubProvider is a scripted providers.Provider.
type StubProvider struct {
	ProviderName string
	Caps         providers.Capabilities
	Images       providers.Images
	Err          error
	// Delay holds Fetch until it elapses or the context ends.
	Delay time.Duration
	calls atomic.Int32
}

var _ providers.Provider = (*StubProvider)(nil)

// NewStubProvider returns a provider supporting every art type of movies.
func NewStubProvider(name string, images providers.Images) *StubProvider {
	return &StubProvider{
		ProviderName: name,
		Caps: providers.Capabilities{
			artwork.MediaMovie: {
				artwork.ArtPoster, artwork.ArtFanart, artwork.ArtClearLogo, artwork.ArtClearArt,
				artwork.ArtBanner, artwork.ArtLandscape, artwork.ArtDiscArt, artwork.ArtKeyArt,
			},
		},
		Images: images,
	}
}

// Name implements providers.Provider.
func (p *StubProvider) Name() string { return p.ProviderName }

// Supports implements providers.Provider.
func (p *StubProvider) Supports(mediaType artwork.MediaType, artType artwork.ArtType) bool {
	return p.Caps.Supports(mediaType, artType)
}

// Fetch implements providers.Provider.
func (p *StubProvider) Fetch(ctx context.Context, _ providers.Ref) (providers.Images, error) {
	p.calls.Add(1)
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Images, nil
}

// Calls returns how many times Fetch ran.
func (p *StubProvider) Calls() int {
	return int(p.calls.Load())
}

// Candidate builds a candidate for tests.
func Candidate(provider, url, lang string, quality float64, width, height int) artwork.Candidate {
	return artwork.Candidate{
		Provider: provider,
		URL:      url,
		Language: lang,
		Quality:  quality,
		Width:    width,
		Height:   height,
	}
}
