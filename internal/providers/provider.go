// Package providers defines the artwork source contract shared by the TMDB
// and fanart.tv clients.
//
// A provider fetches every image it knows for one library item in a single
// call and groups them by art type. The aggregator picks the pool it needs
// from that result, so a cached payload serves every art type of the item.
package providers

import (
	"context"
	"strings"
	"time"

	"artreview/internal/artwork"
)

// Ref identifies a library item to a provider. Providers use whichever
// external id they understand and return ErrNoID when none is present.
type Ref struct {
	MediaType     artwork.MediaType `json:"media_type"`
	TMDBID        string            `json:"tmdb_id,omitempty"`
	TVDBID        string            `json:"tvdb_id,omitempty"`
	IMDBID        string            `json:"imdb_id,omitempty"`
	MusicBrainzID string            `json:"musicbrainz_id,omitempty"`
	Title         string            `json:"title,omitempty"`
	Year          string            `json:"year,omitempty"`
	// Released is the item's premiere or release date when known.
	Released time.Time `json:"released,omitempty"`
}

// Key returns a stable cache key for the reference.
func (r Ref) Key() string {
	var b strings.Builder
	b.WriteString(string(r.MediaType))
	for _, part := range []struct{ name, value string }{
		{"tmdb", r.TMDBID},
		{"tvdb", r.TVDBID},
		{"imdb", r.IMDBID},
		{"mbid", r.MusicBrainzID},
	} {
		if v := strings.TrimSpace(part.value); v != "" {
			b.WriteString("|")
			b.WriteString(part.name)
			b.WriteString("=")
			b.WriteString(strings.ToLower(v))
		}
	}
	return b.String()
}

// HasID reports whether any external id is set.
func (r Ref) HasID() bool {
	return strings.TrimSpace(r.TMDBID+r.TVDBID+r.IMDBID+r.MusicBrainzID) != ""
}

// Images groups candidates by the art type they fill.
type Images map[artwork.ArtType][]artwork.Candidate

// Pool returns the candidates usable for artType. Multi-image types draw
// from their base pool.
func (im Images) Pool(artType artwork.ArtType) []artwork.Candidate {
	if im == nil {
		return nil
	}
	return im[artType.PoolType()]
}

// Count returns the total number of candidates across every art type.
func (im Images) Count() int {
	total := 0
	for _, list := range im {
		total += len(list)
	}
	return total
}

// Add appends a candidate under artType.
func (im Images) Add(artType artwork.ArtType, c artwork.Candidate) {
	im[artType] = append(im[artType], c)
}

// Provider is an artwork source.
type Provider interface {
	Name() string
	// Supports reports static capability for a media type and art type.
	Supports(mediaType artwork.MediaType, artType artwork.ArtType) bool
	Fetch(ctx context.Context, ref Ref) (Images, error)
}

// Capabilities is a static capability table keyed by media type.
type Capabilities map[artwork.MediaType][]artwork.ArtType

// Supports reports whether the table lists the pool of artType for mediaType.
func (c Capabilities) Supports(mediaType artwork.MediaType, artType artwork.ArtType) bool {
	pool := artType.PoolType()
	for _, t := range c[mediaType] {
		if t == pool {
			return true
		}
	}
	return false
}
