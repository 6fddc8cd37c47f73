// Package library describes the media library whose artwork is reviewed.
//
// The library is the source of truth for current art values. Items are read
// during scans and again right before a write to detect staleness; SetArt
// writes every slot of one item in a single call.
package library

import (
	"context"
	"slices"
	"strings"
	"time"

	"artreview/internal/artwork"
	"artreview/internal/providers"
)

// Unique id keys understood by the providers.
const (
	IDTMDB        = "tmdb"
	IDIMDB        = "imdb"
	IDTVDB        = "tvdb"
	IDMusicBrainz = "musicbrainz"
)

// Item is one movie, show, artist or album with its current artwork.
type Item struct {
	ID        int64
	MediaType artwork.MediaType
	Title     string
	Year      string
	Released  time.Time
	UniqueIDs map[string]string
	// ArtMap holds slot name to image URL, with image:// wrappers removed.
	ArtMap map[string]string
}

// Slot is one numbered multi-image slot.
type Slot struct {
	Ordinal int
	URL     string
}

// Art returns the current value of a single slot, empty when missing. For
// multi-image types it returns the numbered values joined by newlines.
func (i *Item) Art(artType artwork.ArtType) string {
	if i == nil {
		return ""
	}
	if artType.IsMulti() {
		urls := make([]string, 0)
		for _, s := range i.Extras(artType) {
			urls = append(urls, s.URL)
		}
		return strings.Join(urls, "\n")
	}
	return strings.TrimSpace(i.ArtMap[string(artType)])
}

// HasArt reports whether the slot is populated.
func (i *Item) HasArt(artType artwork.ArtType) bool {
	return i.Art(artType) != ""
}

// Extras returns the populated numbered slots for a multi-image type sorted
// by ordinal.
func (i *Item) Extras(artType artwork.ArtType) []Slot {
	if i == nil {
		return nil
	}
	base := artType.PoolType()
	var slots []Slot
	for key, value := range i.ArtMap {
		ordinal, ok := artwork.ParseSlot(key, base)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		slots = append(slots, Slot{Ordinal: ordinal, URL: strings.TrimSpace(value)})
	}
	slices.SortFunc(slots, func(a, b Slot) int { return a.Ordinal - b.Ordinal })
	return slots
}

// Ref builds the provider reference for the item.
func (i *Item) Ref() providers.Ref {
	ref := providers.Ref{
		MediaType: i.MediaType,
		Title:     i.Title,
		Year:      i.Year,
		Released:  i.Released,
	}
	if i.UniqueIDs != nil {
		ref.TMDBID = i.UniqueIDs[IDTMDB]
		ref.IMDBID = i.UniqueIDs[IDIMDB]
		ref.TVDBID = i.UniqueIDs[IDTVDB]
		ref.MusicBrainzID = i.UniqueIDs[IDMusicBrainz]
	}
	return ref
}

// ArtWriter writes slot assignments for one item. An empty value clears
// the slot.
type ArtWriter interface {
	SetArt(ctx context.Context, mediaType artwork.MediaType, id int64, assignments map[string]string) error
}

// Library is the media library the engine reviews.
type Library interface {
	ArtWriter
	Items(ctx context.Context, mediaType artwork.MediaType) ([]Item, error)
	// Item returns nil when the item no longer exists.
	Item(ctx context.Context, mediaType artwork.MediaType, id int64) (*Item, error)
}
