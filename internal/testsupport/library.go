package testsupport

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"artreview/internal/artwork"
	"artreview/internal/library"
)

// ArtWrite records one SetArt call against a FakeLibrary.
type ArtWrite struct {
	MediaType   artwork.MediaType
	ID          int64
	Assignments map[string]string
}

// FakeLibrary is an in-memory library.Library.
type FakeLibrary struct {
	mu     sync.Mutex
	items  map[artwork.MediaType]map[int64]*library.Item
	writes []ArtWrite
	// SetArtErr, when set, fails every write.
	SetArtErr error
	// ItemsErr fails listing the media types it names.
	ItemsErr map[artwork.MediaType]error
}

var _ library.Library = (*FakeLibrary)(nil)

// NewFakeLibrary returns a library seeded with items.
func NewFakeLibrary(items ...library.Item) *FakeLibrary {
	lib := &FakeLibrary{items: make(map[artwork.MediaType]map[int64]*library.Item)}
	for _, item := range items {
		lib.Put(item)
	}
	return lib
}

// NewMovie builds a movie item with the given art.
func NewMovie(id int64, title string, art map[string]string) library.Item {
	return library.Item{
		ID:        id,
		MediaType: artwork.MediaMovie,
		Title:     title,
		Year:      "1995",
		UniqueIDs: map[string]string{library.IDTMDB: "949"},
		ArtMap:    art,
	}
}

// NewShow builds a TV show item with the given art.
func NewShow(id int64, title string, art map[string]string) library.Item {
	return library.Item{
		ID:        id,
		MediaType: artwork.MediaTVShow,
		Title:     title,
		Year:      "1990",
		UniqueIDs: map[string]string{library.IDTVDB: "70533"},
		ArtMap:    art,
	}
}

// Put adds or replaces an item.
func (l *FakeLibrary) Put(item library.Item) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.items[item.MediaType] == nil {
		l.items[item.MediaType] = make(map[int64]*library.Item)
	}
	clone := item
	clone.ArtMap = maps.Clone(item.ArtMap)
	if clone.ArtMap == nil {
		clone.ArtMap = make(map[string]string)
	}
	l.items[item.MediaType][item.ID] = &clone
}

// Remove deletes an item, simulating removal from the library.
func (l *FakeLibrary) Remove(mediaType artwork.MediaType, id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items[mediaType], id)
}

// SetValue changes a slot outside the engine, simulating a concurrent edit.
func (l *FakeLibrary) SetValue(mediaType artwork.MediaType, id int64, slot, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if item := l.items[mediaType][id]; item != nil {
		item.ArtMap[slot] = value
	}
}

// Items implements library.Library.
func (l *FakeLibrary) Items(_ context.Context, mediaType artwork.MediaType) ([]library.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.ItemsErr[mediaType]; err != nil {
		return nil, err
	}
	ids := slices.Sorted(maps.Keys(l.items[mediaType]))
	out := make([]library.Item, 0, len(ids))
	for _, id := range ids {
		item := *l.items[mediaType][id]
		item.ArtMap = maps.Clone(item.ArtMap)
		out = append(out, item)
	}
	return out, nil
}

// Item implements library.Library.
func (l *FakeLibrary) Item(_ context.Context, mediaType artwork.MediaType, id int64) (*library.Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[mediaType][id]
	if !ok {
		return nil, nil
	}
	clone := *item
	clone.ArtMap = maps.Clone(item.ArtMap)
	return &clone, nil
}

// SetArt implements library.ArtWriter.
func (l *FakeLibrary) SetArt(_ context.Context, mediaType artwork.MediaType, id int64, assignments map[string]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.SetArtErr != nil {
		return l.SetArtErr
	}
	item, ok := l.items[mediaType][id]
	if !ok {
		return errors.New("fake library: item not found")
	}
	for slot, value := range assignments {
		if strings.TrimSpace(value) == "" {
			delete(item.ArtMap, slot)
			continue
		}
		item.ArtMap[slot] = value
	}
	l.writes = append(l.writes, ArtWrite{MediaType: mediaType, ID: id, Assignments: maps.Clone(assignments)})
	return nil
}

// Writes returns every successful SetArt call in order.
func (l *FakeLibrary) Writes() []ArtWrite {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.writes)
}

// Value returns the current slot value of an item.
func (l *FakeLibrary) Value(mediaType artwork.MediaType, id int64, slot string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if item := l.items[mediaType][id]; item != nil {
		return item.ArtMap[slot]
	}
	return ""
}
