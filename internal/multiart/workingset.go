// Package multiart edits numbered artwork slots such as fanart1..fanartN as
// one ordered list.
//
// A WorkingSet is seeded from the item's current numbered slots, edited in
// memory, and committed as a single library write that renumbers the list
// contiguously from 1 and clears every slot left over from the old layout.
package multiart

import (
	"context"
	"errors"
	"fmt"

	"artreview/internal/artwork"
	"artreview/internal/library"
)

var (
	// ErrDuplicate is returned when adding an image already in the set.
	ErrDuplicate = errors.New("image already in working set")
	// ErrIndex is returned for an out-of-range position.
	ErrIndex = errors.New("index out of range")
	// ErrCommitted is returned when using a set after Commit.
	ErrCommitted = errors.New("working set already committed")
)

// Image is one entry of the working set.
type Image struct {
	URL        string
	PreviewURL string
	Provider   string
	// Ordinal is the slot the image occupied when the set was opened, zero
	// for images added during editing.
	Ordinal int
}

// Existing reports whether the image was in the library when the set opened.
func (im Image) Existing() bool { return im.Ordinal > 0 }

// WorkingSet is the in-memory edit buffer for one multi-image slot.
type WorkingSet struct {
	mediaType  artwork.MediaType
	itemID     int64
	artType    artwork.ArtType
	base       artwork.ArtType
	seed       []Image
	images     []Image
	maxOrdinal int
	committed  bool
}

// Open seeds a working set from the item's numbered slots.
func Open(item *library.Item, artType artwork.ArtType) *WorkingSet {
	ws := &WorkingSet{
		mediaType: item.MediaType,
		itemID:    item.ID,
		artType:   artType,
		base:      artType.PoolType(),
	}
	for _, slot := range item.Extras(artType) {
		ws.seed = append(ws.seed, Image{URL: slot.URL, PreviewURL: slot.URL, Ordinal: slot.Ordinal})
		if slot.Ordinal > ws.maxOrdinal {
			ws.maxOrdinal = slot.Ordinal
		}
	}
	ws.images = append([]Image(nil), ws.seed...)
	return ws
}

// ArtType returns the multi-image type being edited.
func (w *WorkingSet) ArtType() artwork.ArtType { return w.artType }

// Images returns a copy of the current list in slot order.
func (w *WorkingSet) Images() []Image {
	return append([]Image(nil), w.images...)
}

// Len returns the number of images in the set.
func (w *WorkingSet) Len() int { return len(w.images) }

// Contains reports whether a URL is already in the set.
func (w *WorkingSet) Contains(url string) bool {
	key := artwork.NormalizeURL(url)
	for _, im := range w.images {
		if artwork.NormalizeURL(im.URL) == key {
			return true
		}
	}
	return false
}

// Add appends a candidate to the end of the list.
func (w *WorkingSet) Add(c artwork.Candidate) error {
	if w.committed {
		return ErrCommitted
	}
	if c.Key() == "" {
		return fmt.Errorf("add image: empty url")
	}
	if w.Contains(c.URL) {
		return ErrDuplicate
	}
	preview := c.PreviewURL
	if preview == "" {
		preview = c.URL
	}
	w.images = append(w.images, Image{URL: c.URL, PreviewURL: preview, Provider: c.Provider})
	return nil
}

// Remove drops the image at index; later images move up one slot.
func (w *WorkingSet) Remove(index int) error {
	if w.committed {
		return ErrCommitted
	}
	if index < 0 || index >= len(w.images) {
		return fmt.Errorf("remove %d of %d: %w", index, len(w.images), ErrIndex)
	}
	w.images = append(w.images[:index], w.images[index+1:]...)
	return nil
}

// RemoveAll empties the set; committing then clears every numbered slot.
func (w *WorkingSet) RemoveAll() {
	if w.committed {
		return
	}
	w.images = nil
}

// Clear discards every edit and returns to the seeded state.
func (w *WorkingSet) Clear() {
	if w.committed {
		return
	}
	w.images = append([]Image(nil), w.seed...)
}

// Dirty reports whether committing would change the library.
func (w *WorkingSet) Dirty() bool {
	if len(w.images) != len(w.seed) {
		return true
	}
	for i, im := range w.images {
		if im.URL != w.seed[i].URL || w.seed[i].Ordinal != i+1 {
			return true
		}
	}
	return false
}

// Available filters candidates down to those not already in the set.
func (w *WorkingSet) Available(candidates []artwork.Candidate) []artwork.Candidate {
	out := make([]artwork.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !w.Contains(c.URL) {
			out = append(out, c)
		}
	}
	return out
}

// URLs returns the image URLs in slot order.
func (w *WorkingSet) URLs() []string {
	urls := make([]string, 0, len(w.images))
	for _, im := range w.images {
		urls = append(urls, im.URL)
	}
	return urls
}

// Assignments maps slot names to values: the list numbered from 1, then an
// empty value for every previously used slot past the end of the list.
func (w *WorkingSet) Assignments() map[string]string {
	out := make(map[string]string, max(len(w.images), w.maxOrdinal))
	for i, im := range w.images {
		out[artwork.SlotName(w.base, i+1)] = im.URL
	}
	for n := len(w.images) + 1; n <= w.maxOrdinal; n++ {
		out[artwork.SlotName(w.base, n)] = ""
	}
	return out
}

// Commit writes the assignments in one library call. The set cannot be
// used afterwards.
func (w *WorkingSet) Commit(ctx context.Context, writer library.ArtWriter) error {
	if w.committed {
		return ErrCommitted
	}
	assignments := w.Assignments()
	if len(assignments) > 0 {
		if err := writer.SetArt(ctx, w.mediaType, w.itemID, assignments); err != nil {
			return err
		}
	}
	w.committed = true
	return nil
}
