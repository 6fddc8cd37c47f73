package review

import (
	"context"
	"log/slog"
	"slices"

	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/logging"
	"artreview/internal/queue"
	"artreview/internal/services"
)

// ArtTypesFunc returns the art types reviewed for a media type.
type ArtTypesFunc func(artwork.MediaType) []artwork.ArtType

// ScanResult summarizes one library scan.
type ScanResult struct {
	Items    int
	Enqueued int
	// ByMediaType counts enqueued entries per media type.
	ByMediaType map[artwork.MediaType]int
}

// Scanner turns library state into queue entries.
type Scanner struct {
	library  library.Library
	store    *queue.Store
	artTypes ArtTypesFunc
	logger   *slog.Logger
}

// NewScanner creates a scanner.
func NewScanner(lib library.Library, store *queue.Store, artTypes ArtTypesFunc, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		library:  lib,
		store:    store,
		artTypes: artTypes,
		logger:   logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan enqueues every reviewable slot for the media types in scope. Entries
// for one item are enqueued in review priority order. Slots already queued
// are left untouched.
func (s *Scanner) Scan(ctx context.Context, scope artwork.Scope, processing artwork.ProcessingMode) (ScanResult, error) {
	result := ScanResult{ByMediaType: make(map[artwork.MediaType]int)}
	for _, mediaType := range scope.MediaTypes() {
		types := slices.Clone(s.artTypes(mediaType))
		if len(types) == 0 {
			continue
		}
		artwork.SortByPriority(types)

		items, err := s.library.Items(ctx, mediaType)
		if err != nil {
			return result, services.Wrap(services.ErrLibrary, "scanner", "list items", string(mediaType), err)
		}
		result.Items += len(items)

		var entries []queue.Entry
		for i := range items {
			entries = append(entries, entriesFor(&items[i], scope, types, processing)...)
		}
		added, err := s.store.Enqueue(ctx, entries)
		if err != nil {
			return result, err
		}
		result.Enqueued += added
		result.ByMediaType[mediaType] = added
		s.logger.Info("library scanned",
			logging.String("media_type", string(mediaType)),
			logging.Int("items", len(items)),
			logging.Int("enqueued", added),
		)
	}
	return result, nil
}

// ScanSession fills the queue from the session's scope unless an earlier scan
// of the session already finished, then flags the session scanned. A scan
// that failed partway is repeated in full; slots it already queued are kept.
// The boolean reports whether a scan ran.
func (s *Scanner) ScanSession(ctx context.Context, handle *queue.SessionHandle) (ScanResult, bool, error) {
	sess := handle.Session
	if sess.ScanCompleted {
		return ScanResult{}, false, nil
	}
	result, err := s.Scan(ctx, sess.Scope, sess.Processing)
	if err != nil {
		return result, true, err
	}
	if err := handle.MarkScanned(context.WithoutCancel(ctx)); err != nil {
		return result, true, err
	}
	return result, true, nil
}

func entriesFor(item *library.Item, scope artwork.Scope, types []artwork.ArtType, processing artwork.ProcessingMode) []queue.Entry {
	var out []queue.Entry
	for _, artType := range types {
		current := item.Art(artType)
		if current != "" && processing != artwork.ModeMissingAndUpgrades {
			continue
		}
		out = append(out, queue.Entry{
			ItemID:   item.ID,
			ItemType: item.MediaType,
			ArtType:  artType,
			Scope:    scope,
			Title:    item.Title,
			Year:     item.Year,
			Baseline: current,
		})
	}
	return out
}
