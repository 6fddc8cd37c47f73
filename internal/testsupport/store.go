package testsupport

import (
	"context"
	"testing"

	"artreview/internal/artwork"
	"artreview/internal/config"
	"artreview/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewEntry builds a pending movie entry for tests.
func NewEntry(itemID int64, title string, artType artwork.ArtType) queue.Entry {
	return queue.Entry{
		ItemID:   itemID,
		ItemType: artwork.MediaMovie,
		ArtType:  artType,
		Scope:    artwork.ScopeMovie,
		Title:    title,
		Year:     "1995",
	}
}

// MustEnqueue enqueues entries and fails the test on error.
func MustEnqueue(t testing.TB, store *queue.Store, entries ...queue.Entry) int {
	t.Helper()

	added, err := store.Enqueue(context.Background(), entries)
	if err != nil {
		t.Fatalf("store.Enqueue: %v", err)
	}
	return added
}

// MustOpenSession starts a fresh session and registers cleanup.
func MustOpenSession(t testing.TB, store *queue.Store, mode artwork.PolicyMode) *queue.SessionHandle {
	t.Helper()

	handle, err := store.OpenSession(context.Background(), queue.SessionRequest{
		Scope:      artwork.ScopeAll,
		Mode:       mode,
		Processing: artwork.ModeMissingOnly,
	})
	if err != nil {
		t.Fatalf("store.OpenSession: %v", err)
	}
	t.Cleanup(func() {
		handle.Close()
	})
	return handle
}
