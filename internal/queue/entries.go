package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"artreview/internal/artwork"
)

// Enqueue inserts entries that are not already queued and returns how many
// were added. An entry already present for the same item and art type is left
// untouched, whatever its status.
func (s *Store) Enqueue(ctx context.Context, entries []Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	for i, e := range entries {
		if e.ItemID <= 0 || strings.TrimSpace(string(e.ItemType)) == "" || strings.TrimSpace(string(e.ArtType)) == "" {
			return 0, fmt.Errorf("enqueue: entry %d is missing item id, item type, or art type", i)
		}
	}

	added := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		added = 0
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO queue_entries
			(item_id, item_type, art_type, scope, title, year, baseline, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := formatTime(time.Now())
		for _, e := range entries {
			res, err := stmt.ExecContext(ctx,
				e.ItemID,
				string(e.ItemType),
				string(e.ArtType),
				string(e.Scope),
				nullableString(e.Title),
				nullableString(e.Year),
				nullableString(e.Baseline),
				string(StatusPending),
				now,
				now,
			)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				added += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, persistenceError("enqueue", err)
	}
	return added, nil
}

// Dequeue hands out the oldest pending entry and marks it in review. It
// returns nil when nothing is pending.
func (s *Store) Dequeue(ctx context.Context) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entry *Entry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		entry = nil
		row := tx.QueryRowContext(ctx,
			"SELECT "+entryColumns+" FROM queue_entries WHERE status = ? ORDER BY id LIMIT 1",
			string(StatusPending),
		)
		found, err := scanEntry(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx,
			"UPDATE queue_entries SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
			string(StatusInReview), formatTime(now), found.ID, string(StatusPending),
		); err != nil {
			return err
		}
		found.Status = StatusInReview
		found.UpdatedAt = now
		entry = found
		return nil
	})
	if err != nil {
		return nil, persistenceError("dequeue", err)
	}
	return entry, nil
}

// Resolve removes an in-review entry once it reaches a terminal status.
func (s *Store) Resolve(ctx context.Context, id int64, status Status) error {
	if !status.Terminal() {
		return fmt.Errorf("resolve entry %d as %q: %w", id, status, ErrInvalidStatus)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.execWithRetry(ctx,
		"DELETE FROM queue_entries WHERE id = ? AND status = ?",
		id, string(StatusInReview),
	)
	if err != nil {
		return persistenceError("resolve", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resolve entry %d: %w", id, ErrNotInReview)
	}
	return nil
}

// Release puts an in-review entry back to pending without resolving it.
func (s *Store) Release(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.execWithRetry(ctx,
		"UPDATE queue_entries SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(StatusPending), formatTime(time.Now()), id, string(StatusInReview),
	)
	if err != nil {
		return persistenceError("release", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("release entry %d: %w", id, ErrNotInReview)
	}
	return nil
}

// RecoverInReview returns every in-review entry to pending. It is called when
// a session resumes, since no other process can be reviewing them.
func (s *Store) RecoverInReview(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.execWithRetry(ctx,
		"UPDATE queue_entries SET status = ?, updated_at = ? WHERE status = ?",
		string(StatusPending), formatTime(time.Now()), string(StatusInReview),
	)
	if err != nil {
		return 0, persistenceError("recover", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// PendingCount returns the number of entries waiting to be dequeued.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT COUNT(1) FROM queue_entries WHERE status = ?", string(StatusPending),
		).Scan(&count)
	})
	if err != nil {
		return 0, persistenceError("pending count", err)
	}
	return count, nil
}

// Peek returns up to limit pending entries in dequeue order without changing them.
func (s *Store) Peek(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.query(ctx, "peek",
		"SELECT "+entryColumns+" FROM queue_entries WHERE status = ? ORDER BY id LIMIT ?",
		string(StatusPending), limit,
	)
}

// List returns entries in queue order, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Entry, error) {
	query := "SELECT " + entryColumns + " FROM queue_entries"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, st := range statuses {
			args = append(args, string(st))
		}
	}
	query += " ORDER BY id"
	return s.query(ctx, "list", query, args...)
}

// Get returns the entry with the given id, or nil when it is not queued.
func (s *Store) Get(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+entryColumns+" FROM queue_entries WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistenceError("get", err)
	}
	return entry, nil
}

// Stats summarizes queue contents.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT status, item_type, COUNT(1) FROM queue_entries GROUP BY status, item_type")
	if err != nil {
		return Stats{}, persistenceError("stats", err)
	}
	defer rows.Close()

	stats := Stats{ByType: make(map[artwork.MediaType]int)}
	for rows.Next() {
		var (
			status   string
			itemType string
			count    int
		)
		if err := rows.Scan(&status, &itemType, &count); err != nil {
			return Stats{}, persistenceError("stats", err)
		}
		switch Status(status) {
		case StatusPending:
			stats.Pending += count
		case StatusInReview:
			stats.InReview += count
		}
		stats.ByType[artwork.MediaType(itemType)] += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, persistenceError("stats", err)
	}
	return stats, nil
}

// Clear removes every queued entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.execWithRetry(ctx, "DELETE FROM queue_entries")
	if err != nil {
		return 0, persistenceError("clear", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) query(ctx context.Context, operation, query string, args ...any) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, persistenceError(operation, err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, persistenceError(operation, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError(operation, err)
	}
	return entries, nil
}
