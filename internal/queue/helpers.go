package queue

import (
	"database/sql"
	"strings"
	"time"

	"artreview/internal/artwork"
)

const entryColumns = "id, item_id, item_type, art_type, scope, title, year, baseline, status, created_at, updated_at"

const sessionColumns = "id, scope, mode, processing, status, started_at, updated_at, completed_at, scan_completed, report_json"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(scanner rowScanner) (*Entry, error) {
	var (
		entry      Entry
		itemType   string
		artType    string
		scope      string
		title      sql.NullString
		year       sql.NullString
		baseline   sql.NullString
		status     string
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.ItemID,
		&itemType,
		&artType,
		&scope,
		&title,
		&year,
		&baseline,
		&status,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	entry.ItemType = artwork.MediaType(itemType)
	entry.ArtType = artwork.ArtType(artType)
	entry.Scope = artwork.Scope(scope)
	entry.Title = title.String
	entry.Year = year.String
	entry.Baseline = baseline.String
	entry.Status = Status(status)
	entry.CreatedAt = parseTimeString(createdRaw)
	entry.UpdatedAt = parseTimeString(updatedRaw)
	return &entry, nil
}

func nullableString(value string) sql.NullString {
	if strings.TrimSpace(value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func parseTimeString(raw sql.NullString) time.Time {
	if !raw.Valid || raw.String == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw.String); err == nil {
		return ts
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
