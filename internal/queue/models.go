package queue

import (
	"fmt"
	"strings"
	"time"

	"artreview/internal/artwork"
	"artreview/internal/report"
)

// Status represents the lifecycle of a queue entry.
type Status string

const (
	StatusPending  Status = "pending"
	StatusInReview Status = "in_review"
	StatusApplied  Status = "applied"
	StatusSkipped  Status = "skipped"
	StatusStale    Status = "stale"
)

var terminalStatuses = map[Status]struct{}{
	StatusApplied: {},
	StatusSkipped: {},
	StatusStale:   {},
}

// Terminal reports whether resolving with s removes the entry from the queue.
func (s Status) Terminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// ParseStatus converts a string into a Status, returning false when unknown.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case StatusPending, StatusInReview, StatusApplied, StatusSkipped, StatusStale:
		return status, true
	}
	return "", false
}

// Entry is one (item, art type) pair awaiting review.
type Entry struct {
	ID       int64
	ItemID   int64
	ItemType artwork.MediaType
	ArtType  artwork.ArtType
	Scope    artwork.Scope
	Title    string
	Year     string
	// Baseline is the slot value observed at scan time. Empty means the slot
	// was missing; multi-image slots store their numbered values joined by
	// newlines.
	Baseline  string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsUpgrade reports whether the entry targets an already-populated slot.
func (e Entry) IsUpgrade() bool {
	return strings.TrimSpace(e.Baseline) != ""
}

// BaselineValues splits a multi-image baseline into its slot values.
func (e Entry) BaselineValues() []string {
	return SplitBaseline(e.Baseline)
}

// Label renders a short human description such as "Heat (1995) poster".
func (e Entry) Label() string {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = fmt.Sprintf("%s #%d", e.ItemType, e.ItemID)
	}
	if year := strings.TrimSpace(e.Year); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	return fmt.Sprintf("%s %s", title, e.ArtType)
}

// ReportEntry converts the entry into a report row.
func (e Entry) ReportEntry() report.Entry {
	return report.Entry{
		EntryID:   e.ID,
		ItemID:    e.ItemID,
		MediaType: string(e.ItemType),
		Title:     e.Title,
		Year:      e.Year,
		ArtType:   string(e.ArtType),
	}
}

// JoinBaseline encodes multi-image slot values for storage.
func JoinBaseline(values []string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, "\n")
}

// SplitBaseline decodes a stored multi-image baseline.
func SplitBaseline(baseline string) []string {
	if strings.TrimSpace(baseline) == "" {
		return nil
	}
	parts := strings.Split(baseline, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SessionStatus tracks whether a session can still be resumed.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

// Session is the persisted state of one review session.
type Session struct {
	ID          string
	Scope       artwork.Scope
	Mode        artwork.PolicyMode
	Processing  artwork.ProcessingMode
	Status      SessionStatus
	StartedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	// ScanCompleted is set once the library scan that fills the queue has
	// finished. A session resumed without it is scanned again.
	ScanCompleted bool
	Report        *report.Report
}

// Unfinished reports whether the session can be resumed.
func (s *Session) Unfinished() bool {
	return s != nil && s.Status != SessionCompleted
}

// Stats summarizes queue contents for status output.
type Stats struct {
	Pending  int
	InReview int
	ByType   map[artwork.MediaType]int
}

// Total returns all entries still in the queue.
func (s Stats) Total() int {
	return s.Pending + s.InReview
}

// DatabaseHealth describes diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int
	TablesPresent    []string
	MissingTables    []string
	TotalEntries     int
	IntegrityCheck   bool
	Error            string
}
