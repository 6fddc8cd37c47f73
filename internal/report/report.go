// Package report accumulates the outcome of a review session.
//
// A Report is owned by exactly one session. It is persisted as JSON alongside
// the session row after every resolved entry, and the most recently completed
// one is surfaced as the "last report".
package report

import (
	"fmt"
	"strings"
	"time"
)

// MaxDetailEntries caps each detail list. Counts keep growing past the cap.
const MaxDetailEntries = 500

// Policy names which resolver produced an outcome.
type Policy string

const (
	PolicyAuto   Policy = "auto"
	PolicyManual Policy = "manual"
)

// Entry describes one resolved queue entry.
type Entry struct {
	EntryID   int64     `json:"entry_id"`
	ItemID    int64     `json:"item_id"`
	MediaType string    `json:"media_type"`
	Title     string    `json:"title"`
	Year      string    `json:"year,omitempty"`
	ArtType   string    `json:"art_type"`
	Provider  string    `json:"provider,omitempty"`
	URL       string    `json:"url,omitempty"`
	URLs      []string  `json:"urls,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Policy    Policy    `json:"policy,omitempty"`
	At        time.Time `json:"at"`
}

// AutoRun summarizes an automatic pass that followed manual review.
type AutoRun struct {
	Filled int `json:"filled"`
	// Skipped counts slots the pass could not fill; they stay queued for
	// manual review.
	Skipped   int       `json:"skipped"`
	Remaining int       `json:"remaining"`
	At        time.Time `json:"at"`
}

// Counts holds the running totals for a session.
type Counts struct {
	Selected    int `json:"selected"`
	AutoApplied int `json:"auto_applied"`
	Skipped     int `json:"skipped"`
	Stale       int `json:"stale"`
}

// Report is the per-session outcome log.
type Report struct {
	SessionID   string     `json:"session_id"`
	Scope       string     `json:"scope"`
	Mode        string     `json:"mode"`
	Processing  string     `json:"processing"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Counts      Counts     `json:"counts"`
	AutoApplied []Entry    `json:"auto_applied,omitempty"`
	Selected    []Entry    `json:"selected,omitempty"`
	Skipped     []Entry    `json:"skipped,omitempty"`
	Stale       []Entry    `json:"stale,omitempty"`
	AutoRuns    []AutoRun  `json:"auto_runs,omitempty"`
}

// New returns an empty report for a session.
func New(sessionID, scope, mode, processing string, startedAt time.Time) *Report {
	return &Report{
		SessionID:  sessionID,
		Scope:      scope,
		Mode:       mode,
		Processing: processing,
		StartedAt:  startedAt.UTC(),
	}
}

// RecordApplied records an applied entry under the list matching its policy.
func (r *Report) RecordApplied(e Entry) {
	e = stamp(e)
	if e.Policy == PolicyAuto {
		r.Counts.AutoApplied++
		r.AutoApplied = appendCapped(r.AutoApplied, e)
		return
	}
	r.Counts.Selected++
	r.Selected = appendCapped(r.Selected, e)
}

// RecordSkipped records a manual or automatic skip with its reason.
func (r *Report) RecordSkipped(e Entry) {
	r.Counts.Skipped++
	r.Skipped = appendCapped(r.Skipped, stamp(e))
}

// RecordStale records an entry invalidated before review.
func (r *Report) RecordStale(e Entry) {
	r.Counts.Stale++
	r.Stale = appendCapped(r.Stale, stamp(e))
}

// AddAutoRun appends the summary of an automatic pass.
func (r *Report) AddAutoRun(run AutoRun) {
	if run.At.IsZero() {
		run.At = time.Now().UTC()
	}
	r.AutoRuns = append(r.AutoRuns, run)
}

// MarkCompleted stamps the completion time.
func (r *Report) MarkCompleted(at time.Time) {
	completed := at.UTC()
	r.CompletedAt = &completed
}

// Resolved returns the number of entries that reached a terminal state.
func (r *Report) Resolved() int {
	return r.Counts.Selected + r.Counts.AutoApplied + r.Counts.Skipped + r.Counts.Stale
}

// Summary renders the counts as a single human-readable line.
func (r *Report) Summary() string {
	if r == nil {
		return "no report"
	}
	parts := []string{
		fmt.Sprintf("%d selected", r.Counts.Selected),
		fmt.Sprintf("%d auto-applied", r.Counts.AutoApplied),
		fmt.Sprintf("%d skipped", r.Counts.Skipped),
		fmt.Sprintf("%d stale", r.Counts.Stale),
	}
	return strings.Join(parts, ", ")
}

func stamp(e Entry) Entry {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	return e
}

func appendCapped(list []Entry, e Entry) []Entry {
	if len(list) >= MaxDetailEntries {
		return list
	}
	return append(list, e)
}
