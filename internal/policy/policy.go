// Package policy decides how a queue entry is resolved once its candidates
// are known.
//
// Automatic applies the best language-compliant candidate without asking and
// never replaces artwork that already exists. Manual hands the full ranked
// list to a Presenter and writes whatever the user picks after checking the
// entry is still current.
package policy

import (
	"context"

	"artreview/internal/aggregate"
	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/queue"
	"artreview/internal/report"
)

// Skip and stale reasons recorded in the session report.
const (
	ReasonNoCompliant     = "no compliant candidate"
	ReasonNoCandidates    = "no candidates from providers"
	ReasonPreserved       = "existing artwork preserved"
	ReasonMultiManualOnly = "multi-image slots need manual review"
	ReasonSkippedByUser   = "skipped by user"
	ReasonNoChanges       = "no changes"
	ReasonItemRemoved     = "item no longer in library"
	ReasonArtFilled       = "artwork no longer missing"
	ReasonArtChanged      = "artwork changed since scan"
	ReasonExtrasChanged   = "numbered slots changed since scan"
)

// OutcomeKind is the terminal decision for an entry.
type OutcomeKind string

const (
	OutcomeApplied   OutcomeKind = "applied"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeStale     OutcomeKind = "stale"
	OutcomeCancelled OutcomeKind = "cancelled"
)

// QueueStatus maps an outcome onto the terminal queue status. Cancelled
// outcomes have none; the entry goes back to pending.
func (k OutcomeKind) QueueStatus() (queue.Status, bool) {
	switch k {
	case OutcomeApplied:
		return queue.StatusApplied, true
	case OutcomeSkipped:
		return queue.StatusSkipped, true
	case OutcomeStale:
		return queue.StatusStale, true
	}
	return "", false
}

// Outcome describes how an entry was resolved.
type Outcome struct {
	Kind      OutcomeKind
	Policy    report.Policy
	Candidate *artwork.Candidate
	// URLs lists the committed images of a multi-image slot.
	URLs   []string
	Reason string
}

// Task is everything a resolver needs to decide one entry.
type Task struct {
	Entry  *queue.Entry
	Item   *library.Item
	Result aggregate.Result
	// Remaining is the number of entries still pending after this one.
	Remaining int
}

// Resolver turns a task into an outcome. A returned error means nothing
// was decided and the entry must be released.
type Resolver interface {
	Mode() artwork.PolicyMode
	Resolve(ctx context.Context, task Task) (Outcome, error)
}

// Verdict is the result of a staleness check.
type Verdict struct {
	Stale  bool
	Reason string
	// Item is the current library item, nil when it was removed.
	Item *library.Item
}

// StalenessChecker re-reads an entry's item and compares it with the
// baseline captured at scan time.
type StalenessChecker interface {
	Validate(ctx context.Context, entry *queue.Entry) (Verdict, error)
}

func skipped(p report.Policy, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Policy: p, Reason: reason}
}
