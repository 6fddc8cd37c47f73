package policy

import (
	"context"
	"fmt"
	"log/slog"

	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/logging"
	"artreview/internal/multiart"
	"artreview/internal/queue"
	"artreview/internal/report"
)

// Action is the user's decision for a single-image entry.
type Action int

const (
	ActionSelect Action = iota
	ActionSkip
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionSelect:
		return "select"
	case ActionSkip:
		return "skip"
	case ActionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Choice is what the presenter returns for a single-image entry.
type Choice struct {
	Action    Action
	Candidate artwork.Candidate
}

// Prompt carries everything shown to the user for one entry.
type Prompt struct {
	Entry queue.Entry
	Title string
	// Current is the slot's value right now, empty when missing.
	Current string
	// Candidates is the unfiltered ranked list.
	Candidates    []artwork.Candidate
	Filter        artwork.LanguageFilter
	FilteredCount int
	Total         int
	Remaining     int
	// Failed names providers that returned nothing because of an error.
	Failed []string
}

// Compliant reports whether a candidate passes the language filter.
func (p Prompt) Compliant(c artwork.Candidate) bool {
	return p.Filter.Matches(c)
}

// Presenter shows candidates to the user.
type Presenter interface {
	// Choose asks the user to select a candidate, skip, or cancel.
	Choose(ctx context.Context, prompt Prompt) (Choice, error)
	// EditWorkingSet lets the user edit a multi-image slot. It returns true
	// to commit the set and false to cancel.
	EditWorkingSet(ctx context.Context, ws *multiart.WorkingSet, prompt Prompt) (bool, error)
}

// Manual resolves entries through a Presenter.
type Manual struct {
	presenter Presenter
	writer    library.ArtWriter
	checker   StalenessChecker
	logger    *slog.Logger
}

var _ Resolver = (*Manual)(nil)

// NewManual creates the manual resolver. checker re-validates an entry right
// before a write.
func NewManual(presenter Presenter, writer library.ArtWriter, checker StalenessChecker, logger *slog.Logger) *Manual {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manual{
		presenter: presenter,
		writer:    writer,
		checker:   checker,
		logger:    logging.NewComponentLogger(logger, "policy"),
	}
}

// Mode implements Resolver.
func (m *Manual) Mode() artwork.PolicyMode { return artwork.PolicyManual }

// Resolve implements Resolver.
func (m *Manual) Resolve(ctx context.Context, task Task) (Outcome, error) {
	logger := logging.WithContext(ctx, m.logger)
	prompt := buildPrompt(task)

	if task.Entry.ArtType.IsMulti() {
		return m.resolveMulti(ctx, logger, task, prompt)
	}
	if prompt.Total == 0 {
		return skipped(report.PolicyManual, ReasonNoCandidates), nil
	}

	choice, err := m.presenter.Choose(ctx, prompt)
	if err != nil {
		return Outcome{}, err
	}
	switch choice.Action {
	case ActionSkip:
		logger.Info("entry skipped", logging.Decision("manual_select", "skipped", ReasonSkippedByUser)...)
		return skipped(report.PolicyManual, ReasonSkippedByUser), nil
	case ActionCancel:
		return Outcome{Kind: OutcomeCancelled, Policy: report.PolicyManual}, nil
	case ActionSelect:
	default:
		return Outcome{}, fmt.Errorf("presenter returned unknown action %v", choice.Action)
	}

	if outcome, stale, err := m.recheck(ctx, task.Entry); err != nil || stale {
		return outcome, err
	}
	selected := choice.Candidate
	entry := task.Entry
	if err := m.writer.SetArt(ctx, entry.ItemType, entry.ItemID, map[string]string{string(entry.ArtType): selected.URL}); err != nil {
		return Outcome{}, err
	}
	logger.Info("artwork selected",
		logging.Decision("manual_select", "applied", "user selection",
			logging.String(logging.FieldProvider, selected.Provider),
			logging.String("url", selected.URL),
			logging.Bool("compliant", prompt.Compliant(selected)),
		)...,
	)
	return Outcome{Kind: OutcomeApplied, Policy: report.PolicyManual, Candidate: &selected}, nil
}

func (m *Manual) resolveMulti(ctx context.Context, logger *slog.Logger, task Task, prompt Prompt) (Outcome, error) {
	ws := multiart.Open(task.Item, task.Entry.ArtType)
	commit, err := m.presenter.EditWorkingSet(ctx, ws, prompt)
	if err != nil {
		return Outcome{}, err
	}
	if !commit {
		return Outcome{Kind: OutcomeCancelled, Policy: report.PolicyManual}, nil
	}
	if !ws.Dirty() {
		return skipped(report.PolicyManual, ReasonNoChanges), nil
	}
	if outcome, stale, err := m.recheck(ctx, task.Entry); err != nil || stale {
		return outcome, err
	}
	if err := ws.Commit(ctx, m.writer); err != nil {
		return Outcome{}, err
	}
	logger.Info("numbered artwork committed",
		logging.Decision("manual_select", "applied", "user edited working set",
			logging.Int("count", ws.Len()),
		)...,
	)
	return Outcome{Kind: OutcomeApplied, Policy: report.PolicyManual, URLs: ws.URLs()}, nil
}

// recheck guards against the slot changing while the user was deciding.
func (m *Manual) recheck(ctx context.Context, entry *queue.Entry) (Outcome, bool, error) {
	if m.checker == nil {
		return Outcome{}, false, nil
	}
	verdict, err := m.checker.Validate(ctx, entry)
	if err != nil {
		return Outcome{}, false, err
	}
	if !verdict.Stale {
		return Outcome{}, false, nil
	}
	return Outcome{Kind: OutcomeStale, Policy: report.PolicyManual, Reason: verdict.Reason}, true, nil
}

func buildPrompt(task Task) Prompt {
	entry := *task.Entry
	return Prompt{
		Entry:         entry,
		Title:         entry.Label(),
		Current:       task.Item.Art(entry.ArtType),
		Candidates:    task.Result.All,
		Filter:        task.Result.Filter,
		FilteredCount: task.Result.FilteredCount(),
		Total:         task.Result.Total(),
		Remaining:     task.Remaining,
		Failed:        task.Result.Failed,
	}
}
