package review

import (
	"context"
	"errors"
	"log/slog"

	"artreview/internal/aggregate"
	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/logging"
	"artreview/internal/policy"
	"artreview/internal/queue"
	"artreview/internal/report"
	"artreview/internal/services"
)

// Fetcher aggregates candidates for one entry.
type Fetcher interface {
	FetchCandidates(ctx context.Context, item *library.Item, artType artwork.ArtType, filter artwork.LanguageFilter, opts aggregate.Options) (aggregate.Result, error)
}

// RunResult summarizes one engine run.
type RunResult struct {
	Applied   int
	Skipped   int
	Stale     int
	Remaining int
	// Completed is set when the queue drained and the session was completed.
	Completed bool
	// Paused is set when the run stopped on cancellation with entries left.
	Paused bool
	// HandedOff is set when an automatic pass inside a manual session
	// finished and left the entries it could not fill for manual review.
	HandedOff bool
}

// Done returns the number of entries decided during the run.
func (r RunResult) Done() int {
	return r.Applied + r.Skipped + r.Stale
}

// Engine drains the review queue of one session.
type Engine struct {
	store     *queue.Store
	checker   policy.StalenessChecker
	fetcher   Fetcher
	languages artwork.LanguagePolicy
	progress  Progress
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProgress adds progress receivers.
func WithProgress(p ...Progress) EngineOption {
	return func(e *Engine) {
		e.progress = append(multiProgress{e.progress}, p...)
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logging.NewComponentLogger(logger, "engine")
		}
	}
}

// NewEngine wires the engine's collaborators.
func NewEngine(store *queue.Store, checker policy.StalenessChecker, fetcher Fetcher, languages artwork.LanguagePolicy, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     store,
		checker:   checker,
		fetcher:   fetcher,
		languages: languages,
		progress:  ProgressFunc(func(ProgressEvent) {}),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes entries until the queue is empty, the context is cancelled,
// the resolver cancels, or a fatal error occurs. A drained queue completes
// the session, except after an automatic pass inside a manual session that
// skipped entries: those go back to pending for manual review and the session
// stays open. Errors are returned only for failures that must halt review;
// the failing entry goes back to pending first.
func (e *Engine) Run(ctx context.Context, handle *queue.SessionHandle, resolver policy.Resolver) (RunResult, error) {
	sess := handle.Session
	ctx = services.WithSessionID(ctx, sess.ID)
	logger := logging.WithContext(ctx, e.logger)
	pol := report.Policy(resolver.Mode())
	// Persistence after a decision must survive cancellation.
	persistCtx := context.WithoutCancel(ctx)
	handoff := autoPassInManual(handle, resolver)

	var (
		result RunResult
		// held entries stay in review until the pass ends so Dequeue moves on.
		held []int64
	)
	pending, err := e.store.PendingCount(persistCtx)
	if err != nil {
		return result, err
	}
	total := pending
	logger.Info("review started",
		logging.String("policy", string(resolver.Mode())),
		logging.Int("pending", pending),
	)

	for {
		if ctx.Err() != nil {
			return e.pause(persistCtx, logger, handle, resolver, held, result)
		}

		entry, err := e.store.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return e.pause(persistCtx, logger, handle, resolver, held, result)
			}
			return result, errors.Join(err, e.releaseHeld(persistCtx, held))
		}
		if entry == nil {
			break
		}

		outcome, err := e.decide(ctx, entry, resolver, pol)
		if err != nil || outcome.Kind == policy.OutcomeCancelled {
			if releaseErr := e.store.Release(persistCtx, entry.ID); releaseErr != nil {
				return result, errors.Join(err, releaseErr, e.releaseHeld(persistCtx, held))
			}
			if err != nil && ctx.Err() == nil {
				hint := "entry returned to pending; resume to retry"
				if services.Fatal(err) {
					hint = "entry returned to pending; fix the cause and resume"
				}
				logging.ErrorWithContext(logger, "review halted", "review_halted",
					logging.Error(err),
					logging.String("error_kind", services.Kind(err)),
					logging.Int64(logging.FieldEntryID, entry.ID),
					logging.String(logging.FieldErrorHint, hint),
				)
				return result, errors.Join(err, e.releaseHeld(persistCtx, held))
			}
			return e.pause(persistCtx, logger, handle, resolver, held, result)
		}

		if handoff && outcome.Kind == policy.OutcomeSkipped {
			held = append(held, entry.ID)
			logger.Debug("entry left for manual review",
				logging.Int64(logging.FieldEntryID, entry.ID),
				logging.String("reason", outcome.Reason),
			)
		} else if err := e.retire(persistCtx, handle, entry, outcome); err != nil {
			return result, errors.Join(err, e.releaseHeld(persistCtx, held))
		}
		switch outcome.Kind {
		case policy.OutcomeApplied:
			result.Applied++
		case policy.OutcomeSkipped:
			result.Skipped++
		case policy.OutcomeStale:
			result.Stale++
		}
		e.progress.Update(ProgressEvent{
			SessionID: sess.ID,
			Entry:     *entry,
			Outcome:   outcome.Kind,
			Reason:    outcome.Reason,
			Done:      result.Done(),
			Total:     max(total, result.Done()),
		})
	}

	if len(held) > 0 {
		return e.handOff(persistCtx, logger, handle, resolver, held, result)
	}
	e.recordAutoRun(handle, resolver, result)
	if err := handle.Complete(persistCtx); err != nil {
		return result, err
	}
	result.Completed = true
	logger.Info("review completed", logging.String("summary", sess.Report.Summary()))
	return result, nil
}

// decide validates, fetches and resolves one in-review entry.
func (e *Engine) decide(ctx context.Context, entry *queue.Entry, resolver policy.Resolver, pol report.Policy) (policy.Outcome, error) {
	ctx = services.WithArtType(services.WithEntryID(ctx, entry.ID), string(entry.ArtType))
	logger := logging.WithContext(ctx, e.logger)

	verdict, err := e.checker.Validate(ctx, entry)
	if err != nil {
		return policy.Outcome{}, err
	}
	if verdict.Stale {
		logger.Info("entry stale", logging.Decision("staleness", "stale", verdict.Reason)...)
		return policy.Outcome{Kind: policy.OutcomeStale, Policy: pol, Reason: verdict.Reason}, nil
	}

	filter := e.languages.FilterFor(entry.ArtType)
	opts := aggregate.Options{BypassCache: resolver.Mode() == artwork.PolicyManual}
	candidates, err := e.fetcher.FetchCandidates(ctx, verdict.Item, entry.ArtType, filter, opts)
	if err != nil {
		return policy.Outcome{}, err
	}
	if ctx.Err() != nil {
		return policy.Outcome{}, ctx.Err()
	}

	remaining, err := e.store.PendingCount(ctx)
	if err != nil {
		return policy.Outcome{}, err
	}
	return resolver.Resolve(ctx, policy.Task{
		Entry:     entry,
		Item:      verdict.Item,
		Result:    candidates,
		Remaining: remaining,
	})
}

// retire removes the entry from the queue and records the outcome in the
// session report as one commit. On failure the report is rolled back and the
// entry returned to pending.
func (e *Engine) retire(ctx context.Context, handle *queue.SessionHandle, entry *queue.Entry, outcome policy.Outcome) error {
	status, ok := outcome.Kind.QueueStatus()
	if !ok {
		return services.Wrap(services.ErrPersistence, "engine", "retire entry", "outcome "+string(outcome.Kind)+" has no queue status", nil)
	}

	row := entry.ReportEntry()
	row.Policy = outcome.Policy
	row.Reason = outcome.Reason
	row.URLs = outcome.URLs
	if outcome.Candidate != nil {
		row.Provider = outcome.Candidate.Provider
		row.URL = outcome.Candidate.URL
	}
	rep := handle.Session.Report
	saved := *rep
	switch outcome.Kind {
	case policy.OutcomeApplied:
		rep.RecordApplied(row)
	case policy.OutcomeSkipped:
		rep.RecordSkipped(row)
	case policy.OutcomeStale:
		rep.RecordStale(row)
	}
	if err := handle.Retire(ctx, entry.ID, status); err != nil {
		*rep = saved
		if errors.Is(err, queue.ErrNotInReview) {
			return err
		}
		return errors.Join(err, e.store.Release(ctx, entry.ID))
	}
	return nil
}

func (e *Engine) pause(ctx context.Context, logger *slog.Logger, handle *queue.SessionHandle, resolver policy.Resolver, held []int64, result RunResult) (RunResult, error) {
	if err := e.releaseHeld(ctx, held); err != nil {
		return result, err
	}
	remaining, err := e.store.PendingCount(ctx)
	if err != nil {
		return result, err
	}
	result.Remaining = remaining
	result.Paused = true
	e.recordAutoRun(handle, resolver, result)
	if err := handle.Save(ctx); err != nil {
		return result, err
	}
	logger.Info("review paused",
		logging.Int("decided", result.Done()),
		logging.Int("remaining", remaining),
	)
	return result, nil
}

// handOff ends an automatic pass inside a manual session: unfilled entries go
// back to pending and the session stays open for manual review.
func (e *Engine) handOff(ctx context.Context, logger *slog.Logger, handle *queue.SessionHandle, resolver policy.Resolver, held []int64, result RunResult) (RunResult, error) {
	if err := e.releaseHeld(ctx, held); err != nil {
		return result, err
	}
	remaining, err := e.store.PendingCount(ctx)
	if err != nil {
		return result, err
	}
	result.Remaining = remaining
	result.HandedOff = true
	e.recordAutoRun(handle, resolver, result)
	if err := handle.Save(ctx); err != nil {
		return result, err
	}
	logger.Info("automatic pass finished",
		logging.Int("filled", result.Applied),
		logging.Int("left_for_manual", remaining),
	)
	return result, nil
}

func (e *Engine) releaseHeld(ctx context.Context, held []int64) error {
	var errs []error
	for _, id := range held {
		if err := e.store.Release(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func autoPassInManual(handle *queue.SessionHandle, resolver policy.Resolver) bool {
	return resolver.Mode() == artwork.PolicyAuto && handle.Session.Mode == artwork.PolicyManual
}

// recordAutoRun notes an automatic pass made inside a manual session.
func (e *Engine) recordAutoRun(handle *queue.SessionHandle, resolver policy.Resolver, result RunResult) {
	if !autoPassInManual(handle, resolver) {
		return
	}
	handle.Session.Report.AddAutoRun(report.AutoRun{
		Filled:    result.Applied,
		Skipped:   result.Skipped,
		Remaining: result.Remaining,
	})
}
