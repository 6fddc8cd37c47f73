package policy

import (
	"context"
	"log/slog"

	"artreview/internal/artwork"
	"artreview/internal/library"
	"artreview/internal/logging"
	"artreview/internal/multiart"
	"artreview/internal/report"
)

// Automatic applies the top compliant candidate without user input.
type Automatic struct {
	writer     library.ArtWriter
	extraCount int
	logger     *slog.Logger
}

var _ Resolver = (*Automatic)(nil)

// NewAutomatic creates the automatic resolver. extraCount is how many images
// it adds to an empty multi-image slot; zero skips those entries.
func NewAutomatic(writer library.ArtWriter, extraCount int, logger *slog.Logger) *Automatic {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Automatic{
		writer:     writer,
		extraCount: max(extraCount, 0),
		logger:     logging.NewComponentLogger(logger, "policy"),
	}
}

// Mode implements Resolver.
func (a *Automatic) Mode() artwork.PolicyMode { return artwork.PolicyAuto }

// Resolve implements Resolver.
func (a *Automatic) Resolve(ctx context.Context, task Task) (Outcome, error) {
	logger := logging.WithContext(ctx, a.logger)
	entry := task.Entry

	if entry.IsUpgrade() {
		return a.skip(logger, ReasonPreserved), nil
	}
	if entry.ArtType.IsMulti() {
		return a.resolveMulti(ctx, logger, task)
	}

	top, ok := task.Result.Top()
	if !ok {
		return a.skip(logger, ReasonNoCompliant), nil
	}
	if err := a.writer.SetArt(ctx, entry.ItemType, entry.ItemID, map[string]string{string(entry.ArtType): top.URL}); err != nil {
		return Outcome{}, err
	}
	logger.Info("artwork auto-applied",
		logging.Decision("auto_select", "applied", "top compliant candidate",
			logging.String(logging.FieldProvider, top.Provider),
			logging.String("url", top.URL),
		)...,
	)
	return Outcome{Kind: OutcomeApplied, Policy: report.PolicyAuto, Candidate: &top}, nil
}

func (a *Automatic) resolveMulti(ctx context.Context, logger *slog.Logger, task Task) (Outcome, error) {
	if a.extraCount == 0 {
		return a.skip(logger, ReasonMultiManualOnly), nil
	}
	ws := multiart.Open(task.Item, task.Entry.ArtType)
	for _, c := range ws.Available(task.Result.Filtered) {
		if ws.Len() >= a.extraCount {
			break
		}
		if err := ws.Add(c); err != nil {
			continue
		}
	}
	if !ws.Dirty() {
		return a.skip(logger, ReasonNoCompliant), nil
	}
	if err := ws.Commit(ctx, a.writer); err != nil {
		return Outcome{}, err
	}
	logger.Info("numbered artwork auto-applied",
		logging.Decision("auto_select", "applied", "top compliant candidates",
			logging.Int("count", ws.Len()),
		)...,
	)
	return Outcome{Kind: OutcomeApplied, Policy: report.PolicyAuto, URLs: ws.URLs()}, nil
}

func (a *Automatic) skip(logger *slog.Logger, reason string) Outcome {
	logger.Info("entry skipped", logging.Decision("auto_select", "skipped", reason)...)
	return skipped(report.PolicyAuto, reason)
}
