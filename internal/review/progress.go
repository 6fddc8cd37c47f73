package review

import (
	"log/slog"

	"artreview/internal/logging"
	"artreview/internal/policy"
	"artreview/internal/queue"
)

// ProgressEvent is emitted after each entry reaches a decision.
type ProgressEvent struct {
	SessionID string
	Entry     queue.Entry
	Outcome   policy.OutcomeKind
	Reason    string
	// Done counts entries decided in this run; Total adds those still pending.
	Done  int
	Total int
}

// Progress receives engine progress.
type Progress interface {
	Update(ProgressEvent)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(ProgressEvent)

// Update implements Progress.
func (f ProgressFunc) Update(ev ProgressEvent) { f(ev) }

// LogProgress writes sampled progress lines to a logger.
type LogProgress struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

// NewLogProgress logs every time progress crosses a 5% boundary.
func NewLogProgress(logger *slog.Logger) *LogProgress {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogProgress{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(5),
	}
}

// Update implements Progress.
func (p *LogProgress) Update(ev ProgressEvent) {
	if !p.sampler.ShouldLog(ev.Done, ev.Total) && ev.Done != ev.Total {
		return
	}
	p.logger.Info("review progress",
		logging.Int("done", ev.Done),
		logging.Int("total", ev.Total),
		logging.String("last_entry", ev.Entry.Label()),
		logging.String("outcome", string(ev.Outcome)),
	)
}

type multiProgress []Progress

func (m multiProgress) Update(ev ProgressEvent) {
	for _, p := range m {
		p.Update(ev)
	}
}
