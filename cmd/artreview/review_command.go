package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"artreview/internal/aggregate"
	"artreview/internal/artwork"
	"artreview/internal/config"
	"artreview/internal/library/kodi"
	"artreview/internal/logging"
	"artreview/internal/notifications"
	"artreview/internal/policy"
	"artreview/internal/preflight"
	"artreview/internal/queue"
	"artreview/internal/review"
	"artreview/internal/tui"
)

type reviewOptions struct {
	scope      string
	policy     string
	processing string
	resume     bool
	discard    bool
}

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var opts reviewOptions

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Scan the library and review artwork candidates",
		Long: `Scan the Kodi library for missing artwork and resolve each slot.

With --policy manual every slot is shown in an interactive picker; with
--policy auto the best language-compliant candidate is applied and existing
artwork is never replaced. Press q or Ctrl-C to pause; --resume continues
the paused session where it stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if opts.resume && opts.discard {
				return errors.New("--resume and --discard are mutually exclusive")
			}
			req, err := opts.sessionRequest()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runReview(runCtx, cmd, cfg, req)
		},
	}

	cmd.Flags().StringVar(&opts.scope, "scope", "all", "Media to scan: movie, tvshow, music or all")
	cmd.Flags().StringVar(&opts.policy, "policy", "manual", "Resolution policy: manual or auto")
	cmd.Flags().StringVar(&opts.processing, "mode", "missing_only", "Slots to review: missing_only or missing_and_upgrades")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "Continue the unfinished session")
	cmd.Flags().BoolVar(&opts.discard, "discard", false, "Discard the unfinished session and start over")
	return cmd
}

func (o reviewOptions) sessionRequest() (queue.SessionRequest, error) {
	scope, err := artwork.ParseScope(o.scope)
	if err != nil {
		return queue.SessionRequest{}, err
	}
	mode, err := artwork.ParsePolicyMode(o.policy)
	if err != nil {
		return queue.SessionRequest{}, err
	}
	processing, err := artwork.ParseProcessingMode(o.processing)
	if err != nil {
		return queue.SessionRequest{}, err
	}
	return queue.SessionRequest{
		Scope:      scope,
		Mode:       mode,
		Processing: processing,
		Resume:     o.resume,
		Discard:    o.discard,
	}, nil
}

func runReview(ctx context.Context, cmd *cobra.Command, cfg *config.Config, req queue.SessionRequest) error {
	out := cmd.OutOrStdout()
	manual := req.Mode == artwork.PolicyManual
	if manual && !stdinIsTerminal(cmd.InOrStdin()) {
		return errors.New("manual review requires an interactive terminal (use --policy auto otherwise)")
	}

	var (
		logger *slog.Logger
		err    error
	)
	if manual {
		logger, err = logging.NewFileOnlyFromConfig(cfg)
	} else {
		logger, err = logging.NewFromConfig(cfg)
	}
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}

	lib, err := kodi.New(cfg.Kodi.URL, cfg.KodiTimeout(), kodi.WithCredentials(cfg.Kodi.Username, cfg.Kodi.Password))
	if err != nil {
		return err
	}
	if check := preflight.CheckKodi(ctx, cfg.Kodi.URL, lib); !check.Passed {
		return fmt.Errorf("kodi unreachable: %s", check.Detail)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open queue database: %w", err)
	}
	defer store.Close()

	handle, err := store.OpenSession(ctx, req)
	switch {
	case errors.Is(err, queue.ErrSessionExists):
		return fmt.Errorf("%w; pass --resume to continue it or --discard to start over", err)
	case errors.Is(err, queue.ErrNoSession):
		return errors.New("no unfinished session to resume")
	case errors.Is(err, queue.ErrSessionLocked):
		return errors.New("another artreview process is running a review")
	case err != nil:
		return err
	}
	defer handle.Close()
	logger = logging.WithSession(logger, handle.Session.ID)

	if handle.Resumed {
		fmt.Fprintf(out, "Resuming session %s (%s, started %s)\n",
			handle.Session.ID, handle.Session.Scope, handle.Session.StartedAt.Local().Format("2006-01-02 15:04"))
		if handle.Recovered > 0 {
			fmt.Fprintf(out, "Recovered %d interrupted entries\n", handle.Recovered)
		}
	}
	scanner := review.NewScanner(lib, store, cfg.ArtTypesFor, logger)
	scan, scanned, err := scanner.ScanSession(ctx, handle)
	if err != nil {
		return fmt.Errorf("%w; run `artreview review --resume` to finish the scan", err)
	}
	if scanned {
		fmt.Fprintf(out, "Queued %d slots from %d items\n", scan.Enqueued, scan.Items)
	}

	var cache aggregate.Cache
	if cfg.Cache.Enabled {
		c, err := openCache(cfg)
		if err != nil {
			return err
		}
		defer c.Close()
		cache = c
	}
	agg := aggregate.NewFromConfig(cfg, logger, cache)
	if len(agg.Providers()) == 0 {
		logging.WarnWithContext(logger, "no artwork providers configured", "provider_config",
			logging.String(logging.FieldErrorHint, "set tmdb.api_key or fanarttv.api_key"),
			logging.String(logging.FieldImpact, "every entry will be skipped"),
		)
	}
	validator := review.NewValidator(lib)

	var resolver policy.Resolver
	progress := []review.Progress{review.NewLogProgress(logger)}
	if manual {
		resolver = policy.NewManual(tui.New(tui.WithAltScreen()), lib, validator, logger)
	} else {
		resolver = policy.NewAutomatic(lib, cfg.Artwork.AutoExtraCount, logger)
		if shouldColorize(cmd.ErrOrStderr()) {
			progress = append(progress, newProgressLine(cmd.ErrOrStderr()))
		}
	}

	engine := review.NewEngine(store, validator, agg, cfg.LanguagePolicy(),
		review.WithLogger(logger),
		review.WithProgress(progress...),
	)
	started := time.Now()
	result, err := engine.Run(ctx, handle, resolver)

	var notifier notifications.Service
	if !manual {
		notifier = notifications.NewService(cfg)
	}
	notifyCtx := context.WithoutCancel(ctx)
	if err != nil {
		notify(logger, notifier, func(n notifications.Service) error {
			return n.NotifyError(notifyCtx, err, "automatic review")
		})
		return err
	}

	rep := handle.Session.Report
	switch {
	case result.Completed:
		fmt.Fprintf(out, "Review complete: %s\n", rep.Summary())
		notify(logger, notifier, func(n notifications.Service) error {
			return n.NotifyReviewCompleted(notifyCtx, rep, time.Since(started))
		})
	case result.HandedOff:
		fmt.Fprintf(out, "Automatic pass filled %d slots; %d left for manual review\n", result.Applied, result.Remaining)
		fmt.Fprintln(out, "Run `artreview review --resume` to review them")
	case result.Paused:
		fmt.Fprintf(out, "Review paused: %s; %d slots remaining\n", rep.Summary(), result.Remaining)
		fmt.Fprintln(out, "Run `artreview review --resume` to continue")
		notify(logger, notifier, func(n notifications.Service) error {
			return n.NotifyReviewPaused(notifyCtx, rep, result.Remaining)
		})
	}
	return nil
}

// notify sends one notification for unattended runs; failures are logged only.
func notify(logger *slog.Logger, notifier notifications.Service, send func(notifications.Service) error) {
	if notifier == nil {
		return
	}
	if err := send(notifier); err != nil {
		logging.WarnWithContext(logger, "review notification failed", "notification",
			logging.Error(err),
			logging.String(logging.FieldImpact, "review summary was not pushed"),
		)
	}
}

func stdinIsTerminal(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressLine redraws a single status line on a terminal.
type progressLine struct {
	w     io.Writer
	width int
}

func newProgressLine(w io.Writer) *progressLine {
	p := &progressLine{w: w}
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = width
		}
	}
	return p
}

func (p *progressLine) Update(ev review.ProgressEvent) {
	line := fmt.Sprintf("[%d/%d] %s: %s", ev.Done, ev.Total, ev.Entry.Label(), ev.Outcome)
	if p.width > 1 {
		line = lipgloss.NewStyle().MaxWidth(p.width - 1).Render(line)
	}
	fmt.Fprintf(p.w, "\r\x1b[K%s", line)
	if ev.Done >= ev.Total {
		fmt.Fprintln(p.w)
	}
}
