package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"artreview/internal/config"
	"artreview/internal/report"
)

// Service announces the end of an unattended review.
type Service interface {
	NotifyReviewCompleted(ctx context.Context, rep *report.Report, duration time.Duration) error
	NotifyReviewPaused(ctx context.Context, rep *report.Report, remaining int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
}

// NewService returns an ntfy-backed service, or one that drops every message
// when no topic is configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	return &messageService{sink: newNtfySink(topic, cfg.NtfyTimeout())}
}

// message is a transport-neutral notification.
type message struct {
	Title    string
	Body     string
	Tags     []string
	Priority string
}

type sink interface {
	deliver(ctx context.Context, msg message) error
}

type messageService struct {
	sink sink
}

func (s *messageService) NotifyReviewCompleted(ctx context.Context, rep *report.Report, duration time.Duration) error {
	body := fmt.Sprintf("Artwork review complete in %s: %s", max(duration.Round(time.Second), 0), rep.Summary())
	if rep != nil && rep.Counts.AutoApplied+rep.Counts.Selected == 0 {
		body += "\nNothing was applied"
	}
	return s.sink.deliver(ctx, message{
		Title: "artreview - Review Complete",
		Body:  body,
		Tags:  []string{"artreview", "review", "completed"},
	})
}

func (s *messageService) NotifyReviewPaused(ctx context.Context, rep *report.Report, remaining int) error {
	return s.sink.deliver(ctx, message{
		Title: "artreview - Review Paused",
		Body:  fmt.Sprintf("Artwork review paused with %d slots remaining: %s", remaining, rep.Summary()),
		Tags:  []string{"artreview", "review", "paused"},
	})
}

func (s *messageService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	body := "Error: " + detail
	if label := strings.TrimSpace(contextLabel); label != "" {
		body = "Error during " + label + ": " + detail
	}
	return s.sink.deliver(ctx, message{
		Title:    "artreview - Error",
		Body:     body,
		Tags:     []string{"artreview", "error"},
		Priority: "high",
	})
}

type noopService struct{}

func (noopService) NotifyReviewCompleted(context.Context, *report.Report, time.Duration) error {
	return nil
}

func (noopService) NotifyReviewPaused(context.Context, *report.Report, int) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }
