package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ntfySink publishes messages to an ntfy topic URL. ntfy takes the body as
// the message text and reads metadata from request headers.
type ntfySink struct {
	topicURL string
	client   *http.Client
}

func newNtfySink(topicURL string, timeout time.Duration) *ntfySink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfySink{topicURL: topicURL, client: &http.Client{Timeout: timeout}}
}

func (n *ntfySink) deliver(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL, strings.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", "artreview")
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	for name, value := range map[string]string{
		"Title":    msg.Title,
		"Tags":     strings.Join(msg.Tags, ","),
		"Priority": msg.Priority,
	} {
		if value != "" {
			req.Header.Set(name, value)
		}
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("ntfy publish: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy publish: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
