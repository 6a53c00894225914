package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"camops/internal/config"
)

// Notifier posts run summaries to a Chat webhook. A missing webhook URL
// disables delivery without failing the pipeline.
type Notifier struct {
	url        string
	httpClient *http.Client
	limiter    *RateLimiter
}

type chatMessage struct {
	Text string `json:"text"`
}

func NewNotifier(cfg config.Config) *Notifier {
	return &Notifier{
		url:        cfg.WebhookURL,
		httpClient: &http.Client{Timeout: time.Duration(cfg.WebhookTimeoutS) * time.Second},
		limiter:    NewRateLimiter(cfg.WebhookRateRPS),
	}
}

func (n *Notifier) Enabled() bool {
	return n.url != ""
}

func (n *Notifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		logrus.WithField("component", "notify").Debug("webhook not configured, skipping")
		return nil
	}
	n.limiter.WaitTurn()

	payload, err := json.Marshal(chatMessage{Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (n *Notifier) Sendf(ctx context.Context, format string, args ...any) error {
	return n.Send(ctx, fmt.Sprintf(format, args...))
}
