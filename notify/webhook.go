package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Webhook POSTs a generic JSON payload to any URL.
type Webhook struct {
	URL  string
	HTTP *http.Client
	now  func() time.Time
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:  strings.TrimSpace(url),
		HTTP: &http.Client{Timeout: 15 * time.Second},
		now:  time.Now,
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, subject, body string) error {
	if w == nil || w.URL == "" {
		return fmt.Errorf("webhook url is not configured")
	}
	payload := map[string]string{
		"subject": subject,
		"body":    body,
		"ts":      w.now().UTC().Format(time.RFC3339),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
