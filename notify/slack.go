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

// Slack posts to an incoming-webhook URL.
type Slack struct {
	WebhookURL string
	HTTP       *http.Client
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{
		WebhookURL: strings.TrimSpace(webhookURL),
		HTTP:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, subject, body string) error {
	if s == nil || s.WebhookURL == "" {
		return fmt.Errorf("slack webhook url is not configured")
	}
	payload := map[string]string{"text": joinSubjectBody(subject, body)}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
