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

const discordContentMaxRunes = 2000

// Discord posts to a channel webhook.
type Discord struct {
	WebhookURL string
	HTTP       *http.Client
}

func NewDiscord(webhookURL string) *Discord {
	return &Discord{
		WebhookURL: strings.TrimSpace(webhookURL),
		HTTP:       &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, subject, body string) error {
	if d == nil || d.WebhookURL == "" {
		return fmt.Errorf("discord webhook url is not configured")
	}
	payload := map[string]string{
		"content": truncateRunes(joinSubjectBody(subject, body), discordContentMaxRunes),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("discord http %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
