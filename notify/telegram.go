package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const telegramDefaultBaseURL = "https://api.telegram.org"

// Telegram sends through the bot API sendMessage method.
type Telegram struct {
	BaseURL  string
	BotToken string
	ChatID   string
	HTTP     *http.Client
}

func NewTelegram(botToken, chatID string) *Telegram {
	return &Telegram{
		BaseURL:  telegramDefaultBaseURL,
		BotToken: strings.TrimSpace(botToken),
		ChatID:   strings.TrimSpace(chatID),
		HTTP:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, subject, body string) error {
	if t == nil || t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("telegram bot token or chat id is not configured")
	}
	form := url.Values{}
	form.Set("chat_id", t.ChatID)
	form.Set("text", joinSubjectBody(subject, body))

	endpoint := strings.TrimRight(t.BaseURL, "/") + "/bot" + t.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return err
	}
	var out struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("telegram http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !out.OK {
		desc := strings.TrimSpace(out.Description)
		if desc == "" {
			desc = "unknown error"
		}
		return fmt.Errorf("telegram http %d: %s", resp.StatusCode, desc)
	}
	return nil
}
