package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Evansxm/ev-ai-core/internal/retryutil"
)

// Client sends outbound messages through the Twilio-compatible relay
// REST API.
type Client struct {
	BaseURL    string
	AccountSID string
	AuthToken  string
	FromNumber string
	HTTP       *http.Client
	Logger     *slog.Logger
}

func NewClient(accountSID, authToken, fromNumber string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL:    "https://api.twilio.com",
		AccountSID: accountSID,
		AuthToken:  authToken,
		FromNumber: fromNumber,
		HTTP:       &http.Client{Timeout: 30 * time.Second},
		Logger:     logger,
	}
}

// prefixed adds the relay's whatsapp: prefix exactly once.
func prefixed(number string) string {
	number = strings.TrimSpace(number)
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}

// Send posts one message and returns the relay message SID.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if c.AccountSID == "" || c.AuthToken == "" {
		return "", fmt.Errorf("whatsapp credentials are not configured")
	}

	form := url.Values{}
	form.Set("From", prefixed(c.FromNumber))
	form.Set("To", prefixed(to))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(c.BaseURL, "/"), c.AccountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("whatsapp http %d: %s", resp.StatusCode, apiErr.Message)
		}
		return "", fmt.Errorf("whatsapp http %d: %s", resp.StatusCode, string(raw))
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("whatsapp: decode response: %w", err)
	}
	return out.SID, nil
}

// SendAsync fires a send in the background; a transport failure is
// retried once after a short delay.
func (c *Client) SendAsync(to, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := c.Send(ctx, to, body); err != nil {
			c.Logger.Warn("whatsapp_send_failed", "to", numberKey(to), "error", err)
			retryutil.AsyncRetry(c.Logger, "whatsapp_send", 2*time.Second, 30*time.Second, func(retryCtx context.Context) error {
				_, retryErr := c.Send(retryCtx, to, body)
				return retryErr
			})
		}
	}()
}
