package builtin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type HTTPRequestTool struct {
	Enabled     bool
	Timeout     time.Duration
	MaxBytes    int64
	UserAgent   string
	HTTPClient  *http.Client
	AllowScheme map[string]bool
}

func NewHTTPRequestTool(enabled bool, timeout time.Duration, maxBytes int64, userAgent string) *HTTPRequestTool {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 512 * 1024
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "ev-ai-core/1.0"
	}
	return &HTTPRequestTool{
		Enabled:     enabled,
		Timeout:     timeout,
		MaxBytes:    maxBytes,
		UserAgent:   userAgent,
		HTTPClient:  &http.Client{Timeout: timeout},
		AllowScheme: map[string]bool{"http": true, "https": true},
	}
}

func (t *HTTPRequestTool) Name() string { return "http_request" }

func (t *HTTPRequestTool) Description() string {
	return "Performs a GET or POST request to an HTTP(S) URL and returns the response (truncated)."
}

func (t *HTTPRequestTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL to request (http/https).",
			},
			"method": map[string]any{
				"type":        "string",
				"description": "GET (default) or POST.",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Optional request body for POST.",
			},
			"content_type": map[string]any{
				"type":        "string",
				"description": "Content-Type for POST bodies (default application/json).",
			},
			"timeout_seconds": map[string]any{
				"type":        "number",
				"description": "Optional timeout override in seconds.",
			},
			"max_bytes": map[string]any{
				"type":        "integer",
				"description": "Optional max response bytes to read (truncates beyond this).",
			},
		},
		"required": []string{"url"},
	})
}

func (t *HTTPRequestTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	if !t.Enabled {
		return "", fmt.Errorf("http_request tool is disabled (enable via config: tools.http_request.enabled=true)")
	}

	rawURL := stringParam(params, "url")
	if rawURL == "" {
		return "", fmt.Errorf("missing required param: url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if !t.AllowScheme[strings.ToLower(u.Scheme)] {
		return "", fmt.Errorf("unsupported url scheme: %s", u.Scheme)
	}

	method := strings.ToUpper(stringParam(params, "method"))
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodPost {
		return "", fmt.Errorf("unsupported method: %s", method)
	}

	timeout := t.Timeout
	if v, ok := params["timeout_seconds"]; ok {
		if secs, ok := asFloat64(v); ok && secs > 0 {
			timeout = time.Duration(secs * float64(time.Second))
		}
	}
	maxBytes := t.MaxBytes
	if v, ok := params["max_bytes"]; ok {
		if n, ok := asInt64(v); ok && n > 0 {
			maxBytes = n
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reqBody io.Reader
	if method == http.MethodPost {
		body, _ := params["body"].(string)
		reqBody = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, u.String(), reqBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", t.UserAgent)
	if method == http.MethodPost {
		ct := stringParam(params, "content_type")
		if ct == "" {
			ct = "application/json"
		}
		req.Header.Set("Content-Type", ct)
	}

	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var truncated bool
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", err
	}
	if int64(len(body)) > maxBytes {
		body = body[:maxBytes]
		truncated = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "url: %s\n", u.String())
	fmt.Fprintf(&b, "status: %d\n", resp.StatusCode)
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		fmt.Fprintf(&b, "content_type: %s\n", ct)
	}
	fmt.Fprintf(&b, "truncated: %t\n", truncated)
	b.WriteString("body:\n")
	b.WriteString(string(bytes.ToValidUTF8(body, []byte("\n[non-utf8 body]\n"))))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return b.String(), fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return b.String(), nil
}
