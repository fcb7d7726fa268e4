package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Evansxm/ev-ai-core/llm"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 120 * time.Second},
	}
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []llm.Message  `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
	Error           string `json:"error,omitempty"`
}

func (c *Client) Chat(ctx context.Context, req llm.Request) (llm.Result, error) {
	start := time.Now()

	body := chatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
		Options:  req.Parameters,
	}
	if req.ForceJSON {
		body.Format = "json"
	}

	b, err := json.Marshal(body)
	if err != nil {
		return llm.Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return llm.Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return llm.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Result{}, err
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return llm.Result{}, fmt.Errorf("ollama http %d: %s", resp.StatusCode, string(raw))
		}
		return llm.Result{}, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != "" {
			return llm.Result{}, fmt.Errorf("ollama http %d: %s", resp.StatusCode, out.Error)
		}
		return llm.Result{}, fmt.Errorf("ollama http %d: %s", resp.StatusCode, string(raw))
	}
	if out.Error != "" {
		return llm.Result{}, fmt.Errorf("ollama: %s", out.Error)
	}

	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		return llm.Result{}, fmt.Errorf("ollama: empty response")
	}

	return llm.Result{
		Text: text,
		Usage: llm.Usage{
			InputTokens:  out.PromptEvalCount,
			OutputTokens: out.EvalCount,
			TotalTokens:  out.PromptEvalCount + out.EvalCount,
		},
		Duration: time.Since(start),
	}, nil
}
