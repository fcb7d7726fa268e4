// Package llm defines the provider-neutral chat contract the agent
// speaks. The only built-in provider is ollama; the agent, server and
// whatsapp bridge all hold a Client and never see provider details.
package llm

import (
	"context"
	"time"
)

// Message is one turn of a chat exchange. Role follows the usual
// system/user/assistant convention.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Result carries the model's reply. JSON is populated only when the
// request forced a JSON response and the text parsed cleanly.
type Result struct {
	Text     string
	JSON     any
	Usage    Usage
	Duration time.Duration
}

// Request is one chat completion call. ForceJSON asks the provider for
// a structured response; the agent uses it for tool-call planning.
type Request struct {
	Model      string
	Messages   []Message
	ForceJSON  bool
	Parameters map[string]any
}

type Client interface {
	Chat(ctx context.Context, req Request) (Result, error)
}
