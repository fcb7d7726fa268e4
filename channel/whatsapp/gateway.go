package whatsapp

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const historyMax = 100

var ErrUnauthorized = errors.New("sender not authorized")

const refusalText = "This number is not authorized to talk to the agent."

// Gateway decides who may talk to the agent and keeps a bounded message
// history in both directions. An empty allow list means everyone is
// allowed; the block list always wins.
type Gateway struct {
	mu      sync.Mutex
	allowed map[string]bool
	blocked map[string]bool
	history []Message
	logger  *slog.Logger
}

func NewGateway(allowed, blocked []string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		allowed: make(map[string]bool),
		blocked: make(map[string]bool),
		logger:  logger,
	}
	for _, n := range allowed {
		if key := numberKey(n); key != "" {
			g.allowed[key] = true
		}
	}
	for _, n := range blocked {
		if key := numberKey(n); key != "" {
			g.blocked[key] = true
		}
	}
	return g
}

// Authorize reports whether a sender may talk to the agent.
func (g *Gateway) Authorize(number string) bool {
	key := numberKey(number)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.blocked[key] {
		g.logger.Warn("whatsapp_unauthorized_sender", "from", key)
		return false
	}
	if len(g.allowed) == 0 {
		return true
	}
	if !g.allowed[key] {
		g.logger.Warn("whatsapp_unauthorized_sender", "from", key)
		return false
	}
	return true
}

// RefusalText is the fixed reply for unauthorized senders.
func (g *Gateway) RefusalText() string { return refusalText }

func (g *Gateway) Allow(number string) {
	key := numberKey(number)
	if key == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowed[key] = true
	delete(g.blocked, key)
}

func (g *Gateway) Block(number string) {
	key := numberKey(number)
	if key == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.blocked[key] = true
	delete(g.allowed, key)
}

// Record appends a message to the history ring.
func (g *Gateway) Record(from, body, sid string, direction Direction) Message {
	msg := Message{
		ID:         uuid.NewString(),
		From:       numberKey(from),
		Body:       body,
		MessageSID: sid,
		Direction:  direction,
		Timestamp:  time.Now(),
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.history = append(g.history, msg)
	if len(g.history) > historyMax {
		g.history = g.history[len(g.history)-historyMax:]
	}
	return msg
}

// History returns up to limit most recent messages, oldest first.
func (g *Gateway) History(limit int) []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	if limit <= 0 || limit > len(g.history) {
		limit = len(g.history)
	}
	out := make([]Message, limit)
	copy(out, g.history[len(g.history)-limit:])
	return out
}

func (g *Gateway) HistoryLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}

func (g *Gateway) AllowedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.allowed)
}
