package memory

import (
	"errors"
	"time"
)

const (
	DefaultCategory   = "general"
	DefaultImportance = 5

	maxKeyRunes = 256
)

var (
	ErrNotFound   = errors.New("memory: key not found")
	ErrInvalidKey = errors.New("memory: invalid key")
)

// Record is one remembered fact, keyed by a caller-chosen string.
type Record struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Category    string    `json:"category"`
	Importance  int       `json:"importance"`
	AccessCount int       `json:"access_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Interaction is one journal entry: what came in, what went out.
type Interaction struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Response  string    `json:"response"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"ts"`
}

func clampImportance(importance int) int {
	if importance <= 0 {
		return DefaultImportance
	}
	if importance > 10 {
		return 10
	}
	return importance
}

func normalizeCategory(category string) string {
	if category == "" {
		return DefaultCategory
	}
	return category
}
