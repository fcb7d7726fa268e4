package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Evansxm/ev-ai-core/memory"
)

type MemoryStoreTool struct {
	Store *memory.Store
}

func (t *MemoryStoreTool) Name() string { return "memory_store" }

func (t *MemoryStoreTool) Description() string {
	return "Stores a key/value fact in persistent memory."
}

func (t *MemoryStoreTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "Memory key.",
			},
			"value": map[string]any{
				"type":        "string",
				"description": "Value to remember.",
			},
			"category": map[string]any{
				"type":        "string",
				"description": "Optional category (default general).",
			},
			"importance": map[string]any{
				"type":        "integer",
				"description": "Importance 1-10 (default 5).",
			},
		},
		"required": []string{"key", "value"},
	})
}

func (t *MemoryStoreTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	if t.Store == nil {
		return "", fmt.Errorf("memory store is not configured")
	}
	key := stringParam(params, "key")
	value, _ := params["value"].(string)
	if key == "" || value == "" {
		return "", fmt.Errorf("missing required params: key, value")
	}
	category := stringParam(params, "category")
	importance := 0
	if v, ok := params["importance"]; ok {
		if n, ok := asInt64(v); ok {
			importance = int(n)
		}
	}
	rec, err := t.Store.Remember(ctx, key, value, category, importance)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("stored %q (category=%s importance=%d)", rec.Key, rec.Category, rec.Importance), nil
}

type MemoryRecallTool struct {
	Store *memory.Store
}

func (t *MemoryRecallTool) Name() string { return "memory_recall" }

func (t *MemoryRecallTool) Description() string {
	return "Recalls a fact from persistent memory by key, or searches when the key is not found."
}

func (t *MemoryRecallTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key": map[string]any{
				"type":        "string",
				"description": "Memory key or search term.",
			},
		},
		"required": []string{"key"},
	})
}

func (t *MemoryRecallTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	if t.Store == nil {
		return "", fmt.Errorf("memory store is not configured")
	}
	key := stringParam(params, "key")
	if key == "" {
		return "", fmt.Errorf("missing required param: key")
	}

	rec, err := t.Store.Recall(ctx, key)
	if err == nil {
		return rec.Value, nil
	}
	if !errors.Is(err, memory.ErrNotFound) {
		return "", err
	}

	matches, err := t.Store.Search(ctx, key, 5)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no memory for %q", key)
	}
	b, _ := json.MarshalIndent(matches, "", "  ")
	return string(b), nil
}
