package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	urlRe   = regexp.MustCompile(`https?://[^\s<>"']+`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

type TextStatsTool struct{}

func (t *TextStatsTool) Name() string { return "text_stats" }

func (t *TextStatsTool) Description() string {
	return "Counts characters, words and lines in a text."
}

func (t *TextStatsTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to analyze.",
			},
		},
		"required": []string{"text"},
	})
}

func (t *TextStatsTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	text, ok := params["text"].(string)
	if !ok {
		return "", fmt.Errorf("missing required param: text")
	}
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}
	out := map[string]any{
		"chars": utf8.RuneCountInString(text),
		"words": len(strings.Fields(text)),
		"lines": lines,
	}
	b, _ := json.MarshalIndent(out, "", "  ")
	return string(b), nil
}

type ExtractURLsTool struct{}

func (t *ExtractURLsTool) Name() string        { return "extract_urls" }
func (t *ExtractURLsTool) Description() string { return "Extracts http(s) URLs from a text." }

func (t *ExtractURLsTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to scan.",
			},
		},
		"required": []string{"text"},
	})
}

func (t *ExtractURLsTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	text, ok := params["text"].(string)
	if !ok {
		return "", fmt.Errorf("missing required param: text")
	}
	matches := urlRe.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.TrimRight(m, ".,;:!?)")
	}
	return joinMatches(matches), nil
}

type ExtractEmailsTool struct{}

func (t *ExtractEmailsTool) Name() string        { return "extract_emails" }
func (t *ExtractEmailsTool) Description() string { return "Extracts email addresses from a text." }

func (t *ExtractEmailsTool) ParameterSchema() string {
	return schemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to scan.",
			},
		},
		"required": []string{"text"},
	})
}

func (t *ExtractEmailsTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	text, ok := params["text"].(string)
	if !ok {
		return "", fmt.Errorf("missing required param: text")
	}
	return joinMatches(emailRe.FindAllString(text, -1)), nil
}

func joinMatches(matches []string) string {
	if len(matches) == 0 {
		return "(no matches)"
	}
	seen := make(map[string]bool, len(matches))
	var out []string
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return strings.Join(out, "\n")
}
