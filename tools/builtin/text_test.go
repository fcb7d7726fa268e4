package builtin

import (
	"context"
	"strings"
	"testing"
)

func TestTextStatsTool_Execute(t *testing.T) {
	tool := &TextStatsTool{}
	out, err := tool.Execute(context.Background(), map[string]any{
		"text": "one two\nthree",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, want := range []string{`"chars": 13`, `"words": 3`, `"lines": 2`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestExtractURLsTool_Execute(t *testing.T) {
	tool := &ExtractURLsTool{}
	out, err := tool.Execute(context.Background(), map[string]any{
		"text": "see https://example.com/a and http://example.org, also https://example.com/a again",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 unique urls, got %v", lines)
	}
	if lines[0] != "https://example.com/a" {
		t.Fatalf("got %q", lines[0])
	}
}

func TestExtractEmailsTool_Execute(t *testing.T) {
	tool := &ExtractEmailsTool{}
	out, err := tool.Execute(context.Background(), map[string]any{
		"text": "mail ops@example.com or dev@example.org",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "ops@example.com") || !strings.Contains(out, "dev@example.org") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestExtractURLsTool_NoMatches(t *testing.T) {
	tool := &ExtractURLsTool{}
	out, err := tool.Execute(context.Background(), map[string]any{"text": "plain text"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != "(no matches)" {
		t.Fatalf("got %q", out)
	}
}
