package builtin

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Evansxm/ev-ai-core/memory"
)

func newTestMemoryStore(t *testing.T) *memory.Store {
	t.Helper()
	root := t.TempDir()
	store, err := memory.NewStore(filepath.Join(root, "memory"), filepath.Join(root, "locks"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestMemoryTools_StoreAndRecall(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	st := &MemoryStoreTool{Store: store}
	out, err := st.Execute(ctx, map[string]any{
		"key":        "owner_name",
		"value":      "Evans",
		"category":   "personal",
		"importance": 8,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, `stored "owner_name"`) {
		t.Fatalf("unexpected output: %q", out)
	}

	rc := &MemoryRecallTool{Store: store}
	got, err := rc.Execute(ctx, map[string]any{"key": "owner_name"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "Evans" {
		t.Fatalf("got %q, want %q", got, "Evans")
	}
}

func TestMemoryRecallTool_FallsBackToSearch(t *testing.T) {
	store := newTestMemoryStore(t)
	ctx := context.Background()

	if _, err := store.Remember(ctx, "project_deadline", "2026-09-15", "work", 7); err != nil {
		t.Fatal(err)
	}

	rc := &MemoryRecallTool{Store: store}
	out, err := rc.Execute(ctx, map[string]any{"key": "deadline"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(out, "project_deadline") {
		t.Fatalf("expected search match, got %q", out)
	}
}

func TestMemoryRecallTool_NoMatch(t *testing.T) {
	store := newTestMemoryStore(t)
	rc := &MemoryRecallTool{Store: store}
	_, err := rc.Execute(context.Background(), map[string]any{"key": "missing"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "no memory for") {
		t.Fatalf("unexpected error: %v", err)
	}
}
